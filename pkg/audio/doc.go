// ABOUTME: Audio fundamentals package providing core types
// ABOUTME: Defines Format descriptors and frame arithmetic shared by the engine
// Package audio provides the fundamental types shared by the stream engine.
//
// This package defines the types every other package builds on:
//   - Format: an interleaved PCM descriptor (sample rate, channels, bit depth)
//   - Direction: render (playback) vs capture
//
// Frame arithmetic lives here so every layer agrees on what a frame is:
// one sample per channel, BlockAlign bytes wide.
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 48000,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//	buf := make([]byte, format.BytesFor(480))
//	format.Silence(buf)
package audio
