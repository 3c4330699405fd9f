// ABOUTME: Stream engine package bridging hardware callbacks to client buffers
// ABOUTME: Provides Open, the acquire/release protocol and stream lifecycle
// Package stream implements the audio streaming engine.
//
// A Stream bridges the host audio subsystem's pull-driven callback model
// to an acquire/release buffer API. For playback the client acquires a
// writable region, fills it and releases it; the hardware render
// callback drains the ring on its own thread. For capture the hardware
// callback fills a raw ring at the device rate, a lazy resample pipeline
// converts whole periods to the client rate, and the client acquires one
// period at a time.
//
// One mutex per stream guards all shared state. The hardware side holds
// it only across memory copies; rate conversion runs on whichever client
// goroutine next queries padding or acquires a capture buffer, never on
// the real-time thread.
//
// Render example:
//
//	backend, err := device.NewMalgo()
//	s, err := stream.Open(backend, stream.Config{
//	    Direction: audio.Render,
//	    Format:    audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16},
//	})
//	s.Start()
//	buf, err := s.AcquireRender(480)
//	// fill buf
//	err = s.ReleaseRender(480, false)
package stream
