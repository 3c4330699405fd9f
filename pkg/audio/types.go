// ABOUTME: Core audio format types
// ABOUTME: Defines PCM stream descriptors and frame/byte arithmetic
package audio

import (
	"fmt"
	"time"
)

// Direction tells which way samples flow through a device.
type Direction uint8

const (
	// Render streams feed samples to an output device.
	Render Direction = iota
	// Capture streams collect samples from an input device.
	Capture
)

func (d Direction) String() string {
	switch d {
	case Render:
		return "render"
	case Capture:
		return "capture"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Format describes an interleaved PCM stream. BitDepth 8 is unsigned,
// all other depths are signed little-endian.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// BlockAlign returns the size of one frame in bytes.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitDepth / 8
}

// BytesFor returns the byte length of the given frame count.
func (f Format) BytesFor(frames int) int {
	return frames * f.BlockAlign()
}

// FramesIn returns how many whole frames fit in buf.
func (f Format) FramesIn(buf []byte) int {
	return len(buf) / f.BlockAlign()
}

// FramesFor returns the frame count covering d, rounded to nearest.
func (f Format) FramesFor(d time.Duration) int {
	return int((d.Nanoseconds()*int64(f.SampleRate) + int64(time.Second)/2) / int64(time.Second))
}

// DurationOf returns the play time of the given frame count.
func (f Format) DurationOf(frames int) time.Duration {
	return time.Duration(int64(frames) * int64(time.Second) / int64(f.SampleRate))
}

// Silence fills buf with the format's silence value. Unsigned 8-bit PCM
// is biased, so its silence code is 128; every other depth silences to zero.
func (f Format) Silence(buf []byte) {
	var code byte
	if f.BitDepth == 8 {
		code = 128
	}
	for i := range buf {
		buf[i] = code
	}
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}
