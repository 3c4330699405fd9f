// ABOUTME: Pull-based PCM sample-rate converter
// ABOUTME: Produces fixed-size output chunks by pulling variable source input
package convert

import (
	"errors"
	"fmt"

	gaudio "github.com/go-audio/audio"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

const (
	max24Bit = 1<<23 - 1
	min24Bit = -(1 << 23)
)

var (
	// ErrLayoutMismatch indicates the two descriptors differ in channel
	// count or bit depth. The converter only changes the sample rate.
	ErrLayoutMismatch = errors.New("source and destination layouts differ")

	// ErrBadPull indicates the pull callback returned a byte slice that
	// does not hold a whole number of frames.
	ErrBadPull = errors.New("pull returned a partial frame")
)

// PullFunc supplies up to the requested number of source frames. The
// returned slice must hold whole frames; returning an empty slice means
// the source is exhausted for now. The converter finishes with the slice
// before pulling again, so the callback may reuse its backing storage.
type PullFunc func(frames int) []byte

// Converter resamples interleaved PCM between two descriptors that share
// channel count and bit depth. It pulls however many source frames it
// needs to produce the requested output, so a caller feeding it from a
// bounded buffer should keep a surplus of source frames on hand.
//
// Interpolation phase and the trailing source frames carry across calls,
// keeping the output continuous over chunked conversion.
type Converter struct {
	src   audio.Format
	dst   audio.Format
	ratio float64 // source frames advanced per output frame
	pos   float64 // fractional read position into carry, in frames

	// carry holds decoded source samples not yet fully consumed.
	carry *gaudio.IntBuffer
}

// New creates a converter from src to dst.
func New(src, dst audio.Format) (*Converter, error) {
	if src.Channels != dst.Channels || src.BitDepth != dst.BitDepth {
		return nil, fmt.Errorf("%w: %s vs %s", ErrLayoutMismatch, src, dst)
	}
	switch src.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", src.BitDepth)
	}

	return &Converter{
		src:   src,
		dst:   dst,
		ratio: float64(src.SampleRate) / float64(dst.SampleRate),
		carry: &gaudio.IntBuffer{
			Format:         &gaudio.Format{NumChannels: src.Channels, SampleRate: src.SampleRate},
			SourceBitDepth: src.BitDepth,
		},
	}, nil
}

// Ratio returns source frames consumed per output frame produced.
func (c *Converter) Ratio() float64 { return c.ratio }

// Convert produces up to frames output frames into dst, pulling source
// data as needed. It returns the number of frames produced, short when
// the source runs dry mid-chunk. dst must hold frames whole frames.
func (c *Converter) Convert(dst []byte, frames int, pull PullFunc) (int, error) {
	ch := c.src.Channels
	align := c.dst.BlockAlign()
	if len(dst) < frames*align {
		return 0, fmt.Errorf("destination holds %d frames, need %d", c.dst.FramesIn(dst), frames)
	}

	out := 0
	for out < frames {
		// Linear interpolation needs the frame at the integer position
		// and its successor.
		need := int(c.pos) + 2
		if err := c.fill(need, pull); err != nil {
			return out, err
		}
		if c.carryFrames() < need {
			break
		}

		i := int(c.pos)
		frac := c.pos - float64(i)
		for k := 0; k < ch; k++ {
			s0 := c.carry.Data[i*ch+k]
			s1 := c.carry.Data[(i+1)*ch+k]
			v := float64(s0)*(1.0-frac) + float64(s1)*frac
			c.encode(dst[out*align+k*c.src.BitDepth/8:], int(v))
		}

		out++
		c.pos += c.ratio
	}

	// Drop fully consumed source frames, keeping the current one for the
	// next call's interpolation.
	if drop := int(c.pos); drop > 0 && c.carryFrames() > 0 {
		if drop > c.carryFrames() {
			drop = c.carryFrames()
		}
		c.carry.Data = c.carry.Data[drop*ch:]
		c.pos -= float64(drop)
	}

	return out, nil
}

// Reset discards carried source samples and interpolation phase.
func (c *Converter) Reset() {
	c.carry.Data = c.carry.Data[:0]
	c.pos = 0
}

func (c *Converter) carryFrames() int {
	return len(c.carry.Data) / c.src.Channels
}

// fill pulls source frames until the carry holds at least need frames or
// the source is exhausted.
func (c *Converter) fill(need int, pull PullFunc) error {
	align := c.src.BlockAlign()
	for c.carryFrames() < need {
		raw := pull(need - c.carryFrames())
		if len(raw) == 0 {
			return nil
		}
		if len(raw)%align != 0 {
			return fmt.Errorf("%w: %d bytes with %d-byte frames", ErrBadPull, len(raw), align)
		}
		c.decode(raw)
	}
	return nil
}

// decode appends raw source bytes to the carry as one int per sample.
func (c *Converter) decode(raw []byte) {
	step := c.src.BitDepth / 8
	for i := 0; i+step <= len(raw); i += step {
		var v int
		switch c.src.BitDepth {
		case 8:
			v = int(raw[i]) - 128
		case 16:
			v = int(int16(uint16(raw[i]) | uint16(raw[i+1])<<8))
		case 24:
			u := uint32(raw[i]) | uint32(raw[i+1])<<8 | uint32(raw[i+2])<<16
			if u&0x800000 != 0 {
				u |= 0xff000000
			}
			v = int(int32(u))
		case 32:
			v = int(int32(uint32(raw[i]) | uint32(raw[i+1])<<8 |
				uint32(raw[i+2])<<16 | uint32(raw[i+3])<<24))
		}
		c.carry.Data = append(c.carry.Data, v)
	}
}

// encode writes one sample at the head of dst, clamping to the depth's range.
func (c *Converter) encode(dst []byte, v int) {
	switch c.src.BitDepth {
	case 8:
		dst[0] = byte(clamp(v, -128, 127) + 128)
	case 16:
		u := uint16(int16(clamp(v, -32768, 32767)))
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
	case 24:
		u := uint32(int32(clamp(v, min24Bit, max24Bit)))
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
		dst[2] = byte(u >> 16)
	case 32:
		u := uint32(int32(v))
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
		dst[2] = byte(u >> 16)
		dst[3] = byte(u >> 24)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
