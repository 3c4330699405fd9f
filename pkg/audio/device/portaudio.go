//go:build portaudio

// ABOUTME: PortAudio hardware backend implementation
// ABOUTME: Cross-platform render and capture using PortAudio
package device

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

// PortAudio backend implementation.
type PortAudio struct{}

// NewPortAudio creates a PortAudio backend.
func NewPortAudio() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &PortAudio{}, nil
}

func (p *PortAudio) Name() string { return "portaudio" }

func (p *PortAudio) NativeFormat(dir audio.Direction) (audio.Format, error) {
	return audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, nil
}

// OpenRender opens the default output stream pulling through cb.
func (p *PortAudio) OpenRender(f audio.Format, periodMS int, cb RenderFunc) (Device, error) {
	if f.BitDepth != 16 {
		return nil, fmt.Errorf("portaudio backend only supports 16-bit, got %d-bit", f.BitDepth)
	}

	frames := f.FramesFor(time.Duration(periodMS) * time.Millisecond)
	staging := make([]byte, f.BytesFor(frames))

	stream, err := portaudio.OpenDefaultStream(0, f.Channels, float64(f.SampleRate), frames,
		func(out []int16) {
			n := len(out) / f.Channels
			buf := staging[:f.BytesFor(n)]
			cb(buf, n)
			for i := range out {
				out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
			}
		})
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	return &paDevice{stream: stream, period: time.Duration(periodMS) * time.Millisecond}, nil
}

// OpenCapture opens the default input stream delivering through cb.
func (p *PortAudio) OpenCapture(f audio.Format, periodMS int, cb CaptureFunc) (Device, error) {
	if f.BitDepth != 16 {
		return nil, fmt.Errorf("portaudio backend only supports 16-bit, got %d-bit", f.BitDepth)
	}

	frames := f.FramesFor(time.Duration(periodMS) * time.Millisecond)
	staging := make([]byte, f.BytesFor(frames))

	stream, err := portaudio.OpenDefaultStream(f.Channels, 0, float64(f.SampleRate), frames,
		func(in []int16) {
			n := len(in) / f.Channels
			buf := staging[:f.BytesFor(n)]
			for i, s := range in {
				binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
			}
			cb(n, func(dst []byte) error {
				copy(dst, buf)
				return nil
			})
		})
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	return &paDevice{stream: stream, period: time.Duration(periodMS) * time.Millisecond}, nil
}

func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

type paDevice struct {
	stream *portaudio.Stream
	period time.Duration
}

func (d *paDevice) Start() error { return d.stream.Start() }
func (d *paDevice) Stop() error  { return d.stream.Stop() }

func (d *paDevice) Latency() time.Duration {
	if info := d.stream.Info(); info != nil {
		if info.OutputLatency > 0 {
			return info.OutputLatency
		}
		return info.InputLatency
	}
	return d.period
}

// SetVolume is not supported by the PortAudio API; playback runs at
// device volume.
func (d *paDevice) SetVolume(scalar float32) error { return nil }

func (d *paDevice) Close() error { return d.stream.Close() }
