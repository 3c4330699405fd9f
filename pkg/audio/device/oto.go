// ABOUTME: Oto-based render-only hardware backend
// ABOUTME: Adapts the oto player's reader pull to the engine's render callback
package device

import (
	"fmt"
	"log"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

// Oto backend implementation using the oto library. Playback only: oto
// has no capture path, so OpenCapture reports ErrCaptureUnsupported.
type Oto struct {
	// oto allows a single context per process; it is created on the
	// first open and reused for its lifetime.
	ctx    *oto.Context
	format audio.Format
}

// NewOto creates an oto backend.
func NewOto() *Oto {
	return &Oto{}
}

func (o *Oto) Name() string { return "oto" }

// NativeFormat reports the descriptor the backend runs at. Oto output is
// 16-bit only.
func (o *Oto) NativeFormat(dir audio.Direction) (audio.Format, error) {
	if dir == audio.Capture {
		return audio.Format{}, ErrCaptureUnsupported
	}
	return audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, nil
}

// OpenRender opens a player that pulls frames through cb.
func (o *Oto) OpenRender(f audio.Format, periodMS int, cb RenderFunc) (Device, error) {
	if f.BitDepth != 16 {
		return nil, fmt.Errorf("oto only supports 16-bit output, got %d-bit", f.BitDepth)
	}

	if o.ctx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   f.SampleRate,
			ChannelCount: f.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("failed to create oto context: %w", err)
		}
		<-ready
		o.ctx = ctx
		o.format = f
	} else if o.format != f {
		// A second context per process is not possible; surface the
		// limitation instead of silently playing at the wrong rate.
		return nil, fmt.Errorf("oto context already running at %s, cannot open %s", o.format, f)
	}

	player := o.ctx.NewPlayer(&renderReader{format: f, cb: cb})
	return &otoDevice{player: player, period: time.Duration(periodMS) * time.Millisecond}, nil
}

// OpenCapture always fails: oto is an output library.
func (o *Oto) OpenCapture(f audio.Format, periodMS int, cb CaptureFunc) (Device, error) {
	return nil, ErrCaptureUnsupported
}

// Close suspends the context. Oto contexts cannot be destroyed.
func (o *Oto) Close() error {
	if o.ctx != nil {
		if err := o.ctx.Suspend(); err != nil {
			log.Printf("Warning: oto context suspend error: %v", err)
		}
	}
	return nil
}

// renderReader turns oto's reader pull into render callback invocations,
// keeping frame alignment when oto reads a partial frame.
type renderReader struct {
	format audio.Format
	cb     RenderFunc
	stash  []byte // tail of a frame not yet consumed by oto
}

func (r *renderReader) Read(p []byte) (int, error) {
	n := 0
	if len(r.stash) > 0 {
		n = copy(p, r.stash)
		r.stash = r.stash[n:]
		p = p[n:]
	}

	frames := r.format.FramesIn(p)
	if frames > 0 {
		r.cb(p[:r.format.BytesFor(frames)], frames)
		n += r.format.BytesFor(frames)
		p = p[r.format.BytesFor(frames):]
	}

	// Serve a trailing partial frame from a one-frame pull.
	if len(p) > 0 && n == 0 {
		frame := make([]byte, r.format.BlockAlign())
		r.cb(frame, 1)
		m := copy(p, frame)
		r.stash = frame[m:]
		n += m
	}

	return n, nil
}

type otoDevice struct {
	player *oto.Player
	period time.Duration
}

func (d *otoDevice) Start() error {
	d.player.Play()
	return nil
}

func (d *otoDevice) Stop() error {
	d.player.Pause()
	return nil
}

func (d *otoDevice) Latency() time.Duration {
	return d.period
}

func (d *otoDevice) SetVolume(scalar float32) error {
	if scalar < 0 {
		scalar = 0
	}
	if scalar > 1 {
		scalar = 1
	}
	d.player.SetVolume(float64(scalar))
	return nil
}

func (d *otoDevice) Close() error {
	return d.player.Close()
}
