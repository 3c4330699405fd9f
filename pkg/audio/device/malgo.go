// ABOUTME: Malgo-based hardware backend implementation
// ABOUTME: Drives render and capture callbacks via the miniaudio library
package device

import (
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

// Malgo backend implementation using the malgo/miniaudio library.
type Malgo struct {
	ctx *malgo.AllocatedContext
}

// NewMalgo initializes a miniaudio context.
func NewMalgo() (*Malgo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Printf("malgo: %s", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	return &Malgo{ctx: ctx}, nil
}

func (m *Malgo) Name() string { return "malgo" }

// NativeFormat reports the engine mix format. Miniaudio converts to
// whatever the device config asks for, so the engine default keeps all
// shared-mode streams on one descriptor.
func (m *Malgo) NativeFormat(dir audio.Direction) (audio.Format, error) {
	return audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, nil
}

// OpenRender opens a playback device that pulls frames through cb.
func (m *Malgo) OpenRender(f audio.Format, periodMS int, cb RenderFunc) (Device, error) {
	format, err := malgoFormat(f)
	if err != nil {
		return nil, err
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = format
	cfg.Playback.Channels = uint32(f.Channels)
	cfg.SampleRate = uint32(f.SampleRate)
	cfg.PeriodSizeInMilliseconds = uint32(periodMS)
	cfg.PerformanceProfile = malgo.LowLatency
	cfg.Alsa.NoMMap = 1

	d := &malgoDevice{format: f, period: time.Duration(periodMS) * time.Millisecond}
	d.storeVolume(1)

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			cb(pOutput, int(frameCount))
			d.applyGain(pOutput)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	d.dev = dev
	return d, nil
}

// OpenCapture opens a capture device. The stream chooses the destination
// for each batch through the deliver callback; the copy out of the
// miniaudio-owned input buffer happens inside the callback invocation.
func (m *Malgo) OpenCapture(f audio.Format, periodMS int, cb CaptureFunc) (Device, error) {
	format, err := malgoFormat(f)
	if err != nil {
		return nil, err
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = format
	cfg.Capture.Channels = uint32(f.Channels)
	cfg.SampleRate = uint32(f.SampleRate)
	cfg.PeriodSizeInMilliseconds = uint32(periodMS)
	cfg.PerformanceProfile = malgo.LowLatency
	cfg.Alsa.NoMMap = 1

	d := &malgoDevice{format: f, period: time.Duration(periodMS) * time.Millisecond}
	d.storeVolume(1)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			cb(int(frameCount), func(dst []byte) error {
				copy(dst, pInput)
				return nil
			})
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	d.dev = dev
	return d, nil
}

// Close releases the miniaudio context.
func (m *Malgo) Close() error {
	if m.ctx != nil {
		if err := m.ctx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.ctx.Free()
		m.ctx = nil
	}
	return nil
}

type malgoDevice struct {
	dev    *malgo.Device
	format audio.Format
	period time.Duration
	volume uint32 // float32 bits, read on the callback thread
}

func (d *malgoDevice) Start() error {
	if err := d.dev.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

func (d *malgoDevice) Stop() error {
	if err := d.dev.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

func (d *malgoDevice) Latency() time.Duration {
	return d.period
}

// SetVolume stores the gain scalar; it is applied on the callback thread.
func (d *malgoDevice) SetVolume(scalar float32) error {
	if scalar < 0 {
		scalar = 0
	}
	if scalar > 1 {
		scalar = 1
	}
	d.storeVolume(scalar)
	return nil
}

func (d *malgoDevice) Close() error {
	d.dev.Uninit()
	return nil
}

func (d *malgoDevice) storeVolume(scalar float32) {
	atomic.StoreUint32(&d.volume, math.Float32bits(scalar))
}

// applyGain scales the rendered frames in place. Software gain is applied
// for 16-bit PCM only; other depths play at device volume.
func (d *malgoDevice) applyGain(buf []byte) {
	scalar := math.Float32frombits(atomic.LoadUint32(&d.volume))
	if scalar == 1 || d.format.BitDepth != 16 {
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		s := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
		v := int32(float32(s) * scalar)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		u := uint16(int16(v))
		buf[i] = byte(u)
		buf[i+1] = byte(u >> 8)
	}
}

// malgoFormat maps a PCM descriptor to the miniaudio sample format.
func malgoFormat(f audio.Format) (malgo.FormatType, error) {
	switch f.BitDepth {
	case 8:
		return malgo.FormatU8, nil
	case 16:
		return malgo.FormatS16, nil
	case 24:
		return malgo.FormatS24, nil
	case 32:
		return malgo.FormatS32, nil
	default:
		return malgo.FormatUnknown, fmt.Errorf("unsupported bit depth: %d (supported: 8, 16, 24, 32)", f.BitDepth)
	}
}
