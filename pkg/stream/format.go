// ABOUTME: Format bridge between client descriptors and the hardware engine
// ABOUTME: Negotiates the engine descriptor and reports alternates on failure
package stream

import (
	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

const (
	minSampleRate = 8000
	maxSampleRate = 384000
	maxChannels   = 8
)

// negotiate maps the client-requested descriptor to the engine
// descriptor for this stream. Sample rates may differ only on capture
// streams: a shared-mode capture device runs at the engine's native rate
// and the resample pipeline converts to the client rate. Render and
// exclusive streams run the client descriptor directly.
//
// Failure returns an *UnsupportedFormatError naming the native
// descriptor as the supported alternate.
func negotiate(native audio.Format, cfg Config) (audio.Format, error) {
	if !formatSupported(cfg.Format) {
		return audio.Format{}, &UnsupportedFormatError{Requested: cfg.Format, Alternate: native}
	}

	if cfg.Direction == audio.Capture && cfg.Share == Shared {
		hw := cfg.Format
		hw.SampleRate = native.SampleRate
		return hw, nil
	}
	return cfg.Format, nil
}

func formatSupported(f audio.Format) bool {
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return false
	}
	if f.Channels < 1 || f.Channels > maxChannels {
		return false
	}
	return f.SampleRate >= minSampleRate && f.SampleRate <= maxSampleRate
}
