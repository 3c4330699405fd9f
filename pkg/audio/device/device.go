// ABOUTME: Hardware audio engine interface definitions
// ABOUTME: Common boundary for backends that drive real-time audio callbacks
package device

import (
	"errors"
	"time"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

// ErrCaptureUnsupported indicates the backend has no capture path.
var ErrCaptureUnsupported = errors.New("backend does not support capture")

// RenderFunc is invoked on the backend's real-time thread whenever the
// device needs frames more frames. The callback fills out, which holds
// exactly frames frames, and must not block.
type RenderFunc func(out []byte, frames int)

// DeliverFunc copies newly captured frames into dst, which the stream
// chose. It is only valid for the duration of the CaptureFunc call.
type DeliverFunc func(dst []byte) error

// CaptureFunc is invoked on the backend's real-time thread when frames
// new frames have arrived. The callback picks a destination and calls
// deliver to receive them, and must not block.
type CaptureFunc func(frames int, deliver DeliverFunc)

// Device is one open hardware endpoint. Start and Stop control whether
// the device runs its callback; Close releases it for good.
type Device interface {
	Start() error
	Stop() error

	// Latency reports the device-side latency estimate.
	Latency() time.Duration

	// SetVolume applies a gain scalar in [0, 1].
	SetVolume(scalar float32) error

	Close() error
}

// Backend opens devices against one hardware audio engine. Exactly one
// callback is registered per opened device for its whole lifetime.
type Backend interface {
	Name() string

	// NativeFormat reports the engine's preferred descriptor for the
	// given direction. Shared-mode streams are negotiated against it.
	NativeFormat(dir audio.Direction) (audio.Format, error)

	OpenRender(f audio.Format, periodMS int, cb RenderFunc) (Device, error)
	OpenCapture(f audio.Format, periodMS int, cb CaptureFunc) (Device, error)

	Close() error
}
