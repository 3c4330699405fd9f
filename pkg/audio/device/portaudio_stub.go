//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package device

import (
	"fmt"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

// PortAudio backend implementation (stub).
type PortAudio struct{}

// NewPortAudio creates a PortAudio backend.
func NewPortAudio() (*PortAudio, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

func (p *PortAudio) Name() string { return "portaudio" }

func (p *PortAudio) NativeFormat(dir audio.Direction) (audio.Format, error) {
	return audio.Format{}, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

func (p *PortAudio) OpenRender(f audio.Format, periodMS int, cb RenderFunc) (Device, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

func (p *PortAudio) OpenCapture(f audio.Format, periodMS int, cb CaptureFunc) (Device, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

func (p *PortAudio) Close() error { return nil }
