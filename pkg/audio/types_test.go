// ABOUTME: Tests for audio format types
// ABOUTME: Tests frame arithmetic and silence fill values
package audio

import (
	"testing"
	"time"
)

func TestBlockAlign(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		expected int
	}{
		{"stereo 16-bit", Format{48000, 2, 16}, 4},
		{"mono 8-bit", Format{8000, 1, 8}, 1},
		{"stereo 24-bit", Format{96000, 2, 24}, 6},
		{"5.1 32-bit", Format{48000, 6, 32}, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.BlockAlign(); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestFramesFor(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		d        time.Duration
		expected int
	}{
		{"10ms at 48kHz", Format{48000, 2, 16}, 10 * time.Millisecond, 480},
		{"10ms at 44.1kHz", Format{44100, 2, 16}, 10 * time.Millisecond, 441},
		{"rounds to nearest", Format{44100, 1, 16}, time.Millisecond, 44},
		{"zero", Format{48000, 2, 16}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.FramesFor(tt.d); got != tt.expected {
				t.Errorf("expected %d frames, got %d", tt.expected, got)
			}
		})
	}
}

func TestBytesForFramesInRoundTrip(t *testing.T) {
	f := Format{48000, 2, 16}
	buf := make([]byte, f.BytesFor(160))
	if len(buf) != 640 {
		t.Fatalf("expected 640 bytes, got %d", len(buf))
	}
	if got := f.FramesIn(buf); got != 160 {
		t.Errorf("expected 160 frames, got %d", got)
	}
}

func TestSilence(t *testing.T) {
	t.Run("8-bit silences to bias 128", func(t *testing.T) {
		f := Format{8000, 1, 8}
		buf := []byte{1, 2, 3, 4}
		f.Silence(buf)
		for i, b := range buf {
			if b != 128 {
				t.Fatalf("byte %d: expected 128, got %d", i, b)
			}
		}
	})

	t.Run("16-bit silences to zero", func(t *testing.T) {
		f := Format{48000, 2, 16}
		buf := []byte{1, 2, 3, 4}
		f.Silence(buf)
		for i, b := range buf {
			if b != 0 {
				t.Fatalf("byte %d: expected 0, got %d", i, b)
			}
		}
	})
}

func TestDurationOf(t *testing.T) {
	f := Format{48000, 2, 16}
	if got := f.DurationOf(480); got != 10*time.Millisecond {
		t.Errorf("expected 10ms, got %v", got)
	}
}
