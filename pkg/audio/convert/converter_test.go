// ABOUTME: Tests for the pull-based sample-rate converter
// ABOUTME: Tests passthrough, rate conversion, starvation and chunk continuity
package convert

import (
	"encoding/binary"
	"testing"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// slicePull serves frames out of a fixed byte slice, like a test tape.
type slicePull struct {
	data  []byte
	align int
}

func (p *slicePull) pull(frames int) []byte {
	n := frames * p.align
	if n > len(p.data) {
		n = len(p.data) - len(p.data)%p.align
	}
	out := p.data[:n]
	p.data = p.data[n:]
	return out
}

func TestNewRejectsLayoutMismatch(t *testing.T) {
	tests := []struct {
		name string
		src  audio.Format
		dst  audio.Format
	}{
		{"channel mismatch", audio.Format{SampleRate: 44100, Channels: 1, BitDepth: 16}, audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}},
		{"depth mismatch", audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.src, tt.dst); err == nil {
				t.Error("expected layout mismatch error")
			}
		})
	}
}

func TestConvertSameRatePassthrough(t *testing.T) {
	f := audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 16}
	c, err := New(f, f)
	if err != nil {
		t.Fatal(err)
	}

	src := &slicePull{data: pcm16(10, 20, 30, 40, 50, 60), align: 2}
	dst := make([]byte, f.BytesFor(4))

	n, err := c.Convert(dst, 4, src.pull)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("expected 4 frames, got %d", n)
	}

	for i, want := range []int16{10, 20, 30, 40} {
		got := int16(binary.LittleEndian.Uint16(dst[i*2:]))
		if got != want {
			t.Errorf("frame %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestConvertUpsamples(t *testing.T) {
	// 44100 -> 48000 on a ramp: every requested frame must be produced
	// and the output must stay monotonic.
	src := audio.Format{SampleRate: 44100, Channels: 1, BitDepth: 16}
	dst := audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 16}
	c, err := New(src, dst)
	if err != nil {
		t.Fatal(err)
	}

	samples := make([]int16, 2000)
	for i := range samples {
		samples[i] = int16(i * 10)
	}
	tape := &slicePull{data: pcm16(samples...), align: 2}

	out := make([]byte, dst.BytesFor(480))
	n, err := c.Convert(out, 480, tape.pull)
	if err != nil {
		t.Fatal(err)
	}
	if n != 480 {
		t.Fatalf("expected 480 frames, got %d", n)
	}

	prev := int16(-1)
	for i := 0; i < n; i++ {
		got := int16(binary.LittleEndian.Uint16(out[i*2:]))
		if got < prev {
			t.Fatalf("frame %d: output not monotonic (%d after %d)", i, got, prev)
		}
		prev = got
	}
}

func TestConvertShortOnStarvation(t *testing.T) {
	src := audio.Format{SampleRate: 44100, Channels: 1, BitDepth: 16}
	dst := audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 16}
	c, err := New(src, dst)
	if err != nil {
		t.Fatal(err)
	}

	// Only 10 source frames for a 480-frame request.
	tape := &slicePull{data: pcm16(make([]int16, 10)...), align: 2}
	out := make([]byte, dst.BytesFor(480))

	n, err := c.Convert(out, 480, tape.pull)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 || n >= 480 {
		t.Errorf("expected a short conversion, got %d frames", n)
	}
}

func TestConvertCarriesPhaseAcrossCalls(t *testing.T) {
	src := audio.Format{SampleRate: 44100, Channels: 1, BitDepth: 16}
	dstF := audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 16}

	samples := make([]int16, 4000)
	for i := range samples {
		samples[i] = int16(i * 7)
	}

	// One big conversion.
	whole, err := New(src, dstF)
	if err != nil {
		t.Fatal(err)
	}
	tape := &slicePull{data: pcm16(samples...), align: 2}
	wholeOut := make([]byte, dstF.BytesFor(960))
	if n, err := whole.Convert(wholeOut, 960, tape.pull); err != nil || n != 960 {
		t.Fatalf("whole conversion: n=%d err=%v", n, err)
	}

	// Same data in two chunks through a second converter.
	chunked, err := New(src, dstF)
	if err != nil {
		t.Fatal(err)
	}
	tape2 := &slicePull{data: pcm16(samples...), align: 2}
	chunkOut := make([]byte, dstF.BytesFor(960))
	if n, err := chunked.Convert(chunkOut, 480, tape2.pull); err != nil || n != 480 {
		t.Fatalf("first chunk: n=%d err=%v", n, err)
	}
	if n, err := chunked.Convert(chunkOut[dstF.BytesFor(480):], 480, tape2.pull); err != nil || n != 480 {
		t.Fatalf("second chunk: n=%d err=%v", n, err)
	}

	// Chunking must not introduce a seam: allow only last-bit rounding
	// differences from the carried phase arithmetic.
	for i := 0; i < 960; i++ {
		a := int16(binary.LittleEndian.Uint16(wholeOut[i*2:]))
		b := int16(binary.LittleEndian.Uint16(chunkOut[i*2:]))
		if d := int(a) - int(b); d < -1 || d > 1 {
			t.Fatalf("frame %d: whole=%d chunked=%d", i, a, b)
		}
	}
}

func TestConvertRejectsPartialFramePull(t *testing.T) {
	f := audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}
	c, err := New(f, f)
	if err != nil {
		t.Fatal(err)
	}

	bad := func(frames int) []byte { return make([]byte, 3) }
	dst := make([]byte, f.BytesFor(4))
	if _, err := c.Convert(dst, 4, bad); err == nil {
		t.Error("expected partial frame error")
	}
}
