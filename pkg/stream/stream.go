// ABOUTME: Stream type, creation and lifecycle
// ABOUTME: Bridges pull-driven hardware callbacks to the acquire/release client API
package stream

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio/convert"
	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio/device"
	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio/ring"
)

// ShareMode selects who owns the device format and timing grid.
type ShareMode uint8

const (
	// Shared streams run the engine mix format; the engine converts.
	Shared ShareMode = iota
	// Exclusive streams own the device format directly.
	Exclusive
)

func (m ShareMode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// Config describes the stream to open. Zero values pick the defaults:
// a 10ms period and a 200ms buffer.
type Config struct {
	Direction audio.Direction
	Share     ShareMode
	Format    audio.Format

	// Period is the minimum service granularity. Capture delivers whole
	// periods only.
	Period time.Duration

	// BufferDuration sizes the client-visible ring.
	BufferDuration time.Duration
}

const (
	defaultPeriod         = 10 * time.Millisecond
	defaultBufferDuration = 200 * time.Millisecond
)

// acquisitionKind distinguishes a pointer handed directly into the ring
// from one into a scratch copy-back buffer.
type acquisitionKind uint8

const (
	acqNone acquisitionKind = iota
	acqDirect
	acqIndirect
)

type acquisition struct {
	kind   acquisitionKind
	frames int
}

// Stream is one open audio endpoint session. The hardware engine drives
// one side through real-time callbacks; the client drives the other
// through acquire/release calls. At most one client goroutine may use
// the acquisition API at a time; the hardware callbacks may run
// concurrently with it.
type Stream struct {
	id        string
	direction audio.Direction
	share     ShareMode
	format    audio.Format // client-negotiated descriptor
	hwFormat  audio.Format // engine descriptor; rate differs only on capture

	periodFrames int
	bufFrames    int

	dev device.Device

	// mu guards everything below. Callback-side critical sections are
	// pure memory copies; resampling and allocation stay on the client
	// side, which keeps the real-time thread's hold time bounded.
	mu      sync.Mutex
	closed  bool
	playing bool
	written uint64 // frames across the client/hardware boundary

	ring    *ring.Buffer // client-visible ring
	capRing *ring.Buffer // raw hardware-rate ring, capture only
	conv    *convert.Converter

	acq acquisition

	// Lazily grown, reused scratch buffers.
	tmpBuf    []byte // acquisitions that straddle the ring boundary
	wrapBuf   []byte // wrap staging for capture delivery and converter pulls
	resampBuf []byte // converter output, one period

	now func() time.Time
}

// Open negotiates the format, allocates the rings and registers the
// hardware callback. The device starts running immediately; Start and
// Stop gate whether it carries real data.
func Open(backend device.Backend, cfg Config) (*Stream, error) {
	if cfg.Period <= 0 {
		cfg.Period = defaultPeriod
	}
	if cfg.BufferDuration <= 0 {
		cfg.BufferDuration = defaultBufferDuration
	}

	native, err := backend.NativeFormat(cfg.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceInvalidated, err)
	}

	hwFormat, nerr := negotiate(native, cfg)
	if nerr != nil {
		return nil, nerr
	}

	s := &Stream{
		id:        uuid.NewString(),
		direction: cfg.Direction,
		share:     cfg.Share,
		format:    cfg.Format,
		hwFormat:  hwFormat,
		now:       time.Now,
	}

	s.periodFrames = cfg.Format.FramesFor(cfg.Period)
	if s.periodFrames < 1 {
		s.periodFrames = 1
	}
	s.bufFrames = cfg.Format.FramesFor(cfg.BufferDuration)
	if cfg.Share == Exclusive {
		s.bufFrames -= s.bufFrames % s.periodFrames
	}
	if s.bufFrames < s.periodFrames {
		s.bufFrames = s.periodFrames
	}

	align := cfg.Format.BlockAlign()
	s.ring = ring.New(s.bufFrames, align)

	periodMS := int(cfg.Period / time.Millisecond)
	if periodMS < 1 {
		periodMS = 1
	}

	switch cfg.Direction {
	case audio.Render:
		s.dev, err = backend.OpenRender(hwFormat, periodMS, s.renderCallback)
	case audio.Capture:
		s.capRing = ring.New(hwFormat.FramesFor(cfg.BufferDuration), align)
		s.conv, err = convert.New(hwFormat, cfg.Format)
		if err == nil {
			s.dev, err = backend.OpenCapture(hwFormat, periodMS, s.captureCallback)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceInvalidated, err)
	}

	// The device runs for the stream's whole lifetime; the playing flag
	// decides between real data and silence.
	if err := s.dev.Start(); err != nil {
		s.dev.Close()
		return nil, fmt.Errorf("%w: %w", ErrDeviceInvalidated, err)
	}

	log.Printf("stream %s: opened %s/%s %s (period %d frames, buffer %d frames, device %s)",
		s.id, s.direction, s.share, s.format, s.periodFrames, s.bufFrames, hwFormat)

	return s, nil
}

// Close stops the device and releases the stream. The stream must not
// be used afterwards.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.playing = false
	s.mu.Unlock()

	if err := s.dev.Stop(); err != nil {
		log.Printf("stream %s: device stop: %v", s.id, err)
	}
	err := s.dev.Close()

	log.Printf("stream %s: closed", s.id)
	return err
}

// ID returns the stream's identity used in log lines.
func (s *Stream) ID() string { return s.id }

// Format returns the client-negotiated descriptor.
func (s *Stream) Format() audio.Format { return s.format }

// PeriodFrames returns the service granularity in frames.
func (s *Stream) PeriodFrames() int { return s.periodFrames }

// BufferSize returns the ring capacity in frames.
func (s *Stream) BufferSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bufFrames
}

// Start begins carrying audio. Fails with ErrNotStopped if already playing.
func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return ErrNotStopped
	}
	s.playing = true
	return nil
}

// Stop halts audio. Idempotent: the return reports whether the stream
// was playing, false meaning it was already stopped.
func (s *Stream) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasPlaying := s.playing
	s.playing = false
	return wasPlaying
}

// Started reports whether the stream is playing.
func (s *Stream) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Reset rewinds a stopped stream. Render streams restart position
// accounting from zero; capture folds still-held frames into the running
// total first, keeping capture position monotonic across resets.
func (s *Stream) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		return ErrNotStopped
	}
	if s.acq.kind != acqNone {
		return ErrOperationPending
	}

	if s.direction == audio.Render {
		s.written = 0
	} else {
		s.written += uint64(s.ring.Held())
	}
	s.ring.Reset()
	if s.capRing != nil {
		s.capRing.Reset()
		s.conv.Reset()
	}
	return nil
}

// CurrentPadding returns the frames held in the client-visible ring.
// For capture streams this drains the raw ring through the resampler
// first, so padding reflects everything already captured.
func (s *Stream) CurrentPadding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paddingLocked()
}

func (s *Stream) paddingLocked() int {
	if s.direction == audio.Capture {
		s.resampleLocked()
	}
	return s.ring.Held()
}

// Position returns the stream position in frames together with a
// timestamp. In shared mode the position is scaled to bytes, matching
// the Frequency scale.
func (s *Stream) Position() (uint64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := uint64(s.ring.Held())
	var pos uint64
	if s.written > held {
		pos = s.written - held
	}
	if s.share == Shared {
		pos *= uint64(s.format.BlockAlign())
	}
	return pos, s.now()
}

// Frequency returns the unit Position counts against per second:
// bytes in shared mode, frames in exclusive mode.
func (s *Stream) Frequency() uint64 {
	if s.share == Shared {
		return uint64(s.format.SampleRate) * uint64(s.format.BlockAlign())
	}
	return uint64(s.format.SampleRate)
}

// Latency reports the device latency plus one period.
func (s *Stream) Latency() time.Duration {
	return s.dev.Latency() + s.format.DurationOf(s.periodFrames)
}

// AllChannels addresses every channel in SetVolumes.
const AllChannels = -1

// SetVolumes applies the master and per-channel scalars. For
// AllChannels the effective level is the smallest product across
// channels; the device runs a single gain stage.
func (s *Stream) SetVolumes(channel int, master float32, volumes []float32) error {
	if channel < AllChannels || channel >= s.format.Channels || len(volumes) < s.format.Channels {
		return fmt.Errorf("invalid channel %d for %d-channel stream", channel, s.format.Channels)
	}

	level := float32(1)
	if channel == AllChannels {
		for i := 0; i < s.format.Channels; i++ {
			if v := master * volumes[i]; v < level {
				level = v
			}
		}
	} else {
		level = master * volumes[channel]
	}
	return s.dev.SetVolume(level)
}

// mulDiv computes a*b/c rounded to nearest.
func mulDiv(a, b, c int) int {
	return (a*b + c/2) / c
}
