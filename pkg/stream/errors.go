// ABOUTME: Sentinel errors for stream operations
// ABOUTME: Enables reliable error classification using errors.Is
package stream

import (
	"errors"
	"fmt"

	"github.com/Aqueduct-Audio/aqueduct-go/pkg/audio"
)

// Buffer acquisition protocol errors.
var (
	// ErrOutOfOrder indicates an acquire/release call out of sequence:
	// acquiring while a buffer is outstanding, or releasing without one.
	ErrOutOfOrder = errors.New("buffer operation out of order")

	// ErrInvalidSize indicates a release size that does not match the
	// preceding acquisition.
	ErrInvalidSize = errors.New("release size does not match acquisition")

	// ErrBufferTooLarge indicates a render acquisition that would exceed
	// the ring capacity given the current padding.
	ErrBufferTooLarge = errors.New("requested buffer exceeds available space")
)

// Lifecycle errors.
var (
	// ErrNotStopped indicates the operation requires a stopped stream.
	ErrNotStopped = errors.New("stream is not stopped")

	// ErrOperationPending indicates a buffer is still outstanding.
	ErrOperationPending = errors.New("buffer operation pending")

	// ErrClosed indicates the stream has been closed.
	ErrClosed = errors.New("stream is closed")
)

// Creation errors.
var (
	// ErrUnsupportedFormat indicates format negotiation failed. The
	// returned error is an *UnsupportedFormatError carrying an alternate
	// descriptor the engine does support.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDeviceInvalidated indicates the hardware engine reports the
	// device is gone. The stream must be closed and recreated.
	ErrDeviceInvalidated = errors.New("audio device invalidated")
)

// ErrBufferEmpty reports that capture holds less than one period. It is
// a status, not a failure: no new data yet, try again later.
var ErrBufferEmpty = errors.New("capture buffer empty")

// UnsupportedFormatError carries the negotiation outcome: the rejected
// descriptor and an alternate the engine supports. Matches
// ErrUnsupportedFormat via errors.Is.
type UnsupportedFormatError struct {
	Requested audio.Format
	Alternate audio.Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %s (closest supported: %s)", e.Requested, e.Alternate)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
