// ABOUTME: Frame-accounted circular byte buffer
// ABOUTME: Shared storage between the hardware callback side and the client side
package ring

// Buffer is a circular byte buffer accounted in whole frames of a fixed
// size. A single read offset and held count describe the valid region;
// the write offset is always (read + held) mod capacity. Buffer does no
// locking of its own: the owning stream serializes access.
type Buffer struct {
	data      []byte
	frameSize int
	frames    int // capacity in frames
	read      int // frame index of the next read
	held      int // valid frames, 0 <= held <= frames
}

// New creates a buffer holding the given number of frames.
func New(frames, frameSize int) *Buffer {
	return &Buffer{
		data:      make([]byte, frames*frameSize),
		frameSize: frameSize,
		frames:    frames,
	}
}

// Capacity returns the buffer size in frames.
func (b *Buffer) Capacity() int { return b.frames }

// Held returns the number of valid frames.
func (b *Buffer) Held() int { return b.held }

// Free returns the number of frames writable without overrun.
func (b *Buffer) Free() int { return b.frames - b.held }

// FrameSize returns the size of one frame in bytes.
func (b *Buffer) FrameSize() int { return b.frameSize }

// ReadOffset returns the frame index of the next read.
func (b *Buffer) ReadOffset() int { return b.read }

// WriteOffset returns the frame index of the next write.
func (b *Buffer) WriteOffset() int { return (b.read + b.held) % b.frames }

// WriteSlice returns the contiguous region covering frames at the write
// offset. ok is false when the span would wrap the physical end of the
// buffer and no contiguous region exists.
func (b *Buffer) WriteSlice(frames int) ([]byte, bool) {
	w := b.WriteOffset()
	if w+frames > b.frames {
		return nil, false
	}
	return b.data[w*b.frameSize : (w+frames)*b.frameSize], true
}

// ReadSlice returns the contiguous region covering frames at the read
// offset, or ok=false when the span wraps.
func (b *Buffer) ReadSlice(frames int) ([]byte, bool) {
	if b.read+frames > b.frames {
		return nil, false
	}
	return b.data[b.read*b.frameSize : (b.read+frames)*b.frameSize], true
}

// CopyIn writes the whole frames in src at the write offset, splitting
// the copy in two when it straddles the boundary, and commits them.
// If src holds more frames than the buffer, only the newest survive.
// Returns the number of frames accounted.
func (b *Buffer) CopyIn(src []byte) int {
	frames := len(src) / b.frameSize
	if frames > b.frames {
		src = src[(frames-b.frames)*b.frameSize:]
		frames = b.frames
	}
	w := b.WriteOffset() * b.frameSize
	chunk := len(b.data) - w
	n := frames * b.frameSize
	if n > chunk {
		copy(b.data[w:], src[:chunk])
		copy(b.data, src[chunk:n])
	} else {
		copy(b.data[w:], src[:n])
	}
	b.Commit(frames)
	return frames
}

// Commit accounts for frames already written in place at the write
// offset. On saturation the read offset advances past the overwritten
// frames: the oldest data is dropped, never the newest.
func (b *Buffer) Commit(frames int) {
	over := b.held + frames - b.frames
	if over > 0 {
		b.read = (b.read + over) % b.frames
		b.held = b.frames
		return
	}
	b.held += frames
}

// CopyOut reads min(held, whole frames in dst) frames from the read
// offset, consuming them. Returns the number of frames copied.
func (b *Buffer) CopyOut(dst []byte) int {
	n := b.Peek(dst)
	b.Consume(n)
	return n
}

// Peek copies min(held, whole frames in dst) frames from the read offset
// without consuming them. Returns the number of frames copied.
func (b *Buffer) Peek(dst []byte) int {
	frames := len(dst) / b.frameSize
	if frames > b.held {
		frames = b.held
	}
	r := b.read * b.frameSize
	chunk := len(b.data) - r
	n := frames * b.frameSize
	if n > chunk {
		copy(dst, b.data[r:])
		copy(dst[chunk:n], b.data)
	} else {
		copy(dst, b.data[r:r+n])
	}
	return frames
}

// Consume drops up to frames from the read side.
func (b *Buffer) Consume(frames int) {
	if frames > b.held {
		frames = b.held
	}
	b.read = (b.read + frames) % b.frames
	b.held -= frames
}

// Reset zeroes the offsets and held count. The backing storage and any
// stale contents are kept.
func (b *Buffer) Reset() {
	b.read = 0
	b.held = 0
}
