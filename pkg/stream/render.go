// ABOUTME: Render path: client acquire/release and the hardware pull callback
// ABOUTME: Hands out ring or scratch regions and feeds the device under the stream lock
package stream

// AcquireRender hands out a contiguous writable region of frames frames.
// The region is pre-silenced. When the natural span would wrap the ring
// boundary the region is a scratch buffer copied into place on release.
// At most one acquisition may be outstanding per stream.
func (s *Stream) AcquireRender(frames int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pad := s.paddingLocked()

	if s.acq.kind != acqNone {
		return nil, ErrOutOfOrder
	}
	if frames == 0 {
		return nil, nil
	}
	if pad+frames > s.bufFrames {
		return nil, ErrBufferTooLarge
	}

	buf, ok := s.ring.WriteSlice(frames)
	if ok {
		s.acq = acquisition{kind: acqDirect, frames: frames}
	} else {
		n := s.format.BytesFor(frames)
		if cap(s.tmpBuf) < n {
			s.tmpBuf = make([]byte, n)
		}
		buf = s.tmpBuf[:n]
		s.acq = acquisition{kind: acqIndirect, frames: frames}
	}

	s.format.Silence(buf)
	return buf, nil
}

// ReleaseRender commits frames frames of the outstanding acquisition.
// Zero frames abandons it. silent re-silences the region before commit.
func (s *Stream) ReleaseRender(frames int, silent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frames == 0 {
		s.acq = acquisition{}
		return nil
	}
	if s.acq.kind == acqNone {
		return ErrOutOfOrder
	}
	if frames > s.acq.frames {
		return ErrInvalidSize
	}

	var buf []byte
	if s.acq.kind == acqDirect {
		buf, _ = s.ring.WriteSlice(frames)
	} else {
		buf = s.tmpBuf[:s.format.BytesFor(frames)]
	}

	if silent {
		s.format.Silence(buf)
	}

	if s.acq.kind == acqIndirect {
		s.ring.CopyIn(buf)
	} else {
		s.ring.Commit(frames)
	}

	s.written += uint64(frames)
	s.acq = acquisition{}
	return nil
}

// renderCallback runs on the hardware thread when the device needs
// frames more frames. While playing it drains the ring; any shortfall
// and the whole buffer when stopped are silence. Pure memory copies
// under the lock, nothing that can block.
func (s *Stream) renderCallback(out []byte, frames int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := 0
	if s.playing {
		n := s.ring.Held()
		if n > frames {
			n = frames
		}
		if n > 0 {
			s.ring.CopyOut(out[:s.format.BytesFor(n)])
			copied = n
		}
	}

	if copied < frames {
		s.format.Silence(out[s.format.BytesFor(copied):s.format.BytesFor(frames)])
	}
}
