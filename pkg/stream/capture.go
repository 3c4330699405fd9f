// ABOUTME: Capture path: hardware delivery, resample drain and client acquire/release
// ABOUTME: Moves raw hardware-rate frames through the converter into the client ring
package stream

import (
	"log"
	"time"
)

// Packet is one captured period handed to the client. Data stays valid
// until the matching ReleaseCapture.
type Packet struct {
	Data   []byte
	Frames int

	// DevicePosition is the frame position of the packet start relative
	// to the device timeline.
	DevicePosition uint64

	// Timestamp approximates when the packet was captured.
	Timestamp time.Time
}

// captureCallback runs on the hardware thread when frames new frames
// have arrived. The destination is the raw ring's write position when
// the span is contiguous (zero-copy); a wrap or a stopped stream routes
// through the wrap scratch buffer instead. A stopped stream discards
// the delivery.
func (s *Stream) captureCallback(frames int, deliver func(dst []byte) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.hwFormat.BytesFor(frames)

	dst, direct := s.capRing.WriteSlice(frames)
	if !s.playing || !direct {
		if cap(s.wrapBuf) < n {
			s.wrapBuf = make([]byte, n)
		}
		if err := deliver(s.wrapBuf[:n]); err != nil {
			log.Printf("stream %s: capture delivery: %v", s.id, err)
			return
		}
		if s.playing {
			s.capRing.CopyIn(s.wrapBuf[:n])
		}
		return
	}

	if err := deliver(dst); err != nil {
		log.Printf("stream %s: capture delivery: %v", s.id, err)
		return
	}
	s.capRing.Commit(frames)
}

// resampleLocked drains the raw ring through the converter in
// period-sized chunks into the client ring. The converter consumes a
// variable, rate-dependent number of source frames per chunk, so the
// drain only runs while the raw ring holds a 2x surplus; converting with
// less risks starving the converter mid-chunk. Conversion failures are
// logged and stop the drain without touching chunks already committed.
func (s *Stream) resampleLocked() {
	if s.capRing == nil {
		return
	}
	resampPeriod := mulDiv(s.periodFrames, s.hwFormat.SampleRate, s.format.SampleRate)

	for s.capRing.Held() > 2*resampPeriod {
		n := s.format.BytesFor(s.periodFrames)
		if cap(s.resampBuf) < n {
			s.resampBuf = make([]byte, n)
		}

		got, err := s.conv.Convert(s.resampBuf[:n], s.periodFrames, s.pullRaw)
		if err != nil {
			log.Printf("stream %s: capture resample: %v", s.id, err)
			break
		}
		if got == 0 {
			break
		}
		s.ring.CopyIn(s.resampBuf[:s.format.BytesFor(got)])
	}
}

// pullRaw serves the converter from the raw ring, consuming as it goes.
// A span that wraps the ring boundary is staged through the wrap scratch
// buffer; the converter is done with each slice before pulling again.
func (s *Stream) pullRaw(frames int) []byte {
	if held := s.capRing.Held(); frames > held {
		frames = held
	}
	if frames == 0 {
		return nil
	}

	buf, ok := s.capRing.ReadSlice(frames)
	if !ok {
		n := s.hwFormat.BytesFor(frames)
		if cap(s.wrapBuf) < n {
			s.wrapBuf = make([]byte, n)
		}
		buf = s.wrapBuf[:n]
		s.capRing.Peek(buf)
	}
	s.capRing.Consume(frames)
	return buf
}

// AcquireCapture drains pending raw frames and hands out exactly one
// period, or ErrBufferEmpty when less than a period is ready. The data
// is either a direct window into the ring or a scratch copy when the
// period wraps the boundary.
func (s *Stream) AcquireCapture() (Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.acq.kind != acqNone {
		return Packet{}, ErrOutOfOrder
	}

	s.resampleLocked()

	if s.ring.Held() < s.periodFrames {
		return Packet{}, ErrBufferEmpty
	}

	data, ok := s.ring.ReadSlice(s.periodFrames)
	if ok {
		s.acq = acquisition{kind: acqDirect, frames: s.periodFrames}
	} else {
		n := s.format.BytesFor(s.periodFrames)
		if cap(s.tmpBuf) < n {
			s.tmpBuf = make([]byte, n)
		}
		data = s.tmpBuf[:n]
		s.ring.Peek(data)
		s.acq = acquisition{kind: acqIndirect, frames: s.periodFrames}
	}

	return Packet{
		Data:           data,
		Frames:         s.periodFrames,
		DevicePosition: s.written,
		Timestamp:      s.now(),
	}, nil
}

// ReleaseCapture returns the outstanding packet. frames must equal the
// packet size exactly; capture consumption is all-or-nothing. Zero
// abandons the acquisition and the packet is handed out again next time.
func (s *Stream) ReleaseCapture(frames int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frames == 0 {
		s.acq = acquisition{}
		return nil
	}
	if s.acq.kind == acqNone {
		return ErrOutOfOrder
	}
	if frames != s.acq.frames {
		return ErrInvalidSize
	}

	s.written += uint64(frames)
	s.ring.Consume(frames)
	s.acq = acquisition{}
	return nil
}

// NextPacketSize reports the frames the next AcquireCapture would hand
// out: one period when ready, zero otherwise.
func (s *Stream) NextPacketSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resampleLocked()

	if s.ring.Held() >= s.periodFrames {
		return s.periodFrames
	}
	return 0
}
