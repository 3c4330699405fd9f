// ABOUTME: Ring buffer package for frame-accounted circular storage
// ABOUTME: Provides the wraparound copy and overrun policy used by streams
// Package ring implements the circular buffer underneath every stream.
//
// A Buffer tracks a read offset and a held-frame count over a fixed byte
// slice; the write offset is derived. Writes past capacity follow the
// engine's overrun policy: the held count saturates and the read offset
// advances, silently dropping the oldest frames.
//
// Buffer is not safe for concurrent use. The owning stream holds its own
// lock around every call; keeping the locking out of this package keeps
// one lock per stream instead of two nested ones.
package ring
