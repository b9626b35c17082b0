// Package ringbuf implements the lock-free transport that moves audio frames
// from a real-time producer to any number of render-side readers.
//
// A Ring owns one fixed, power-of-two sized slot array per channel and three
// monotonically increasing counters:
//
//   - reserve: advanced by the producer before it touches any slot
//   - write:   advanced by the producer (atomic add) after the slots are stored
//   - read:    advanced by a consuming reader, or force-advanced by the
//     producer on overflow so that write-read never exceeds the capacity
//
// Peeks never move any counter, so several independent readers (a renderer and
// a debug view, for example) can run concurrently with the producer without
// coordination. A peek validates its copy against the reserve counter and
// discards any prefix the producer may have lapped during the copy.
//
// Samples are stored as atomic 32-bit words (IEEE-754 bits) so that the racy
// overwrite of old slots is well defined under the Go memory model.
package ringbuf

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync/atomic"
)

// Errors returned by New.
var (
	// ErrInvalidCapacity indicates a non-positive or oversized capacity.
	ErrInvalidCapacity = errors.New("invalid ring capacity")

	// ErrInvalidChannels indicates a non-positive or oversized channel count.
	ErrInvalidChannels = errors.New("invalid ring channel count")
)

// Ring is a single-producer, multi-reader circular store of audio frames.
//
// Write must only be called from one goroutine (the producer). Peek may be
// called from any number of goroutines. Read advances the shared read index and
// should have a single caller.
type Ring struct {
	// Separate cache lines to prevent false sharing between producer and readers.
	reserveIdx atomic.Uint64
	_pad0      [cacheLinePad]byte
	writeIdx   atomic.Uint64
	_pad1      [cacheLinePad]byte
	readIdx    atomic.Uint64
	_pad2      [cacheLinePad]byte
	dropped    atomic.Uint64

	slots    [][]atomic.Uint32
	capacity uint64
	mask     uint64
}

// New creates a ring holding at least capacity frames of the given number of
// channels. The capacity is rounded up to the next power of two so that index
// wraparound is a bitmask instead of a modulo.
func New(capacity, channels int) (*Ring, error) {
	if capacity < 1 || capacity > maxCapacity {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidCapacity, capacity, maxCapacity)
	}
	if channels < 1 || channels > maxChannels {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidChannels, channels, maxChannels)
	}

	size := NextPowerOfTwo(capacity)
	slots := make([][]atomic.Uint32, channels)
	for ch := range slots {
		slots[ch] = make([]atomic.Uint32, size)
	}

	return &Ring{
		slots:    slots,
		capacity: uint64(size),
		mask:     uint64(size - 1),
	}, nil
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Write appends one block of frames. block[ch] holds the samples for channel
// ch; the frame count is the shortest provided channel. Channels missing from
// block are written as silence.
//
// Write never blocks, never fails and never allocates. When the block does not
// fit, the oldest unread frames are dropped by force-advancing the read index
// and the dropped counter grows by exactly the overflow. Only the newest
// Capacity() frames of an oversized block are stored.
//
// Returns the number of frames the write index advanced by.
func (r *Ring) Write(block [][]float32) int {
	n := blockLen(block, len(r.slots))
	if n == 0 {
		return 0
	}

	w := r.writeIdx.Load()
	end := w + uint64(n)
	r.reserveIdx.Store(end)

	skip := 0
	if uint64(n) > r.capacity {
		skip = n - int(r.capacity)
	}

	for ch, dst := range r.slots {
		pos := w + uint64(skip)
		if ch >= len(block) {
			for i := skip; i < n; i++ {
				dst[pos&r.mask].Store(0)
				pos++
			}
			continue
		}
		for _, v := range block[ch][skip:n] {
			dst[pos&r.mask].Store(math.Float32bits(v))
			pos++
		}
	}

	r.writeIdx.Add(uint64(n))
	r.reclaim(end)
	return n
}

// reclaim force-advances the read index so that end-read <= capacity,
// counting every frame it skips as dropped.
func (r *Ring) reclaim(end uint64) {
	for {
		rd := r.readIdx.Load()
		if end-rd <= r.capacity {
			return
		}
		floor := end - r.capacity
		if r.readIdx.CompareAndSwap(rd, floor) {
			r.dropped.Add(floor - rd)
			return
		}
	}
}

// Peek copies up to count of the most recent frames ending at end (exclusive,
// in absolute frame indices) into out, oldest first. end is clamped to the
// latest completed write and the range is clamped to frames still resident in
// the ring. The frame count is further limited by the shortest out channel.
//
// Peek never mutates any counter and is safe to call concurrently with Write
// and with other Peek calls. It returns the number of frames copied and the
// absolute index of the first copied frame.
func (r *Ring) Peek(end uint64, count int, out [][]float32) (n int, start uint64) {
	count = min(count, blockLen(out, len(r.slots)), int(r.capacity))
	if count <= 0 {
		return 0, end
	}

	for range maxPeekAttempts {
		w := r.writeIdx.Load()
		e := min(end, w)

		lo := r.oldestResident(r.reserveIdx.Load())
		if e <= lo {
			return 0, e
		}
		s := lo
		if e-lo > uint64(count) {
			s = e - uint64(count)
		}

		r.copyOut(out, s, int(e-s))

		// Frames below the producer's reservation floor may have been
		// overwritten while we copied them.
		valid := r.oldestResident(r.reserveIdx.Load())
		if valid >= e {
			continue
		}
		if valid > s {
			shift := int(valid - s)
			for ch := range min(len(out), len(r.slots)) {
				copy(out[ch], out[ch][shift:e-s])
			}
			s = valid
		}
		return int(e - s), s
	}

	return 0, end
}

// PeekLatest copies up to count of the most recent frames into out.
func (r *Ring) PeekLatest(count int, out [][]float32) (n int, start uint64) {
	return r.Peek(r.writeIdx.Load(), count, out)
}

// Read copies up to the shortest out channel of unread frames into out and
// advances the read index past them. It returns the number of frames read.
// Frames the producer overwrote during the copy are skipped and the read is
// retried.
func (r *Ring) Read(out [][]float32) int {
	limit := uint64(blockLen(out, len(r.slots)))
	if limit == 0 {
		return 0
	}

	for range maxPeekAttempts {
		rd := r.readIdx.Load()
		w := r.writeIdx.Load()
		if w <= rd {
			return 0
		}
		n := min(w-rd, limit)

		r.copyOut(out, rd, int(n))

		if r.oldestResident(r.reserveIdx.Load()) > rd {
			continue
		}
		if r.readIdx.CompareAndSwap(rd, rd+n) {
			return int(n)
		}
	}

	return 0
}

// oldestResident returns the first absolute index that cannot have been
// overwritten by a write reserving up to reserve.
func (r *Ring) oldestResident(reserve uint64) uint64 {
	if reserve <= r.capacity {
		return 0
	}
	return reserve - r.capacity
}

func (r *Ring) copyOut(out [][]float32, start uint64, n int) {
	for ch := range min(len(out), len(r.slots)) {
		src := r.slots[ch]
		dst := out[ch][:n]
		pos := start
		for i := range dst {
			dst[i] = math.Float32frombits(src[pos&r.mask].Load())
			pos++
		}
	}
}

// Written returns the absolute write index: the total number of frames ever
// written.
func (r *Ring) Written() uint64 {
	return r.writeIdx.Load()
}

// ReadIndex returns the absolute read index.
func (r *Ring) ReadIndex() uint64 {
	return r.readIdx.Load()
}

// Available returns the number of unread frames.
func (r *Ring) Available() int {
	return int(r.writeIdx.Load() - r.readIdx.Load())
}

// Dropped returns the total number of frames lost to overflow.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}

// Capacity returns the ring capacity in frames (a power of two).
func (r *Ring) Capacity() int {
	return int(r.capacity)
}

// Channels returns the number of channels per frame.
func (r *Ring) Channels() int {
	return len(r.slots)
}

// Reset clears all counters and samples. It must not run concurrently with
// Write, Peek or Read.
func (r *Ring) Reset() {
	for _, ch := range r.slots {
		for i := range ch {
			ch[i].Store(0)
		}
	}
	r.reserveIdx.Store(0)
	r.writeIdx.Store(0)
	r.readIdx.Store(0)
	r.dropped.Store(0)
}

// blockLen returns the shortest length among the first channels slices of
// block, or 0 if block is empty.
func blockLen(block [][]float32, channels int) int {
	if len(block) == 0 {
		return 0
	}
	n := len(block[0])
	for ch := 1; ch < min(len(block), channels); ch++ {
		n = min(n, len(block[ch]))
	}
	return n
}
