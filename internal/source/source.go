package source

import (
	"time"

	"github.com/tphakala/go-audio-scope/internal/ringbuf"
)

// Source yields sample windows. The set of implementations is closed:
// *Snapshot, *Live, *Buffered and the empty source.
type Source interface {
	// Mode identifies the variant.
	Mode() Mode

	// Window returns up to n sample pairs for playback position pos.
	// Sources without a timeline ignore pos.
	Window(pos time.Duration, n int) Window

	isSource()
}

// empty is the source used when nothing is available.
type empty struct{}

func (empty) Mode() Mode                       { return ModeNone }
func (empty) Window(time.Duration, int) Window { return Window{Mode: ModeNone} }
func (empty) isSource()                        {}

// Buffered slices windows out of a fully decoded track without copying.
type Buffered struct {
	buf *DecodedBuffer
}

// NewBuffered wraps a decoded track.
func NewBuffered(buf *DecodedBuffer) *Buffered {
	return &Buffered{buf: buf}
}

// Mode returns ModeBuffered.
func (b *Buffered) Mode() Mode { return ModeBuffered }

// Buffer returns the wrapped track.
func (b *Buffered) Buffer() *DecodedBuffer { return b.buf }

// Window returns n consecutive pairs starting at floor(pos × sampleRate). The
// start is clamped so the window stays inside the track; tracks shorter than
// n yield the whole track. The returned slices alias the decoded buffer with
// their capacity capped, so appends cannot write into it.
func (b *Buffered) Window(pos time.Duration, n int) Window {
	total := b.buf.Len()
	n = min(n, total)
	if n <= 0 {
		return Window{Mode: ModeBuffered}
	}

	start := min(max(b.buf.IndexAt(pos), 0), int64(total-n))
	end := start + int64(n)

	return Window{
		A:     b.buf.A[start:end:end],
		B:     b.buf.B[start:end:end],
		Start: start,
		Mode:  ModeBuffered,
	}
}

func (b *Buffered) isSource() {}

// Live peeks the most recent frames of a ring buffer into scratch storage
// allocated once. The returned window is only valid until the next call.
type Live struct {
	ring    *ringbuf.Ring
	scratch [][]float32
}

// NewLive creates a live source reading at most maxSamples frames per window.
func NewLive(ring *ringbuf.Ring, maxSamples int) *Live {
	l := &Live{ring: ring}
	l.Resize(maxSamples)
	return l
}

// Resize reallocates the scratch storage. Not safe during a frame.
func (l *Live) Resize(maxSamples int) {
	l.scratch = make([][]float32, l.ring.Channels())
	for ch := range l.scratch {
		l.scratch[ch] = make([]float32, maxSamples)
	}
}

// Ring returns the underlying ring buffer.
func (l *Live) Ring() *ringbuf.Ring { return l.ring }

// Mode returns ModeLive.
func (l *Live) Mode() Mode { return ModeLive }

// Window returns the most recent n frames. Start is always 0: live data has no
// absolute timeline position. A mono ring feeds channel A to both axes.
func (l *Live) Window(_ time.Duration, n int) Window {
	got, _ := l.ring.PeekLatest(n, l.scratch)

	w := Window{A: l.scratch[0][:got], Mode: ModeLive}
	if len(l.scratch) > 1 {
		w.B = l.scratch[1][:got]
	} else {
		w.B = w.A
	}
	return w
}

func (l *Live) isSource() {}

// Snapshot is an immutable deep copy of a window. It never aliases the
// storage it was captured from and is safe to read from any goroutine.
type Snapshot struct {
	a, b     []float32
	start    int64
	origin   Mode
	position time.Duration
}

// NewSnapshot deep-copies w. pos records the playback position at capture.
func NewSnapshot(w Window, pos time.Duration) *Snapshot {
	n := w.Len()
	data := make([]float32, 2*n)
	a, b := data[:n:n], data[n:]
	copy(a, w.A[:n])
	copy(b, w.B[:n])

	return &Snapshot{
		a:        a,
		b:        b,
		start:    w.Start,
		origin:   w.Mode,
		position: pos,
	}
}

// Mode returns ModeSnapshot.
func (s *Snapshot) Mode() Mode { return ModeSnapshot }

// Origin returns the mode the snapshot was captured from.
func (s *Snapshot) Origin() Mode { return s.origin }

// Position returns the playback position at capture time.
func (s *Snapshot) Position() time.Duration { return s.position }

// Len returns the number of captured pairs.
func (s *Snapshot) Len() int { return len(s.a) }

// Window returns the first n captured pairs, regardless of pos. The slices
// have capped capacity; callers must treat them as read-only.
func (s *Snapshot) Window(_ time.Duration, n int) Window {
	n = min(max(n, 0), len(s.a))
	return Window{
		A:     s.a[:n:n],
		B:     s.b[:n:n],
		Start: s.start,
		Mode:  ModeSnapshot,
	}
}

// Equal reports whether two snapshots hold identical samples.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.a) != len(o.a) || s.start != o.start {
		return false
	}
	for i := range s.a {
		if s.a[i] != o.a[i] || s.b[i] != o.b[i] {
			return false
		}
	}
	return true
}

func (s *Snapshot) isSource() {}
