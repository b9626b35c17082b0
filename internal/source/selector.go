package source

import (
	"time"
)

// Selector owns the available sources and picks one per frame.
//
// The selector belongs to the render loop: it is not safe for concurrent use.
// Only the Live source touches shared state, and it does so through the
// ring buffer's lock-free peek.
type Selector struct {
	live     *Live
	buffered *Buffered
	snapshot *Snapshot
}

// NewSelector creates a selector with no sources.
func NewSelector() *Selector {
	return &Selector{}
}

// SetLive installs or removes (nil) the low-latency tap source.
func (s *Selector) SetLive(l *Live) { s.live = l }

// SetBuffered installs or removes (nil) the decoded track source.
func (s *Selector) SetBuffered(b *Buffered) { s.buffered = b }

// Live returns the live source, if any.
func (s *Selector) Live() *Live { return s.live }

// Buffered returns the buffered source, if any.
func (s *Selector) Buffered() *Buffered { return s.buffered }

// Snapshot returns the current snapshot, if any.
func (s *Selector) Snapshot() *Snapshot { return s.snapshot }

// Select returns the active source in priority order: the snapshot while
// paused, then the live tap, then the decoded track. With nothing available
// it returns a source that yields empty windows.
func (s *Selector) Select(paused bool) Source {
	switch {
	case paused && s.snapshot != nil:
		return s.snapshot
	case s.live != nil:
		return s.live
	case s.buffered != nil:
		return s.buffered
	default:
		return empty{}
	}
}

// Capture freezes the current window into a new snapshot and makes it the
// active one. The decoded track is preferred because it is sample-accurate;
// otherwise the live window is deep-copied. Without any source, or when the
// window is empty, the snapshot is cleared and nil is returned.
func (s *Selector) Capture(pos time.Duration, n int) *Snapshot {
	var w Window
	switch {
	case s.buffered != nil:
		w = s.buffered.Window(pos, n)
	case s.live != nil:
		w = s.live.Window(pos, n)
	}

	if w.Len() == 0 {
		s.snapshot = nil
		return nil
	}
	s.snapshot = NewSnapshot(w, pos)
	return s.snapshot
}

// Discard drops the snapshot (on resume).
func (s *Selector) Discard() {
	s.snapshot = nil
}
