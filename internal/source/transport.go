package source

import (
	"time"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Transport derives the playback position from play, pause and seek events
// and a wall clock. It starts paused at position zero.
//
// Transport is render-loop state and is not safe for concurrent use.
type Transport struct {
	now      Clock
	playing  bool
	offset   time.Duration // position at anchor
	anchor   time.Time     // wall time playback (re)started
	duration time.Duration // 0 means unbounded
}

// NewTransport creates a paused transport. A nil clock uses time.Now.
func NewTransport(now Clock) *Transport {
	if now == nil {
		now = time.Now
	}
	return &Transport{now: now}
}

// SetDuration bounds the position to [0, d]. Zero removes the bound.
func (t *Transport) SetDuration(d time.Duration) {
	t.duration = max(d, 0)
	t.offset = t.clamp(t.offset)
}

// Duration returns the bound set by SetDuration.
func (t *Transport) Duration() time.Duration {
	return t.duration
}

// Play starts or resumes playback. It reports whether the state changed.
func (t *Transport) Play() bool {
	if t.playing {
		return false
	}
	t.anchor = t.now()
	t.playing = true
	return true
}

// Pause freezes the position. It reports whether the state changed.
func (t *Transport) Pause() bool {
	if !t.playing {
		return false
	}
	t.offset = t.Position()
	t.playing = false
	return true
}

// Seek moves the position, keeping the play state.
func (t *Transport) Seek(pos time.Duration) {
	t.offset = t.clamp(pos)
	t.anchor = t.now()
}

// Playing reports whether playback is running.
func (t *Transport) Playing() bool {
	return t.playing
}

// Position returns the current playback position.
func (t *Transport) Position() time.Duration {
	if !t.playing {
		return t.offset
	}
	return t.clamp(t.offset + t.now().Sub(t.anchor))
}

func (t *Transport) clamp(pos time.Duration) time.Duration {
	pos = max(pos, 0)
	if t.duration > 0 {
		pos = min(pos, t.duration)
	}
	return pos
}
