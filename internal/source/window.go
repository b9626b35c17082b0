// Package source selects, once per frame, where the scope's samples come from
// and yields them as a Window.
//
// Three mutually exclusive sources exist, chosen in priority order:
//
//  1. Snapshot: an immutable deep copy captured on pause or seek, active while
//     playback is paused.
//  2. Live: the most recent frames of a ring buffer fed by a real-time tap.
//     Live windows have no timeline position and always start at index 0.
//  3. Buffered: a slice of a fully decoded track at the current playback
//     position, floor(position × sampleRate), clamped to the track.
//
// Whichever source is active, the geometry generator receives a Window of the
// same shape. Windows with fewer than two frames simply produce no segments.
package source

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Errors returned when constructing sources.
var (
	// ErrEmptyBuffer indicates a decoded buffer without samples.
	ErrEmptyBuffer = errors.New("decoded buffer is empty")

	// ErrChannelMismatch indicates decoded channels of different lengths.
	ErrChannelMismatch = errors.New("decoded channels differ in length")

	// ErrInvalidSampleRate indicates a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// Mode identifies the source that produced a Window.
type Mode uint8

const (
	// ModeNone means no source is available; windows are empty.
	ModeNone Mode = iota

	// ModeSnapshot is a frozen copy captured on pause or seek.
	ModeSnapshot

	// ModeLive is the most recent ring buffer window.
	ModeLive

	// ModeBuffered is a window into a fully decoded track.
	ModeBuffered
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSnapshot:
		return "snapshot"
	case ModeLive:
		return "live"
	case ModeBuffered:
		return "buffered"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Window is an ordered run of sample pairs. A and B hold the two channels and
// are read-only to consumers; the producing source owns the storage and may
// reuse it on the next frame.
type Window struct {
	A, B []float32

	// Start is the absolute sample index of the first pair. Live windows
	// always report 0.
	Start int64

	// Mode is the source that produced the window.
	Mode Mode
}

// Len returns the number of complete sample pairs.
func (w Window) Len() int {
	return min(len(w.A), len(w.B))
}

// Segments returns the number of line segments the window yields (Len-1,
// never negative).
func (w Window) Segments() int {
	return max(w.Len()-1, 0)
}

// DecodedBuffer is a fully decoded two-channel track.
type DecodedBuffer struct {
	A, B       []float32
	SampleRate int
}

// NewDecodedBuffer validates and wraps decoded channel data. A nil b makes
// the buffer mono: channel A is shown on both axes.
func NewDecodedBuffer(a, b []float32, sampleRate int) (*DecodedBuffer, error) {
	if b == nil {
		b = a
	}
	buf := &DecodedBuffer{A: a, B: b, SampleRate: sampleRate}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Validate checks the buffer invariants.
func (d *DecodedBuffer) Validate() error {
	if d.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, d.SampleRate)
	}
	if len(d.A) == 0 {
		return ErrEmptyBuffer
	}
	if len(d.A) != len(d.B) {
		return fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, len(d.A), len(d.B))
	}
	return nil
}

// Len returns the number of sample pairs.
func (d *DecodedBuffer) Len() int {
	return min(len(d.A), len(d.B))
}

// Duration returns the track length.
func (d *DecodedBuffer) Duration() time.Duration {
	return time.Duration(float64(d.Len()) / float64(d.SampleRate) * float64(time.Second))
}

// IndexAt maps a playback position to an absolute sample index,
// floor(seconds × sampleRate). It is not clamped.
func (d *DecodedBuffer) IndexAt(pos time.Duration) int64 {
	return int64(math.Floor(pos.Seconds() * float64(d.SampleRate)))
}
