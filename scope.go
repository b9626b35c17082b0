package scope

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tphakala/go-audio-scope/internal/analysis"
	"github.com/tphakala/go-audio-scope/internal/geometry"
	"github.com/tphakala/go-audio-scope/internal/logging"
	"github.com/tphakala/go-audio-scope/internal/ringbuf"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// Scope drives the per-frame pipeline from sample sources to beam geometry.
type Scope struct {
	cfg     Config
	pending atomic.Pointer[Config]

	ring *ringbuf.Ring
	tap  *Tap
	live *source.Live

	selector  *source.Selector
	transport *source.Transport
	gen       *geometry.Generator

	frames   uint64
	starved  int
	segments int
	mode     source.Mode
}

// Option configures optional Scope dependencies.
type Option func(*options)

type options struct {
	clock source.Clock
}

// WithClock sets the clock the transport derives the playback position
// from. The default is time.Now.
func WithClock(clock source.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// New creates a paused scope with the live tap disabled.
func New(config *Config, opts ...Option) (*Scope, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ring, err := ringbuf.New(config.RingCapacity, tapChannels)
	if err != nil {
		return nil, fmt.Errorf("create ring buffer: %w", err)
	}

	gen, err := geometry.NewGenerator(config.SampleWindowSize)
	if err != nil {
		return nil, fmt.Errorf("create geometry generator: %w", err)
	}

	s := &Scope{
		cfg:       *config,
		ring:      ring,
		tap:       newTap(ring, config.TapQuantum),
		live:      source.NewLive(ring, config.SampleWindowSize),
		selector:  source.NewSelector(),
		transport: source.NewTransport(o.clock),
		gen:       gen,
	}

	logging.Logger().Debug("scope: created",
		"window", config.SampleWindowSize,
		"ring", ring.Capacity(),
		"quantum", config.TapQuantum)

	return s, nil
}

// Config returns the configuration in effect for the current frame.
func (s *Scope) Config() Config {
	return s.cfg
}

// Tap returns the producer-side writer of the live ring buffer.
func (s *Scope) Tap() *Tap {
	return s.tap
}

// Ring returns the live ring buffer, for additional read-only peekers.
func (s *Scope) Ring() *ringbuf.Ring {
	return s.ring
}

// NewAnalyzer creates a debug reader that peeks the newest size frames of
// the live ring without disturbing the renderer.
func (s *Scope) NewAnalyzer(size int) (*analysis.Analyzer, error) {
	return analysis.New(s.ring, s.cfg.SampleRate, size)
}

// EnableLive switches the live tap source on or off. While on, it takes
// precedence over a loaded track.
func (s *Scope) EnableLive(on bool) {
	if on {
		s.selector.SetLive(s.live)
	} else {
		s.selector.SetLive(nil)
	}
	logging.Logger().Debug("scope: live source", "enabled", on)
}

// LiveEnabled reports whether the live tap source is on.
func (s *Scope) LiveEnabled() bool {
	return s.selector.Live() != nil
}

// LoadBuffer installs a decoded track as the buffered source and bounds the
// transport to its duration. A nil buffer unloads the track. If playback is
// paused the snapshot is recaptured from the new track.
func (s *Scope) LoadBuffer(buf *source.DecodedBuffer) error {
	if buf == nil {
		s.selector.SetBuffered(nil)
		s.transport.SetDuration(0)
		s.recapture()
		return nil
	}
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("load buffer: %w", err)
	}

	s.selector.SetBuffered(source.NewBuffered(buf))
	s.transport.SetDuration(buf.Duration())
	s.recapture()

	logging.Logger().Debug("scope: buffer loaded",
		"frames", buf.Len(),
		"rate", buf.SampleRate,
		"duration", buf.Duration())
	return nil
}

// Play resumes playback and drops the snapshot.
func (s *Scope) Play() {
	if s.transport.Play() {
		s.selector.Discard()
		logging.Logger().Debug("scope: play", "position", s.transport.Position())
	}
}

// Pause freezes playback and captures the current window as a snapshot.
func (s *Scope) Pause() {
	if s.transport.Pause() {
		s.recapture()
		logging.Logger().Debug("scope: pause", "position", s.transport.Position())
	}
}

// Seek moves the playback position. While paused, the snapshot is
// recaptured at the new position. While playing no snapshot is taken:
// snapshots are only shown while paused, and Pause captures a fresh one at
// the position it freezes.
func (s *Scope) Seek(pos time.Duration) {
	s.transport.Seek(pos)
	s.recapture()
}

// Position returns the playback position.
func (s *Scope) Position() time.Duration {
	return s.transport.Position()
}

// Paused reports whether playback is paused.
func (s *Scope) Paused() bool {
	return !s.transport.Playing()
}

// Snapshot returns the frozen window shown while paused, if any.
func (s *Scope) Snapshot() *source.Snapshot {
	return s.selector.Snapshot()
}

func (s *Scope) recapture() {
	if !s.Paused() {
		return
	}
	snap := s.selector.Capture(s.transport.Position(), s.cfg.SampleWindowSize)
	if snap != nil {
		logging.Logger().Debug("scope: snapshot captured",
			"frames", snap.Len(),
			"origin", snap.Origin())
	}
}
