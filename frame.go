package scope

import (
	"fmt"
	"time"

	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/geometry"
	"github.com/tphakala/go-audio-scope/internal/intensity"
	"github.com/tphakala/go-audio-scope/internal/logging"
	"github.com/tphakala/go-audio-scope/internal/ringbuf"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// Frame is everything a render surface needs to draw one frame.
//
// Mesh and Window alias storage owned by the Scope and are only valid until
// the next call to Frame.
type Frame struct {
	Mesh     geometry.Mesh
	Uniforms beam.Uniforms

	// Mode is the source the window came from.
	Mode   source.Mode
	Window source.Window

	// Position is the playback position the window was selected for.
	Position time.Duration

	// Sequence counts frames since New, starting at 1.
	Sequence uint64
}

// Frame runs one render-loop step: apply any pending configuration, select
// the source, build the geometry and compute the uniforms. Starved frames
// (fewer than two sample pairs) yield an empty mesh.
func (s *Scope) Frame() Frame {
	s.applyPending()

	pos := s.transport.Position()
	src := s.selector.Select(s.Paused())
	w := src.Window(pos, s.cfg.SampleWindowSize)
	mesh := s.gen.Build(w, s.cfg.geometryOptions())

	s.frames++
	s.track(src.Mode(), mesh)

	return Frame{
		Mesh:     mesh,
		Uniforms: s.uniforms(mesh),
		Mode:     src.Mode(),
		Window:   w,
		Position: pos,
		Sequence: s.frames,
	}
}

func (s *Scope) uniforms(mesh geometry.Mesh) beam.Uniforms {
	return beam.Uniforms{
		Color:         s.cfg.BeamColor,
		Invert:        beam.InvertFactors(s.cfg.InvertAxes[0], s.cfg.InvertAxes[1]),
		HalfWidth:     s.cfg.BeamHalfWidth,
		Intensity:     intensity.Scale(s.cfg.BaseIntensity, s.cfg.Segments(), mesh.IndexCount),
		TotalSegments: float32(mesh.Segments),
	}
}

func (s *Scope) track(mode source.Mode, mesh geometry.Mesh) {
	wasStarved := s.NoSignal()

	s.mode = mode
	s.segments = mesh.Segments
	if mesh.Empty() {
		s.starved++
	} else {
		s.starved = 0
	}

	switch now := s.NoSignal(); {
	case now && !wasStarved:
		logging.Logger().Warn("scope: no signal", "frames", s.starved, "mode", mode)
	case !now && wasStarved:
		logging.Logger().Info("scope: signal restored", "mode", mode)
	}
}

// NoSignal reports whether the last StarvationFrames frames were all empty.
func (s *Scope) NoSignal() bool {
	return s.starved >= s.cfg.StarvationFrames
}

// Reconfigure queues cfg to take effect at the start of the next Frame, the
// only point where geometry storage is resized. It is safe to call from any
// goroutine; a later call replaces a configuration not yet applied.
// RingCapacity and TapQuantum cannot change.
func (s *Scope) Reconfigure(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if ringbuf.NextPowerOfTwo(cfg.RingCapacity) != s.ring.Capacity() {
		return fmt.Errorf("%w: ring capacity", ErrFixedConfig)
	}
	if cfg.TapQuantum != s.tap.Quantum() {
		return fmt.Errorf("%w: tap quantum", ErrFixedConfig)
	}

	c := *cfg
	s.pending.Store(&c)
	return nil
}

func (s *Scope) applyPending() {
	cfg := s.pending.Swap(nil)
	if cfg == nil {
		return
	}

	resized := cfg.SampleWindowSize != s.cfg.SampleWindowSize
	if resized {
		// Validate guarantees a size the generator accepts.
		if err := s.gen.Resize(cfg.SampleWindowSize); err != nil {
			logging.Logger().Error("scope: resize failed", "err", err)
			return
		}
		s.live.Resize(cfg.SampleWindowSize)
	}

	s.cfg = *cfg
	if resized {
		s.recapture()
	}

	logging.Logger().Info("scope: reconfigured",
		"window", s.cfg.SampleWindowSize,
		"sweep", s.cfg.SweepMode,
		"swap", s.cfg.AxisSwap)
}
