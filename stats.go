package scope

import (
	"github.com/tphakala/go-audio-scope/internal/simdops"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// Stats is a point-in-time view of the scope's counters.
type Stats struct {
	// Frames is the number of Frame calls so far.
	Frames uint64

	// Written and Dropped are the live ring's totals in frames.
	Written uint64
	Dropped uint64

	// Mode and Segments describe the most recent frame.
	Mode     source.Mode
	Segments int

	// StarvedFrames is the current run of empty frames.
	StarvedFrames int
	NoSignal      bool

	// SIMD names the vector instruction set in use.
	SIMD string
}

// Stats returns the current counters. Render loop only.
func (s *Scope) Stats() Stats {
	return Stats{
		Frames:        s.frames,
		Written:       s.ring.Written(),
		Dropped:       s.ring.Dropped(),
		Mode:          s.mode,
		Segments:      s.segments,
		StarvedFrames: s.starved,
		NoSignal:      s.NoSignal(),
		SIMD:          simdops.Info(),
	}
}
