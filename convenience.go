package scope

import (
	"github.com/tphakala/go-audio-scope/internal/analysis"
	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/decode"
	"github.com/tphakala/go-audio-scope/internal/geometry"
	"github.com/tphakala/go-audio-scope/internal/resample"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000
)

// Types shared with the internal packages.
type (
	// DecodedBuffer is a fully decoded two-channel track.
	DecodedBuffer = source.DecodedBuffer

	// Window is the run of sample pairs drawn in one frame.
	Window = source.Window

	// Mode identifies the source of a frame.
	Mode = source.Mode

	// Snapshot is the frozen window shown while paused.
	Snapshot = source.Snapshot

	// Mesh is the per-frame quad geometry.
	Mesh = geometry.Mesh

	// Uniforms is the per-frame uniform block of the beam program.
	Uniforms = beam.Uniforms

	// Analyzer is a read-only debug reader of the live ring.
	Analyzer = analysis.Analyzer

	// Report is one Analyzer measurement.
	Report = analysis.Report
)

// Source modes.
const (
	ModeNone     = source.ModeNone
	ModeSnapshot = source.ModeSnapshot
	ModeLive     = source.ModeLive
	ModeBuffered = source.ModeBuffered
)

// NewDecodedBuffer wraps decoded channel data. A nil b makes the track mono.
func NewDecodedBuffer(a, b []float32, sampleRate int) (*DecodedBuffer, error) {
	return source.NewDecodedBuffer(a, b, sampleRate)
}

// LoadFile decodes a WAV or XM file, resampling it to targetRate when that
// is non-zero.
func LoadFile(path string, targetRate int) (*DecodedBuffer, error) {
	opts := decode.DefaultOptions()
	opts.TargetRate = targetRate
	return decode.File(path, opts)
}

// Resample converts a decoded track to another sample rate with cubic
// interpolation.
func Resample(buf *DecodedBuffer, rate int) (*DecodedBuffer, error) {
	return resample.Buffer(buf, rate, resample.Cubic)
}

// NewXY creates an XY-mode scope with default settings.
func NewXY(opts ...Option) (*Scope, error) {
	cfg := DefaultConfig()
	return New(&cfg, opts...)
}

// NewSweep creates a time-domain scope showing channel B against time.
func NewSweep(windowSize int, opts ...Option) (*Scope, error) {
	cfg := DefaultConfig()
	cfg.SweepMode = true
	cfg.SampleWindowSize = windowSize
	cfg.RingCapacity = max(cfg.RingCapacity, windowSize)
	return New(&cfg, opts...)
}

// ProgramWGSL returns the WGSL source of the beam program.
func ProgramWGSL() string {
	return beam.Source()
}

// ProgramSPIRV returns the beam program compiled to SPIR-V words.
func ProgramSPIRV() ([]uint32, error) {
	return beam.CompileSPIRV()
}
