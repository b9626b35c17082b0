package scope

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/geometry"
	"github.com/tphakala/go-audio-scope/internal/mathutil"
	"github.com/tphakala/go-audio-scope/internal/ringbuf"
)

// Config holds scope configuration.
type Config struct {
	// SampleWindowSize is the number of sample pairs drawn per frame.
	// Must be a power of two. The trace has SampleWindowSize-1 segments.
	SampleWindowSize int

	// AmplitudeScale multiplies both channels before drawing.
	AmplitudeScale float32

	// SweepMode draws channel B against time instead of channel A
	// (time-domain mode). TimeScale is the sweep width in clip units.
	SweepMode bool
	TimeScale float32

	// AxisSwap exchanges the channels before sweep is applied.
	AxisSwap bool

	// BeamHalfWidth is the beam radius in clip units.
	BeamHalfWidth float32

	// BeamColor is the linear RGBA beam color.
	BeamColor [4]float32

	// InvertAxes mirrors the X and Y axes.
	InvertAxes [2]bool

	// BaseIntensity scales the normalized beam intensity.
	BaseIntensity float32

	// RingCapacity is the live tap buffer size in frames, rounded up to a
	// power of two. It is fixed for the lifetime of a Scope.
	RingCapacity int

	// TapQuantum is the largest block the tap decodes at once; longer PCM
	// writes are split. Fixed for the lifetime of a Scope.
	TapQuantum int

	// SampleRate is the live tap sample rate in Hz, used by analyzers.
	SampleRate int

	// StarvationFrames is the number of consecutive empty frames after
	// which NoSignal reports true.
	StarvationFrames int
}

// Common errors returned by the scope.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid scope configuration")

	// ErrFixedConfig indicates a Reconfigure that changes a setting fixed
	// at construction.
	ErrFixedConfig = errors.New("setting cannot change after New")

	// ErrNotSeekable indicates a TapReader over a stream without Seek.
	ErrNotSeekable = errors.New("stream is not seekable")
)

// DefaultConfig returns an XY scope with a green beam and a 2048 sample
// window.
func DefaultConfig() Config {
	return Config{
		SampleWindowSize: DefaultSampleWindowSize,
		AmplitudeScale:   DefaultAmplitudeScale,
		TimeScale:        DefaultTimeScale,
		BeamHalfWidth:    beam.DefaultHalfWidth,
		BeamColor:        beam.DefaultColor,
		BaseIntensity:    DefaultBaseIntensity,
		RingCapacity:     DefaultRingCapacity,
		TapQuantum:       DefaultTapQuantum,
		SampleRate:       DefaultSampleRate,
		StarvationFrames: DefaultStarvationFrames,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleWindowSize < minWindowSize || c.SampleWindowSize > geometry.MaxSamples ||
		!ringbuf.IsPowerOfTwo(c.SampleWindowSize) {
		return fmt.Errorf("%w: sample window size must be a power of two in [%d, %d], got %d",
			ErrInvalidConfig, minWindowSize, geometry.MaxSamples, c.SampleWindowSize)
	}

	if !positive(c.AmplitudeScale) {
		return fmt.Errorf("%w: amplitude scale must be positive", ErrInvalidConfig)
	}

	if !positive(c.TimeScale) {
		return fmt.Errorf("%w: time scale must be positive", ErrInvalidConfig)
	}

	if !positive(c.BeamHalfWidth) {
		return fmt.Errorf("%w: beam half width must be positive", ErrInvalidConfig)
	}

	for i, v := range c.BeamColor {
		if v < 0 || !finite(v) {
			return fmt.Errorf("%w: beam color component %d must be finite and >= 0", ErrInvalidConfig, i)
		}
	}

	if !positive(c.BaseIntensity) {
		return fmt.Errorf("%w: base intensity must be positive", ErrInvalidConfig)
	}

	if c.RingCapacity < c.SampleWindowSize {
		return fmt.Errorf("%w: ring capacity %d is smaller than the sample window", ErrInvalidConfig, c.RingCapacity)
	}

	if c.TapQuantum < 1 || c.TapQuantum > maxTapQuantum {
		return fmt.Errorf("%w: tap quantum must be 1-%d", ErrInvalidConfig, maxTapQuantum)
	}

	if c.SampleRate < 1 || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate must be 1-%d Hz", ErrInvalidConfig, maxSampleRate)
	}

	if c.StarvationFrames < 1 {
		return fmt.Errorf("%w: starvation frames must be at least 1", ErrInvalidConfig)
	}

	return nil
}

// Segments returns the configured segment count, SampleWindowSize-1.
func (c *Config) Segments() int {
	return c.SampleWindowSize - 1
}

func (c *Config) geometryOptions() geometry.Options {
	return geometry.Options{
		Amplitude:   c.AmplitudeScale,
		SwapAxes:    c.AxisSwap,
		Sweep:       c.SweepMode,
		TimeScale:   c.TimeScale,
		SweepOrigin: geometry.DefaultSweepOrigin,
	}
}

func finite(v float32) bool {
	return mathutil.IsFinite(float64(v))
}

func positive(v float32) bool {
	return v > 0 && finite(v)
}
