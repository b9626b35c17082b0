// Package resample converts fully decoded tracks between sample rates so a
// buffered source can be played back and displayed at the output device rate.
//
// Conversion is offline: the whole track is available, so every output sample
// is interpolated directly at its source position instead of streaming
// through a delay line. Downsampling first band-limits the track with a
// Kaiser-windowed sinc lowpass so content above the new Nyquist rate does not
// fold back into the picture.
package resample

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-scope/internal/source"
)

// Errors returned by the converter.
var (
	ErrInvalidRate    = errors.New("invalid sample rate")
	ErrInvalidQuality = errors.New("invalid quality")
)

// Quality selects the interpolation kernel.
type Quality int

const (
	// Linear is 2-point, 1st order interpolation.
	Linear Quality = iota

	// Cubic is 4-point, 3rd order Hermite (Catmull-Rom) interpolation.
	Cubic
)

// String returns the quality name.
func (q Quality) String() string {
	switch q {
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// Converter resamples channels from one rate to another. A Converter reuses
// internal scratch storage and must not be shared between goroutines.
type Converter struct {
	from, to int
	step     float64 // input samples per output sample
	quality  Quality

	aa               []float32 // anti-aliasing FIR, nil when upsampling
	padded, filtered []float32
}

// New creates a converter from rate from to rate to.
func New(from, to int, q Quality) (*Converter, error) {
	if from < minRate || from > maxRate || to < minRate || to > maxRate {
		return nil, fmt.Errorf("%w: %d Hz -> %d Hz", ErrInvalidRate, from, to)
	}
	if float64(to)/float64(from) > maxRatio {
		return nil, fmt.Errorf("%w: ratio %d/%d exceeds %.0f", ErrInvalidRate, to, from, maxRatio)
	}
	if q != Linear && q != Cubic {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return &Converter{
		from:    from,
		to:      to,
		step:    float64(from) / float64(to),
		quality: q,
		aa:      antiAlias(from, to),
	}, nil
}

// Ratio returns the output to input rate ratio.
func (c *Converter) Ratio() float64 {
	return float64(c.to) / float64(c.from)
}

// Taps returns the anti-aliasing filter length, 0 when none is applied.
func (c *Converter) Taps() int {
	return len(c.aa)
}

// OutputLen returns the number of samples Process produces for n inputs.
func (c *Converter) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}
	return int((int64(n)*int64(c.to) + int64(c.from) - 1) / int64(c.from))
}

// Process resamples input into dst, growing it if needed, and returns the
// filled slice. Samples outside the input are treated as repeating its edge.
func (c *Converter) Process(dst, input []float32) []float32 {
	n := c.OutputLen(len(input))
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	if n == 0 {
		return dst
	}
	if c.aa != nil {
		input = c.lowpass(input)
	}

	last := len(input) - 1
	at := func(i int) float64 {
		return float64(input[min(max(i, 0), last)])
	}

	for j := range dst {
		pos := float64(j) * c.step
		i := int(pos)
		x := pos - float64(i)

		switch c.quality {
		case Cubic:
			dst[j] = float32(hermite(at(i-1), at(i), at(i+1), at(i+2), x))
		default:
			dst[j] = float32((1-x)*at(i) + x*at(i+1))
		}
	}
	return dst
}

// hermite interpolates between y1 and y2 at fraction x using the
// neighbours y0 and y3: y = ((a*x + b)*x + c)*x + d.
func hermite(y0, y1, y2, y3, x float64) float64 {
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}

// Buffer converts a decoded track to rate to. A track already at that rate
// is returned unchanged. A mono track (B aliasing A) stays mono.
func Buffer(buf *source.DecodedBuffer, to int, q Quality) (*source.DecodedBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if buf.SampleRate == to {
		return buf, nil
	}

	c, err := New(buf.SampleRate, to, q)
	if err != nil {
		return nil, err
	}

	a := c.Process(nil, buf.A)
	if &buf.A[0] == &buf.B[0] {
		return source.NewDecodedBuffer(a, nil, to)
	}
	return source.NewDecodedBuffer(a, c.Process(nil, buf.B), to)
}
