package resample

import (
	"math"

	"github.com/tphakala/go-audio-scope/internal/mathutil"
	"github.com/tphakala/go-audio-scope/internal/simdops"
)

// kaiserWindow returns a symmetric Kaiser window of the given length:
// w[n] = I₀(β·√(1 − ((n − α)/α)²)) / I₀(β), α = (length−1)/2.
func kaiserWindow(length int, beta float64) []float64 {
	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	alpha := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)
	for n := range w {
		x := (float64(n) - alpha) / alpha
		w[n] = mathutil.BesselI0(beta*math.Sqrt(1-x*x)) / i0Beta
	}
	return w
}

// designLowPass designs a windowed-sinc lowpass FIR with unity DC gain.
// cutoff and transition are normalized to the input rate (0 to 0.5).
func designLowPass(cutoff, transition, attenuation float64) []float32 {
	taps := mathutil.EstimateFilterLength(attenuation, transition)
	window := kaiserWindow(taps, mathutil.KaiserBeta(attenuation))
	center := float64(taps-1) / 2

	h := make([]float64, taps)
	for n := range h {
		x := float64(n) - center
		if math.Abs(x) < sincZeroThreshold {
			h[n] = 2 * cutoff * window[n]
			continue
		}
		h[n] = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x) * window[n]
	}

	ops := simdops.Float64Ops()
	if sum := ops.Sum(h); math.Abs(sum) > sincZeroThreshold {
		ops.Scale(h, h, 1/sum)
	}

	out := make([]float32, taps)
	for i, v := range h {
		out[i] = float32(v)
	}
	return out
}

// antiAlias returns the FIR the converter applies before decimating from
// rate from to rate to, or nil when no band limiting is needed.
func antiAlias(from, to int) []float32 {
	if to >= from {
		return nil
	}
	ratio := float64(to) / float64(from)
	return designLowPass(
		aaPassband*halfBand*ratio,
		max(aaTransition*halfBand*ratio, aaMinTransition),
		aaAttenuation,
	)
}

// lowpass filters input with the zero-phase FIR h, repeating the edge
// samples past both ends. The result lives in the converter's scratch
// storage and is valid until the next call.
func (c *Converter) lowpass(input []float32) []float32 {
	taps := len(c.aa)
	half := taps / 2
	n := len(input)

	padded := grow(c.padded, n+taps-1)
	for i := range half {
		padded[i] = input[0]
		padded[half+n+i] = input[n-1]
	}
	copy(padded[half:], input)

	out := grow(c.filtered, n)
	dot := simdops.Float32Ops().DotProductUnsafe
	for i := range out {
		out[i] = dot(padded[i:i+taps], c.aa)
	}

	c.padded, c.filtered = padded, out
	return out
}

func grow(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}
