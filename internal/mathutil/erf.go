// Package mathutil provides the numeric kernels shared by the beam shading
// model and its CPU reference implementation, plus the Kaiser window helpers
// used to design the resampler's anti-aliasing filter.
package mathutil

import (
	"math"
)

// Erf computes a polynomial approximation of the error function.
//
// The approximation is odd (Erf(-x) = -Erf(x)), saturates to ±1 and stays
// within [ErfMaxError] of math.Erf everywhere. It is deliberately the same
// closed form the WGSL beam program evaluates per fragment, so CPU-side
// shading matches the GPU within float precision.
//
// Reference: Abramowitz & Stegun, formula 7.1.27.
func Erf(x float64) float64 {
	s := 1.0
	if x < 0 {
		s = -1.0
	}
	a := math.Abs(x)

	// p = 1 + a1*a + a2*a² + a3*a³ + a4*a⁴ (Horner form)
	p := 1.0 + a*(erfCoeff1+a*(erfCoeff2+a*(erfCoeff3+a*erfCoeff4)))
	p *= p // p²
	p *= p // p⁴

	return s - s/p
}

// Gaussian evaluates the normalized 1D Gaussian density with standard
// deviation sigma at x. sigma must be positive.
func Gaussian(x, sigma float64) float64 {
	return math.Exp(-(x*x)/(halfDivisor*sigma*sigma)) / (sqrt2Pi * sigma)
}

// Smoothstep performs Hermite interpolation between 0 and 1 as x moves from
// edge0 to edge1, matching the GLSL/WGSL builtin. Edges must differ.
func Smoothstep(edge0, edge1, x float64) float64 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (smoothstepThree - smoothstepTwo*t)
}

// Clamp limits v to [lo, hi].
func Clamp[T float32 | float64 | int](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
