//go:build ignore

//kage:unit pixels

package main

// Beam fragment program for the ebiten viewer. The quad is expanded on the
// CPU; the vertex color carries tangent sign, side sign, segment length and
// segment age. Lengths and HalfWidth are in clip units.

var Color vec4
var HalfWidth float
var Intensity float
var TotalSegments float

func erfApprox(x float) float {
	s := sign(x)
	a := abs(x)
	p := 1.0 + a*(0.278393+a*(0.230389+a*(0.000972+a*0.078108)))
	p = p * p
	p = p * p
	return s - s/p
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	const epsilon = 1e-6
	const sqrt2 = 1.4142135623730951

	hw := HalfWidth
	l := color.b
	x := (l/2+hw)*color.r + l/2
	y := hw * color.g
	sigma := hw / 4
	twoSigma2 := 2 * sigma * sigma

	alpha := 0.0
	if l < epsilon {
		alpha = exp(-(x*x+y*y)/twoSigma2) / 2 / sqrt(hw)
	} else {
		alpha = erfApprox(x/sqrt2/sigma) - erfApprox((x-l)/sqrt2/sigma)
		alpha = alpha * exp(-y*y/twoSigma2) / 2 / l * hw
	}

	glow := smoothstep(0, 1.0/3.0, color.a/max(1, TotalSegments))
	return Color * (alpha * glow * Intensity)
}
