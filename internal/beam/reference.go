package beam

import (
	"math"

	"github.com/tphakala/go-audio-scope/internal/mathutil"
)

// Varyings are the values the vertex stage hands to the fragment stage.
type Varyings struct {
	Tangent float32 // -1 at the start cap, +1 at the end cap
	Side    float32 // -1 or +1 across the segment
	Length  float32 // segment length
	Age     float32 // segment index, floor(idx/4)
}

// VertexOutput is the result of the vertex stage for one vertex.
type VertexOutput struct {
	Position [2]float32
	Varyings
}

// ExpandVertex runs the vertex stage on the CPU. start and end are the
// segment endpoints stored in the vertex, idx its composite index.
func ExpandVertex(start, end [2]float32, idx float32, u *Uniforms) VertexOutput {
	corner := int(idx) % 4

	tang := float32(-1)
	current := start
	if corner >= 2 {
		tang = 1
		current = end
	}
	side := (float32(corner%2) - 0.5) * 2

	dx, dy := end[0]-start[0], end[1]-start[1]
	length := float32(math.Hypot(float64(dx), float64(dy)))
	dirX, dirY := float32(1), float32(0)
	if length > Epsilon {
		dirX, dirY = dx/length, dy/length
	}
	normX, normY := -dirY, dirX

	hw := u.HalfWidth
	return VertexOutput{
		Position: [2]float32{
			(current[0] + (tang*dirX+side*normX)*hw) * u.Invert[0],
			(current[1] + (tang*dirY+side*normY)*hw) * u.Invert[1],
		},
		Varyings: Varyings{
			Tangent: tang,
			Side:    side,
			Length:  length,
			Age:     float32(math.Floor(float64(idx) / 4)),
		},
	}
}

// LocalCoords maps interpolated tangent and side signs to beam-local
// coordinates: x runs along the segment from -hw at the start cap to
// length+hw at the end cap, y across it from -hw to +hw.
func LocalCoords(tangent, side, length, halfWidth float64) (x, y float64) {
	return (length/2+halfWidth)*tangent + length/2, halfWidth * side
}

// SegmentFrame projects point p into the local coordinates of the segment
// from start to end, the same frame LocalCoords produces. Degenerate
// segments use the (1,0) direction.
func SegmentFrame(p, start, end [2]float64) (x, y, length float64) {
	dx, dy := end[0]-start[0], end[1]-start[1]
	length = math.Hypot(dx, dy)
	dirX, dirY := 1.0, 0.0
	if length > Epsilon {
		dirX, dirY = dx/length, dy/length
	}
	px, py := p[0]-start[0], p[1]-start[1]
	return px*dirX + py*dirY, -px*dirY + py*dirX, length
}

// Alpha is the fragment stage beam intensity at local coordinates (x, y) of
// a segment. sigma = halfWidth/4. Segments shorter than Epsilon are shaded
// as a point: exp(-r²/2σ²)/2/√hw.
func Alpha(x, y, length, halfWidth float64) float64 {
	sigma := halfWidth / sigmaDivisor
	twoSigma2 := 2 * sigma * sigma

	if length < Epsilon {
		return math.Exp(-(x*x+y*y)/twoSigma2) / 2 / math.Sqrt(halfWidth)
	}

	a := mathutil.Erf(x/math.Sqrt2/sigma) - mathutil.Erf((x-length)/math.Sqrt2/sigma)
	return a * math.Exp(-y*y/twoSigma2) / 2 / length * halfWidth
}

// Afterglow is the phosphor persistence factor of a segment:
// smoothstep(0, 1/3, age / max(1, total)).
func Afterglow(age, total float64) float64 {
	return mathutil.Smoothstep(0, afterglowEdge, age/math.Max(1, total))
}

// Shade runs the fragment stage on the CPU and returns the premultiplied
// output color.
func Shade(v Varyings, u *Uniforms) [4]float32 {
	hw := float64(u.HalfWidth)
	length := float64(v.Length)
	x, y := LocalCoords(float64(v.Tangent), float64(v.Side), length, hw)

	k := float32(Alpha(x, y, length, hw) * Afterglow(float64(v.Age), float64(u.TotalSegments)) * float64(u.Intensity))
	return [4]float32{u.Color[0] * k, u.Color[1] * k, u.Color[2] * k, u.Color[3] * k}
}
