// Package geometry turns a sample window into quad geometry for the beam
// program.
//
// Every segment between consecutive sample pairs becomes one quad of four
// vertices. All four vertices carry the same segment endpoints plus a
// composite index idx = segment*4 + corner; the vertex stage expands the quad
// around the segment from that alone. The layout is a flat arena:
//
//	vertex  = startX, startY, endX, endY, idx   (5 float32, 20 bytes)
//	indices = 6 per quad, winding (0,1,2), (1,2,3)
//
// Storage is allocated once for the largest window and overwritten in place
// every frame; Mesh.IndexCount is the draw range.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-scope/internal/simdops"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// ErrInvalidSize is returned for a window size outside [2, MaxSamples].
var ErrInvalidSize = errors.New("invalid geometry size")

// Options controls how sample pairs map to clip-space endpoints.
type Options struct {
	// Amplitude scales both channels.
	Amplitude float32

	// SwapAxes exchanges channel A and B before sweep is applied.
	SwapAxes bool

	// Sweep replaces the first coordinate with a linear time ramp
	// SweepOrigin + i/numSegments × TimeScale (time-domain mode).
	Sweep       bool
	TimeScale   float32
	SweepOrigin float32
}

// DefaultOptions returns XY mode at unit amplitude.
func DefaultOptions() Options {
	return Options{
		Amplitude:   DefaultAmplitude,
		TimeScale:   DefaultTimeScale,
		SweepOrigin: DefaultSweepOrigin,
	}
}

// Generator owns the vertex and index arenas. It belongs to the render loop
// and is not safe for concurrent use.
type Generator struct {
	maxSamples int

	vertices []float32
	indices  []uint32

	// scaled channel scratch
	xs, ys []float32
}

// NewGenerator allocates storage for windows of up to maxSamples pairs.
func NewGenerator(maxSamples int) (*Generator, error) {
	g := &Generator{}
	if err := g.Resize(maxSamples); err != nil {
		return nil, err
	}
	return g, nil
}

// Resize reallocates the arenas for a new maximum window size. It must only
// be called between frames; meshes returned earlier keep the old storage.
func (g *Generator) Resize(maxSamples int) error {
	if maxSamples < minSamples || maxSamples > MaxSamples {
		return fmt.Errorf("%w: %d samples (want %d..%d)", ErrInvalidSize, maxSamples, minSamples, MaxSamples)
	}
	if maxSamples == g.maxSamples {
		return nil
	}

	maxSegments := maxSamples - 1
	g.maxSamples = maxSamples
	g.vertices = make([]float32, maxSegments*FloatsPerSegment)
	g.indices = make([]uint32, maxSegments*IndicesPerSegment)
	g.xs = make([]float32, maxSamples)
	g.ys = make([]float32, maxSamples)

	// The index pattern never changes, only the draw range does.
	for seg := range maxSegments {
		base := uint32(seg * VerticesPerSegment)
		for k, corner := range quadWinding {
			g.indices[seg*IndicesPerSegment+k] = base + corner
		}
	}
	return nil
}

// MaxSamples returns the largest window the arenas hold.
func (g *Generator) MaxSamples() int {
	return g.maxSamples
}

// MaxSegments returns the arena capacity in quads.
func (g *Generator) MaxSegments() int {
	return g.maxSamples - 1
}

// Build writes the quads for w into the arenas and returns views of the
// valid range. Windows longer than MaxSamples keep their newest MaxSamples
// pairs; windows shorter than two pairs produce an empty mesh. Build does not
// allocate.
func (g *Generator) Build(w source.Window, opts Options) Mesh {
	n := min(w.Len(), g.maxSamples)
	if n < minSamples {
		return Mesh{Vertices: g.vertices[:0], Indices: g.indices[:0]}
	}
	segments := n - 1

	first := w.Len() - n

	ops := simdops.Float32Ops()
	xs, ys := g.xs[:n], g.ys[:n]
	ops.Scale(xs, w.A[first:first+n], opts.Amplitude)
	ops.Scale(ys, w.B[first:first+n], opts.Amplitude)
	if opts.SwapAxes {
		xs, ys = ys, xs
	}
	if opts.Sweep {
		step := opts.TimeScale / float32(segments)
		for i := range xs {
			xs[i] = opts.SweepOrigin + float32(i)*step
		}
	}

	v := g.vertices[:segments*FloatsPerSegment]
	for seg := range segments {
		sx, sy := xs[seg], ys[seg]
		ex, ey := xs[seg+1], ys[seg+1]
		base := seg * FloatsPerSegment
		for corner := range VerticesPerSegment {
			off := base + corner*FloatsPerVertex
			v[off+offsetStart] = sx
			v[off+offsetStart+1] = sy
			v[off+offsetEnd] = ex
			v[off+offsetEnd+1] = ey
			v[off+offsetIndex] = float32(seg*VerticesPerSegment + corner)
		}
	}

	indexCount := segments * IndicesPerSegment
	return Mesh{
		Vertices:   v,
		Indices:    g.indices[:indexCount],
		Segments:   segments,
		IndexCount: indexCount,
	}
}

// Mesh is a view of the valid part of the arenas. It is only valid until the
// next Build on the same generator.
type Mesh struct {
	Vertices   []float32
	Indices    []uint32
	Segments   int
	IndexCount int
}

// VertexCount returns the number of vertices in the mesh.
func (m Mesh) VertexCount() int {
	return len(m.Vertices) / FloatsPerVertex
}

// Empty reports whether nothing would be drawn.
func (m Mesh) Empty() bool {
	return m.Segments == 0
}

// Vertex returns vertex j.
func (m Mesh) Vertex(j int) Vertex {
	off := j * FloatsPerVertex
	return Vertex{
		Start: [2]float32{m.Vertices[off+offsetStart], m.Vertices[off+offsetStart+1]},
		End:   [2]float32{m.Vertices[off+offsetEnd], m.Vertices[off+offsetEnd+1]},
		Index: uint32(m.Vertices[off+offsetIndex]),
	}
}

// Segment returns the endpoints of segment i, read from its first vertex.
func (m Mesh) Segment(i int) Segment {
	v := m.Vertex(i * VerticesPerSegment)
	return Segment{Start: v.Start, End: v.End}
}

// Vertex is one decoded vertex.
type Vertex struct {
	Start, End [2]float32
	Index      uint32
}

// Corner returns idx mod 4.
func (v Vertex) Corner() int { return int(v.Index % VerticesPerSegment) }

// SegmentIndex returns floor(idx / 4), the segment's age index.
func (v Vertex) SegmentIndex() int { return int(v.Index / VerticesPerSegment) }

// Segment is the line between two consecutive sample points.
type Segment struct {
	Start, End [2]float32
}

// Length returns the Euclidean segment length.
func (s Segment) Length() float32 {
	return float32(math.Hypot(float64(s.End[0]-s.Start[0]), float64(s.End[1]-s.Start[1])))
}
