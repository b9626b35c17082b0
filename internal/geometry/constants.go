package geometry

// Vertex layout
const (
	// FloatsPerVertex is startX, startY, endX, endY, idx.
	FloatsPerVertex = 5

	// VerticesPerSegment is one quad per segment.
	VerticesPerSegment = 4

	// IndicesPerSegment is two triangles per quad.
	IndicesPerSegment = 6

	// VertexStride is the byte stride of one vertex.
	VertexStride = FloatsPerVertex * 4

	// FloatsPerSegment is the vertex float count of one quad.
	FloatsPerSegment = FloatsPerVertex * VerticesPerSegment
)

// Attribute offsets within a vertex, in floats.
const (
	offsetStart = 0
	offsetEnd   = 2
	offsetIndex = 4
)

// quadWinding is the index pattern of one quad: triangles (0,1,2) and (1,2,3).
var quadWinding = [IndicesPerSegment]uint32{0, 1, 2, 1, 2, 3}

// Defaults
const (
	DefaultAmplitude   = 1.0
	DefaultTimeScale   = 2.0  // sweep spans two clip-space units
	DefaultSweepOrigin = -1.0 // left edge of clip space

	// minSamples is the smallest window that yields a segment.
	minSamples = 2
)

// Size limits
const (
	// MaxSamples keeps every composite vertex index exactly representable
	// as a float32 (idx < 2^24).
	MaxSamples = 1 << 21
)
