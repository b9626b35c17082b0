package beam

// Shader entry points
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Beam model constants, mirrored in shaders/beam.wgsl.
const (
	// Epsilon guards the direction normalize and selects the point-beam
	// fallback for segments shorter than this.
	Epsilon = 1e-6

	// sigmaDivisor sets the Gaussian width: sigma = halfWidth / 4.
	sigmaDivisor = 4.0

	// afterglowEdge is where the afterglow ramp reaches full brightness,
	// as a fraction of the segment count.
	afterglowEdge = 1.0 / 3.0
)

// Defaults
const (
	DefaultHalfWidth = 0.012
	DefaultIntensity = 1.0
)

// DefaultColor is the classic P31 phosphor green.
var DefaultColor = [4]float32{0.12, 1.0, 0.32, 1.0}

// Uniform block layout (std140 compatible, 48 bytes):
//
//	color          vec4<f32>  offset  0
//	invert         vec2<f32>  offset 16
//	half_width     f32        offset 24
//	intensity      f32        offset 28
//	total_segments f32        offset 32
//	padding        3 × f32    offset 36
const (
	UniformSize = 48

	offColor         = 0
	offInvert        = 16
	offHalfWidth     = 24
	offIntensity     = 28
	offTotalSegments = 32
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203
