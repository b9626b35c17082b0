package preview

// Default image settings
const (
	DefaultWidth  = 512
	DefaultHeight = 512

	// Classic scope faceplate: 10 horizontal by 8 vertical divisions.
	DefaultDivisionsX = 10
	DefaultDivisionsY = 8

	maxDimension = 8192
)

// Graticule drawing
const (
	graticuleLineWidth = 1.0
	graticuleAlpha     = 0.18
	axisAlpha          = 0.32
	pixelCenter        = 0.5
)

// DefaultBackground is a dark phosphor green-black.
var DefaultBackground = [3]float32{0.01, 0.02, 0.015}
