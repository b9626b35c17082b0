package resample

// Cubic interpolation constants
const (
	// cubicInterpolationPoints is the number of points used by the cubic kernel.
	cubicInterpolationPoints = 4

	// Catmull-Rom Hermite basis coefficients
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// Rate limits
const (
	minRate = 1
	maxRate = 768000

	// maxRatio bounds the output growth of a single conversion.
	maxRatio = 256.0
)

// Anti-aliasing filter constants, applied when downsampling. Frequencies
// are fractions of the output Nyquist rate.
const (
	halfBand = 0.5

	aaPassband      = 0.9
	aaTransition    = 0.1
	aaMinTransition = 0.002 // bounds the tap count for extreme ratios
	aaAttenuation   = 70.0  // dB

	sincZeroThreshold = 1e-10
)
