package mathutil

// Error function approximation constants
// Abramowitz & Stegun, "Handbook of Mathematical Functions", formula 7.1.27:
//
//	erf(x) ≈ 1 - 1/(1 + a1*x + a2*x² + a3*x³ + a4*x⁴)⁴,  x ≥ 0
//
// Maximum absolute error 5e-4. The beam shader uses the same polynomial so
// that the CPU reference and the GPU program agree.
const (
	erfCoeff1 = 0.278393
	erfCoeff2 = 0.230389
	erfCoeff3 = 0.000972
	erfCoeff4 = 0.078108

	// ErfMaxError is the documented bound of the approximation.
	ErfMaxError = 5e-4
)

// Gaussian constants
const (
	sqrt2Pi = 2.5066282746310002 // √(2π), normalization of the unit Gaussian
)

// Smoothstep polynomial constants (Hermite 3t² - 2t³)
const (
	smoothstepThree = 3.0
	smoothstepTwo   = 2.0
)

// Common division constants
const (
	halfDivisor = 2.0 // Division by 2
)

// Modified Bessel I₀ polynomial coefficients
// Abramowitz & Stegun 9.8.1 (|x| ≤ 3.75) and 9.8.2 (|x| > 3.75).
const (
	besselSmallArgThreshold = 3.75

	besselI0Coeff1 = 3.5156229
	besselI0Coeff2 = 3.0899424
	besselI0Coeff3 = 1.2067492
	besselI0Coeff4 = 0.2659732
	besselI0Coeff5 = 0.360768e-1
	besselI0Coeff6 = 0.45813e-2

	besselI0AsympCoeff0 = 0.39894228
	besselI0AsympCoeff1 = 0.1328592e-1
	besselI0AsympCoeff2 = 0.225319e-2
	besselI0AsympCoeff3 = -0.157565e-2
	besselI0AsympCoeff4 = 0.916281e-2
	besselI0AsympCoeff5 = -0.2057706e-1
	besselI0AsympCoeff6 = 0.2635537e-1
	besselI0AsympCoeff7 = -0.1647633e-1
	besselI0AsympCoeff8 = 0.392377e-2
)

// Kaiser window design constants (Kaiser & Schafer)
const (
	kaiserAttHigh   = 50.0 // dB
	kaiserAttMedium = 21.0 // dB

	kaiserBetaHighCoeff1   = 0.1102
	kaiserBetaHighOffset   = 8.7
	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886

	kaiserLengthOffset     = 8.0
	kaiserLengthMultiplier = 2.285

	minFilterLength     = 3
	maxFilterLength     = 8191
	defaultTransitionBW = 0.01
)
