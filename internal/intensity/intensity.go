// Package intensity keeps the perceived trace brightness steady when the
// number of drawn segments changes between sources or window sizes.
package intensity

import (
	"math"

	"github.com/tphakala/go-audio-scope/internal/mathutil"
)

// Normalization bounds
const (
	MinFactor = 0.5
	MaxFactor = 2.0

	indicesPerSegment = 6
)

// Normalize returns clamp(sqrt(expected/actual), 0.5, 2.0) where expected is
// configuredSegments × 6 indices. When nothing is drawn (actualIndexCount
// ≤ 0) the neutral factor 1 is returned.
func Normalize(configuredSegments, actualIndexCount int) float32 {
	if actualIndexCount <= 0 || configuredSegments <= 0 {
		return 1
	}
	expected := float64(configuredSegments * indicesPerSegment)
	return float32(mathutil.Clamp(math.Sqrt(expected/float64(actualIndexCount)), MinFactor, MaxFactor))
}

// Scale applies Normalize to a base intensity.
func Scale(base float32, configuredSegments, actualIndexCount int) float32 {
	return base * Normalize(configuredSegments, actualIndexCount)
}
