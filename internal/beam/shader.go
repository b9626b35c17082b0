// Package beam holds the two-stage GPU program that draws the oscilloscope
// trace, its pipeline description, its uniform block and a CPU reference of
// both stages.
//
// The vertex stage expands each quad from the geometry arena around its
// segment. The fragment stage integrates a Gaussian beam cross-section along
// the segment:
//
//	alpha = (erf(x/√2σ) − erf((x−len)/√2σ)) · exp(−y²/2σ²) / 2 / len · hw
//
// with a plain 2D Gaussian for near-zero-length segments, times an afterglow
// ramp over the segment age. Output is additive.
package beam

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

//go:embed shaders/beam.wgsl
var shaderSource string

// ErrInvalidSPIRV is returned when the compiler output is not a SPIR-V module.
var ErrInvalidSPIRV = errors.New("invalid SPIR-V output")

// Source returns the WGSL program text.
func Source() string {
	return shaderSource
}

var compileOnce = sync.OnceValues(func() ([]uint32, error) {
	return compileSPIRV(shaderSource)
})

// CompileSPIRV compiles the beam program to SPIR-V words. The result is
// computed once and shared; callers must not modify it.
func CompileSPIRV() ([]uint32, error) {
	return compileOnce()
}

func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("failed to compile beam shader: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, words[0])
	}
	return words, nil
}
