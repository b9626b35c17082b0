package beam

import (
	"encoding/binary"
	"math"
)

// Uniforms is the per-frame uniform block of the beam program.
type Uniforms struct {
	Color         [4]float32
	Invert        [2]float32
	HalfWidth     float32
	Intensity     float32
	TotalSegments float32
}

// DefaultUniforms returns a green beam with no axis inversion.
func DefaultUniforms() Uniforms {
	return Uniforms{
		Color:     DefaultColor,
		Invert:    InvertFactors(false, false),
		HalfWidth: DefaultHalfWidth,
		Intensity: DefaultIntensity,
	}
}

// InvertFactors maps axis inversion flags to the ±1 multipliers applied to
// clip-space positions.
func InvertFactors(x, y bool) [2]float32 {
	f := [2]float32{1, 1}
	if x {
		f[0] = -1
	}
	if y {
		f[1] = -1
	}
	return f
}

// Put writes the block into dst, which must hold UniformSize bytes. Padding
// is zeroed.
func (u *Uniforms) Put(dst []byte) {
	_ = dst[UniformSize-1]
	for i, c := range u.Color {
		putFloat(dst, offColor+i*4, c)
	}
	putFloat(dst, offInvert, u.Invert[0])
	putFloat(dst, offInvert+4, u.Invert[1])
	putFloat(dst, offHalfWidth, u.HalfWidth)
	putFloat(dst, offIntensity, u.Intensity)
	putFloat(dst, offTotalSegments, u.TotalSegments)
	clear(dst[offTotalSegments+4 : UniformSize])
}

// Bytes returns the block as a new buffer ready for upload.
func (u *Uniforms) Bytes() []byte {
	b := make([]byte, UniformSize)
	u.Put(b)
	return b
}

func putFloat(dst []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(dst[off:off+4], math.Float32bits(v))
}
