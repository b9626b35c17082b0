package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tphakala/go-audio-scope/internal/simdops"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// errInvalidWhence is returned by PCMReader.Seek.
var errInvalidWhence = errors.New("invalid whence")

// DeinterleavePCM16 decodes 16-bit little-endian stereo frames from b into
// a and c and returns the number of frames written. It stops at the shorter
// of the input and the outputs, and never allocates.
func DeinterleavePCM16(b []byte, a, c []float32) int {
	n := min(len(b)/stereoFrame, len(a), len(c))
	for i := range n {
		off := i * stereoFrame
		a[i] = float32(int16(binary.LittleEndian.Uint16(b[off:]))) * pcm16InvScale
		c[i] = float32(int16(binary.LittleEndian.Uint16(b[off+bytesPerPCM16:]))) * pcm16InvScale
	}
	return n
}

// quantize16 converts a float sample to a clamped 16-bit value.
func quantize16(v float32) int {
	return int(math.Round(math.Max(-1, math.Min(1, float64(v))) * pcm16Scale))
}

// PCMReader streams a decoded track as 16-bit little-endian stereo, the
// format audio players expect. It implements io.ReadSeeker.
type PCMReader struct {
	buf *source.DecodedBuffer
	pos int64 // byte offset

	interleaved []float32
}

// NewPCMReader creates a reader positioned at the start of buf.
func NewPCMReader(buf *source.DecodedBuffer) *PCMReader {
	return &PCMReader{buf: buf}
}

// Size returns the stream length in bytes.
func (r *PCMReader) Size() int64 {
	return int64(r.buf.Len()) * stereoFrame
}

// Read implements io.Reader. Only whole frames are produced.
func (r *PCMReader) Read(p []byte) (int, error) {
	frame := int(r.pos / stereoFrame)
	frames := min(len(p)/stereoFrame, r.buf.Len()-frame)
	if frames <= 0 {
		if frame >= r.buf.Len() {
			return 0, io.EOF
		}
		return 0, nil
	}

	if cap(r.interleaved) < 2*frames {
		r.interleaved = make([]float32, 2*frames)
	}
	inter := r.interleaved[:2*frames]
	simdops.Float32Ops().Interleave2(inter, r.buf.A[frame:frame+frames], r.buf.B[frame:frame+frames])

	for i, v := range inter {
		binary.LittleEndian.PutUint16(p[i*bytesPerPCM16:], uint16(int16(quantize16(v))))
	}

	n := frames * stereoFrame
	r.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker. Offsets are rounded down to a frame boundary.
func (r *PCMReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = r.Size() + offset
	default:
		return 0, fmt.Errorf("%w: %d", errInvalidWhence, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative position %d", abs)
	}
	r.pos = min(abs-abs%stereoFrame, r.Size())
	return r.pos, nil
}

// Frame returns the index of the next frame to be read.
func (r *PCMReader) Frame() int64 {
	return r.pos / stereoFrame
}
