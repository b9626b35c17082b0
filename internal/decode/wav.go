package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-scope/internal/source"
)

// WAV decodes a PCM WAV stream. Mono files are shown on both axes; files
// with more than two channels keep the first two.
func WAV(r io.ReadSeeker) (*source.DecodedBuffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV stream", ErrInvalidFile)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	format := decoder.Format()
	channels := format.NumChannels
	bitDepth := int(decoder.BitDepth)
	if channels < 1 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d channels, %d-bit", ErrInvalidFile, channels, bitDepth)
	}

	frames := len(pcm.Data) / channels
	if frames == 0 {
		return nil, fmt.Errorf("%w: no samples", source.ErrEmptyBuffer)
	}

	a := make([]float32, frames)
	var b []float32
	if channels > 1 {
		b = make([]float32, frames)
	}

	offset := 0
	if bitDepth == 8 {
		offset = unsigned8Offset
	}
	invMaxVal := 1.0 / float64(int64(1)<<(bitDepth-1))

	for i := range frames {
		frame := pcm.Data[i*channels : (i+1)*channels]
		a[i] = float32(float64(frame[0]-offset) * invMaxVal)
		if b != nil {
			b[i] = float32(float64(frame[1]-offset) * invMaxVal)
		}
	}

	return source.NewDecodedBuffer(a, b, format.SampleRate)
}

// EncodeWAV writes buf as a stereo 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, buf *source.DecodedBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	const bitDepth = 16
	encoder := wav.NewEncoder(w, buf.SampleRate, bitDepth, 2, wavFormatPCM)

	n := buf.Len()
	data := make([]int, 2*n)
	for i := range n {
		data[2*i] = quantize16(buf.A[i])
		data[2*i+1] = quantize16(buf.B[i])
	}

	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}
