package decode

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/quasilyte/xm"
	"github.com/quasilyte/xm/xmfile"

	"github.com/tphakala/go-audio-scope/internal/source"
)

// XM renders a FastTracker II module to a stereo track at XMSampleRate.
// Rendering stops at the end of the song or after maxDuration (zero uses
// DefaultMaxDuration), whichever comes first.
func XM(data []byte, maxDuration time.Duration) (*source.DecodedBuffer, error) {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}

	parser := xmfile.NewParser(xmfile.ParserConfig{})
	module, err := parser.ParseFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing XM file: %w", ErrInvalidFile, err)
	}

	stream := xm.NewStream()
	stream.SetLooping(false)
	if err := stream.LoadModule(module, xm.LoadModuleConfig{SampleRate: XMSampleRate}); err != nil {
		return nil, fmt.Errorf("%w: compiling XM module: %w", ErrInvalidFile, err)
	}

	maxFrames := int(maxDuration.Seconds() * XMSampleRate)
	chunk := make([]byte, max(xmReadChunk, 2*int(stream.GetInfo().BytesPerTick)))
	a := make([]float32, 0, XMSampleRate)
	b := make([]float32, 0, XMSampleRate)

	for len(a) < maxFrames {
		n, err := stream.Read(chunk)
		frames := n / stereoFrame
		start := len(a)
		a = append(a, make([]float32, frames)...)
		b = append(b, make([]float32, frames)...)
		DeinterleavePCM16(chunk[:frames*stereoFrame], a[start:], b[start:])

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to render XM module: %w", err)
		}
		if n == 0 {
			break
		}
	}

	if len(a) > maxFrames {
		a, b = a[:maxFrames], b[:maxFrames]
	}
	return source.NewDecodedBuffer(a, b, XMSampleRate)
}
