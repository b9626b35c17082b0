// Package decode turns audio files into fully decoded two-channel tracks for
// the buffered source: WAV through go-audio and FastTracker XM modules
// rendered with the xm player.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tphakala/go-audio-scope/internal/logging"
	"github.com/tphakala/go-audio-scope/internal/resample"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// Errors returned by the decoders.
var (
	// ErrUnsupportedFormat indicates a file that is neither WAV nor XM.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFile indicates a file with a recognized container but
	// unusable contents.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Format identifies a container.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatXM
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatXM:
		return "xm"
	default:
		return "unknown"
	}
}

// Options controls decoding.
type Options struct {
	// TargetRate resamples the decoded track when non-zero.
	TargetRate int

	// Quality is the interpolation used when resampling.
	Quality resample.Quality

	// MaxDuration bounds XM rendering. Zero uses DefaultMaxDuration.
	MaxDuration time.Duration
}

// DefaultOptions returns options that keep the file's own rate.
func DefaultOptions() Options {
	return Options{
		Quality:     resample.Cubic,
		MaxDuration: DefaultMaxDuration,
	}
}

// Detect identifies the container from its leading bytes, falling back to
// the file extension.
func Detect(name string, head []byte) Format {
	switch {
	case len(head) >= 12 && string(head[:4]) == riffMagic && string(head[8:12]) == waveMagic:
		return FormatWAV
	case bytes.HasPrefix(head, []byte(xmMagic)):
		return FormatXM
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".xm":
		return FormatXM
	default:
		return FormatUnknown
	}
}

// File decodes the file at path.
func File(path string, opts Options) (*source.DecodedBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return Bytes(filepath.Base(path), data, opts)
}

// Bytes decodes an in-memory file. name is only used for format detection.
func Bytes(name string, data []byte, opts Options) (*source.DecodedBuffer, error) {
	var (
		buf *source.DecodedBuffer
		err error
	)

	format := Detect(name, data)
	switch format {
	case FormatWAV:
		buf, err = WAV(bytes.NewReader(data))
	case FormatXM:
		buf, err = XM(data, opts.MaxDuration)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, err
	}

	logging.Logger().Debug("decoded track",
		"name", name,
		"format", format.String(),
		"rate", buf.SampleRate,
		"samples", buf.Len(),
		"duration", buf.Duration())

	if opts.TargetRate > 0 && opts.TargetRate != buf.SampleRate {
		from := buf.SampleRate
		buf, err = resample.Buffer(buf, opts.TargetRate, opts.Quality)
		if err != nil {
			return nil, fmt.Errorf("failed to resample %d Hz -> %d Hz: %w", from, opts.TargetRate, err)
		}
	}
	return buf, nil
}
