package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tphakala/go-audio-scope/internal/analysis"
	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/resample"
)

// parseQuality maps a -quality flag value to a resampling quality.
func parseQuality(s string) (resample.Quality, error) {
	switch strings.ToLower(s) {
	case "linear":
		return resample.Linear, nil
	case "cubic":
		return resample.Cubic, nil
	default:
		return 0, fmt.Errorf("unknown quality %q (want linear or cubic)", s)
	}
}

// frameStep returns the playback time between frames.
func frameStep(fps int) (time.Duration, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("fps must be positive, got %d", fps)
	}
	return time.Second / time.Duration(fps), nil
}

func frameName(i int) string {
	return fmt.Sprintf("frame_%04d.png", i)
}

func formatReport(i int, pos time.Duration, r analysis.Report) string {
	return fmt.Sprintf("frame %4d @ %8v  rms %.3f/%.3f  peak %.3f/%.3f  corr %+.2f  %7.1f Hz",
		i, pos.Round(time.Millisecond), r.RMS[0], r.RMS[1], r.Peak[0], r.Peak[1], r.Correlation, r.DominantHz)
}

// writeSPIRV writes the words as a little-endian SPIR-V binary.
func writeSPIRV(w io.Writer, words []uint32) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, words); err != nil {
		return fmt.Errorf("failed to write SPIR-V: %w", err)
	}
	return bw.Flush()
}

func writeSPIRVFile(path string) error {
	words, err := beam.CompileSPIRV()
	if err != nil {
		return fmt.Errorf("failed to compile beam program: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeSPIRV(f, words); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
