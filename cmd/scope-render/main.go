// Command scope-render renders an audio file as oscilloscope frames.
//
// Usage:
//
//	scope-render -frames 120 input.wav out/
//	scope-render -sweep -window 1024 -start 30s music.wav out/
//	scope-render -spirv beam.spv -frames 0 input.wav out/   # only dump the shader
//
// Each frame is written as out/frame_NNNN.png, rasterized on the CPU with
// the same beam model the GPU program uses. WAV and XM inputs are supported.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	scope "github.com/tphakala/go-audio-scope"
	"github.com/tphakala/go-audio-scope/internal/analysis"
	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/decode"
	"github.com/tphakala/go-audio-scope/internal/preview"
)

const (
	// CLI defaults
	defaultFrames   = 60
	defaultFPS      = 60
	minRequiredArgs = 2
	outputDirPerm   = 0o755
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	frames := flag.Int("frames", defaultFrames, "Number of frames to render")
	fps := flag.Int("fps", defaultFPS, "Frames per second of playback time")
	start := flag.Duration("start", 0, "Playback position of the first frame")
	window := flag.Int("window", scope.DefaultSampleWindowSize, "Samples per frame (power of two)")
	width := flag.Int("width", preview.DefaultWidth, "Image width in pixels")
	height := flag.Int("height", preview.DefaultHeight, "Image height in pixels")
	sweep := flag.Bool("sweep", false, "Time-domain sweep instead of XY")
	swap := flag.Bool("swap", false, "Swap the X and Y channels")
	amp := flag.Float64("amp", scope.DefaultAmplitudeScale, "Amplitude scale")
	halfWidth := flag.Float64("beam", beam.DefaultHalfWidth, "Beam half width in clip units")
	grid := flag.Bool("grid", true, "Draw the graticule")
	rate := flag.Int("rate", 0, "Resample the input to this rate in Hz (0 keeps it)")
	quality := flag.String("quality", "cubic", "Resampling interpolation: linear, cubic")
	spirv := flag.String("spirv", "", "Also write the compiled beam program as SPIR-V to this file")
	stats := flag.Bool("stats", false, "Print level, correlation and pitch per frame")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.(wav|xm) outdir\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}
	inputPath, outDir := args[0], args[1]

	if *verbose {
		scope.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *spirv != "" {
		if err := writeSPIRVFile(*spirv); err != nil {
			return err
		}
		log.Printf("Wrote SPIR-V beam program to %s", *spirv)
	}
	if *frames <= 0 {
		return nil
	}

	q, err := parseQuality(*quality)
	if err != nil {
		return err
	}
	opts := decode.DefaultOptions()
	opts.TargetRate = *rate
	opts.Quality = q

	buf, err := decode.File(inputPath, opts)
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("Input: %s, %d Hz, %v", inputPath, buf.SampleRate, buf.Duration().Round(time.Millisecond))
	}

	cfg := scope.DefaultConfig()
	cfg.SampleWindowSize = *window
	cfg.RingCapacity = max(cfg.RingCapacity, *window)
	cfg.SweepMode = *sweep
	cfg.AxisSwap = *swap
	cfg.AmplitudeScale = float32(*amp)
	cfg.BeamHalfWidth = float32(*halfWidth)
	cfg.SampleRate = buf.SampleRate

	// Playback time advances exactly one frame per render.
	now := time.Unix(0, 0)
	s, err := scope.New(&cfg, scope.WithClock(func() time.Time { return now }))
	if err != nil {
		return err
	}
	if err := s.LoadBuffer(buf); err != nil {
		return err
	}
	s.Seek(*start)
	s.Play()

	popts := preview.DefaultOptions()
	popts.Width, popts.Height = *width, *height
	popts.Graticule = *grid
	r, err := preview.New(popts)
	if err != nil {
		return err
	}

	var an *analysis.Analyzer
	if *stats {
		if an, err = analysis.New(nil, buf.SampleRate, *window); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outDir, outputDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	step, err := frameStep(*fps)
	if err != nil {
		return err
	}

	begin := time.Now()
	for i := range *frames {
		f := s.Frame()
		path := filepath.Join(outDir, frameName(i))
		if err := r.SavePNG(path, f.Mesh, &f.Uniforms); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if an != nil {
			log.Print(formatReport(i, f.Position, an.Window(f.Window)))
		}
		now = now.Add(step)
	}

	st := s.Stats()
	log.Printf("Rendered %d frames to %s in %v (%s)", st.Frames, outDir, time.Since(begin).Round(time.Millisecond), st.SIMD)
	return nil
}
