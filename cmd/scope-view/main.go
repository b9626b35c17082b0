// Command scope-view plays an audio file and shows it on a live
// oscilloscope.
//
// Usage:
//
//	scope-view music.wav
//	scope-view -sweep -window 1024 track.xm
//
// Keys: SPACE pause, LEFT/RIGHT seek 5s, S sweep, X swap axes,
// UP/DOWN amplitude, L live tap or position-synced buffer, D debug overlay.
package main

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	scope "github.com/tphakala/go-audio-scope"
	"github.com/tphakala/go-audio-scope/internal/decode"
)

//go:embed beam_kage.go
var beamKage []byte

const (
	defaultRate   = 48000
	defaultSize   = 768
	analysisSize  = 4096
	playerLatency = 40 * time.Millisecond // audio buffered ahead of the speaker
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rate := flag.Int("rate", defaultRate, "Playback sample rate in Hz")
	window := flag.Int("window", scope.DefaultSampleWindowSize, "Samples per frame (power of two)")
	size := flag.Int("size", defaultSize, "Window size in pixels")
	sweep := flag.Bool("sweep", false, "Start in time-domain sweep mode")
	verbose := flag.Bool("v", false, "Log scope events to stderr")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.(wav|xm)\n\n", os.Args[0])
		flag.PrintDefaults()
		return errors.New("missing input file")
	}
	filename := flag.Arg(0)

	if *verbose {
		scope.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts := decode.DefaultOptions()
	opts.TargetRate = *rate
	buf, err := decode.File(filename, opts)
	if err != nil {
		return err
	}

	cfg := scope.DefaultConfig()
	cfg.SampleWindowSize = *window
	cfg.RingCapacity = max(cfg.RingCapacity, 4**window)
	cfg.SampleRate = buf.SampleRate
	cfg.SweepMode = *sweep

	s, err := scope.New(&cfg)
	if err != nil {
		return err
	}
	if err := s.LoadBuffer(buf); err != nil {
		return err
	}
	s.EnableLive(true)

	shader, err := ebiten.NewShader(beamKage)
	if err != nil {
		return fmt.Errorf("compile beam shader: %w", err)
	}

	// The player pulls PCM through the tap, so the live trace shows what
	// is being played.
	audioContext := audio.NewContext(buf.SampleRate)
	player, err := audioContext.NewPlayer(s.Tap().Reader(decode.NewPCMReader(buf)))
	if err != nil {
		return fmt.Errorf("create audio player: %w", err)
	}
	player.SetBufferSize(playerLatency)

	an, err := s.NewAnalyzer(analysisSize)
	if err != nil {
		return err
	}

	g := newGame(s, player, shader, an, filename)
	g.play()

	ebiten.SetWindowSize(*size, *size)
	ebiten.SetWindowTitle("scope - " + filename)
	return ebiten.RunGame(g)
}
