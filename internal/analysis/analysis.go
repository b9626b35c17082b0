// Package analysis is a read-only debug view of the sample stream. An
// Analyzer peeks the ring buffer independently of the renderer, never moving
// its read index, and reports level, stereo correlation and the dominant
// frequency of the most recent window.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tphakala/go-audio-scope/internal/ringbuf"
	"github.com/tphakala/go-audio-scope/internal/simdops"
	"github.com/tphakala/go-audio-scope/internal/source"
)

// Errors returned by New.
var (
	ErrInvalidSize = errors.New("analysis size must be a power of two >= 16")
	ErrInvalidRate = errors.New("invalid sample rate")
)

const minSize = 16

// Report summarizes one analysis window.
type Report struct {
	// Frames is the number of sample pairs analyzed.
	Frames int

	// Start is the ring index of the first analyzed frame.
	Start uint64

	RMS  [2]float64
	Peak [2]float64

	// Correlation is the Pearson correlation of the two channels: +1 for
	// mono, -1 for phase-inverted, 0 when undefined (silence).
	Correlation float64

	// DominantHz is the frequency of the strongest non-DC bin of the
	// channel mid signal, 0 when silent.
	DominantHz float64

	// Dropped is the ring's overrun counter at analysis time.
	Dropped uint64
}

// Analyzer owns its scratch storage and is not safe for concurrent use.
// Several analyzers may peek the same ring concurrently.
type Analyzer struct {
	ring       *ringbuf.Ring
	sampleRate int
	size       int

	peek   [][]float32
	a, b   []float64
	mid    []float64
	fft    *fourier.FFT
	coeffs []complex128
	mags   []float64
}

// New creates an analyzer over the newest size frames of ring. ring may be
// nil when only Window is used.
func New(ring *ringbuf.Ring, sampleRate, size int) (*Analyzer, error) {
	if size < minSize || !ringbuf.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, sampleRate)
	}

	an := &Analyzer{
		ring:       ring,
		sampleRate: sampleRate,
		size:       size,
		a:          make([]float64, size),
		b:          make([]float64, size),
		mid:        make([]float64, size),
		fft:        fourier.NewFFT(size),
		coeffs:     make([]complex128, size/2+1),
		mags:       make([]float64, size/2+1),
	}
	if ring != nil {
		an.peek = make([][]float32, max(ring.Channels(), 2))
		for ch := range an.peek {
			an.peek[ch] = make([]float32, size)
		}
	}
	return an, nil
}

// Size returns the analysis window length.
func (an *Analyzer) Size() int {
	return an.size
}

// Measure peeks the newest frames of the ring and analyzes them.
func (an *Analyzer) Measure() Report {
	if an.ring == nil {
		return Report{}
	}

	n, start := an.ring.PeekLatest(an.size, an.peek[:an.ring.Channels()])
	w := source.Window{A: an.peek[0][:n], B: an.peek[0][:n], Mode: source.ModeLive}
	if an.ring.Channels() > 1 {
		w.B = an.peek[1][:n]
	}

	r := an.Window(w)
	r.Start = start
	r.Dropped = an.ring.Dropped()
	return r
}

// Window analyzes up to Size frames of w.
func (an *Analyzer) Window(w source.Window) Report {
	n := min(w.Len(), an.size)
	r := Report{Frames: n, Start: uint64(max(w.Start, 0))}
	if n == 0 {
		return r
	}

	a32, b32 := w.A[:n], w.B[:n]
	r.RMS[0] = math.Sqrt(float64(simdops.Energy(a32)) / float64(n))
	r.RMS[1] = math.Sqrt(float64(simdops.Energy(b32)) / float64(n))

	a, b := an.a[:n], an.b[:n]
	for i := range n {
		a[i] = float64(a32[i])
		b[i] = float64(b32[i])
	}

	r.Peak[0] = absMax(a, an.mid[:n])
	r.Peak[1] = absMax(b, an.mid[:n])

	if n > 1 {
		if c := stat.Correlation(a, b, nil); !math.IsNaN(c) {
			r.Correlation = c
		}
	}

	r.DominantHz = an.dominant(a, b)
	return r
}

// dominant returns the frequency of the strongest bin of the Hann-windowed
// mid signal, zero padded to Size.
func (an *Analyzer) dominant(a, b []float64) float64 {
	clear(an.mid)
	mid := an.mid[:len(a)]
	floats.AddTo(mid, a, b)
	floats.Scale(0.5, mid)
	window.Hann(mid)

	an.fft.Coefficients(an.coeffs, an.mid)
	for i, c := range an.coeffs {
		an.mags[i] = cmplx.Abs(c)
	}

	bins := an.mags[1:]
	if floats.Max(bins) <= 0 {
		return 0
	}
	k := floats.MaxIdx(bins) + 1
	return an.fft.Freq(k) * float64(an.sampleRate)
}

// absMax returns max |s[i]| using scratch, which must be as long as s.
func absMax(s, scratch []float64) float64 {
	for i, v := range s {
		scratch[i] = math.Abs(v)
	}
	return floats.Max(scratch)
}
