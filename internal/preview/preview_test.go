package preview

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/geometry"
	"github.com/tphakala/go-audio-scope/internal/source"
	"github.com/tphakala/go-audio-scope/internal/testutil"
)

// mesh builds a mesh through the given points. The first segment is always
// fully faded (age 0), so tests that need a visible segment repeat the first
// point.
func mesh(t testing.TB, pts ...[2]float32) geometry.Mesh {
	t.Helper()
	a := make([]float32, len(pts))
	b := make([]float32, len(pts))
	for i, p := range pts {
		a[i], b[i] = p[0], p[1]
	}
	g, err := geometry.NewGenerator(max(len(pts), 2))
	require.NoError(t, err)
	return g.Build(source.Window{A: a, B: b}, geometry.DefaultOptions())
}

func uniforms(m geometry.Mesh) *beam.Uniforms {
	u := beam.DefaultUniforms()
	u.Color = [4]float32{0, 1, 0, 1}
	u.HalfWidth = 0.05
	u.TotalSegments = float32(m.Segments)
	return &u
}

func newRenderer(t testing.TB, w, h int) *Renderer {
	t.Helper()
	opts := DefaultOptions()
	opts.Width, opts.Height = w, h
	opts.Graticule = false
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		ok   bool
	}{
		{"default", DefaultWidth, DefaultHeight, true},
		{"one pixel", 1, 1, true},
		{"zero width", 0, 10, false},
		{"negative height", 10, -1, false},
		{"too large", maxDimension + 1, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Width, opts.Height = tt.w, tt.h
			r, err := New(opts)
			if !tt.ok {
				require.ErrorIs(t, err, ErrInvalidSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, r.Options().Width)
		})
	}
}

func TestRender_EmptyMeshIsBackground(t *testing.T) {
	r := newRenderer(t, 32, 16)
	m := mesh(t)
	img := r.Render(m, uniforms(m))

	want := [3]uint8{to8(DefaultBackground[0]), to8(DefaultBackground[1]), to8(DefaultBackground[2])}
	for y := range 16 {
		for x := range 32 {
			c := img.RGBAAt(x, y)
			require.Equal(t, want, [3]uint8{c.R, c.G, c.B}, "pixel (%d,%d)", x, y)
			require.Equal(t, uint8(0xff), c.A)
		}
	}
}

func TestRender_SingleSegmentFullyFaded(t *testing.T) {
	r := newRenderer(t, 64, 64)
	m := mesh(t, [2]float32{-0.5, 0}, [2]float32{0.5, 0})
	r.Accumulate(m, uniforms(m))

	for y := range 64 {
		for x := range 64 {
			require.Equal(t, [3]float32{}, r.At(x, y))
		}
	}
}

func TestRender_HorizontalBeam(t *testing.T) {
	r := newRenderer(t, 256, 256)
	m := mesh(t, [2]float32{-0.5, 0}, [2]float32{-0.5, 0}, [2]float32{0.5, 0})
	r.Accumulate(m, uniforms(m))

	center := r.At(128, 127)
	assert.Greater(t, center[1], float32(0.04), "beam core")
	assert.Zero(t, center[0], "color is green only")
	assert.InDelta(t, center[1], r.At(128, 128)[1], 1e-6, "symmetric across the beam")

	assert.Zero(t, r.At(128, 20)[1], "far above the beam")
	assert.Zero(t, r.At(220, 127)[1], "past the end cap")

	// Intensity falls off across the beam.
	assert.Greater(t, center[1], r.At(128, 122)[1])
	assert.Greater(t, r.At(128, 122)[1], r.At(128, 120)[1])

	testutil.AssertNoNaNOrInf(t, r.accum)
}

func TestRender_InvertMirrors(t *testing.T) {
	r := newRenderer(t, 256, 256)
	m := mesh(t, [2]float32{0.2, 0}, [2]float32{0.2, 0}, [2]float32{0.8, 0})

	u := uniforms(m)
	r.Accumulate(m, u)
	assert.Greater(t, r.At(192, 127)[1], float32(0))
	assert.Zero(t, r.At(64, 127)[1])

	u.Invert = beam.InvertFactors(true, false)
	r.Accumulate(m, u)
	assert.Greater(t, r.At(64, 127)[1], float32(0))
	assert.Zero(t, r.At(192, 127)[1])
}

func TestRender_AdditiveOverlap(t *testing.T) {
	r := newRenderer(t, 128, 128)
	a, b := [2]float32{-0.6, 0.2}, [2]float32{0.6, 0.2}

	once := mesh(t, a, a, b)
	u := uniforms(once)
	u.TotalSegments = 1
	r.Accumulate(once, u)
	single := r.At(64, 51)[1]
	require.Greater(t, single, float32(0))

	twice := mesh(t, a, a, b, a)
	r.Accumulate(twice, u)
	testutil.AssertRelativeError(t, float64(2*single), float64(r.At(64, 51)[1]), 1e-4)
}

func TestRender_IntensityScalesLinearly(t *testing.T) {
	r := newRenderer(t, 128, 128)
	m := mesh(t, [2]float32{0, -0.5}, [2]float32{0, -0.5}, [2]float32{0, 0.5})
	u := uniforms(m)

	r.Accumulate(m, u)
	base := r.At(63, 64)[1]
	u.Intensity = 2
	r.Accumulate(m, u)
	assert.InDelta(t, 2*base, r.At(63, 64)[1], 1e-6)
}

func TestWritePNG_Graticule(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 64, 48
	r, err := New(opts)
	require.NoError(t, err)

	m := mesh(t)
	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf, m, uniforms(m)))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	// Column 32 carries the vertical center division line.
	assert.Greater(t, luminance(img.At(32, 10)), luminance(img.At(35, 10)))
}

func TestSavePNG(t *testing.T) {
	r := newRenderer(t, 32, 32)
	a, b := testutil.Lissajous(64, 1, 2, 64)
	g, err := geometry.NewGenerator(64)
	require.NoError(t, err)
	m := g.Build(source.Window{A: a, B: b}, geometry.DefaultOptions())

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, r.SavePNG(path, m, uniforms(m)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
}

func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
}

func BenchmarkRender_Lissajous2048(b *testing.B) {
	r := newRenderer(b, 256, 256)
	x, y := testutil.Lissajous(2048, 3, 4, 2048)
	g, err := geometry.NewGenerator(2048)
	require.NoError(b, err)
	m := g.Build(source.Window{A: x, B: y}, geometry.DefaultOptions())
	u := uniforms(m)
	u.HalfWidth = beam.DefaultHalfWidth

	b.ReportAllocs()
	for b.Loop() {
		r.Accumulate(m, u)
	}
}
