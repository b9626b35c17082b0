// Package preview rasterizes beam meshes on the CPU.
//
// It evaluates the same shading model as the GPU program (see package beam)
// for every pixel each quad covers and accumulates the results additively,
// so frames can be inspected and saved as PNG without a GPU. A gg context
// draws the graticule on top and encodes the image.
package preview

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/geometry"
	"github.com/tphakala/go-audio-scope/internal/mathutil"
)

// ErrInvalidSize is returned for image dimensions outside [1, 8192].
var ErrInvalidSize = errors.New("invalid preview size")

// Options configures the rasterizer.
type Options struct {
	Width, Height int

	// Graticule draws the division grid and center axes.
	Graticule  bool
	DivisionsX int
	DivisionsY int

	Background [3]float32
}

// DefaultOptions returns a square 512px preview with graticule.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Graticule:  true,
		DivisionsX: DefaultDivisionsX,
		DivisionsY: DefaultDivisionsY,
		Background: DefaultBackground,
	}
}

// Renderer owns a floating point accumulation buffer and is not safe for
// concurrent use.
type Renderer struct {
	opts  Options
	accum []float32 // RGB per pixel
}

// New creates a renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Width < 1 || opts.Height < 1 || opts.Width > maxDimension || opts.Height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	opts.DivisionsX = max(opts.DivisionsX, 1)
	opts.DivisionsY = max(opts.DivisionsY, 1)

	return &Renderer{
		opts:  opts,
		accum: make([]float32, opts.Width*opts.Height*3),
	}, nil
}

// Options returns the renderer settings.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render rasterizes m with uniforms u and returns the beam image without
// graticule.
func (r *Renderer) Render(m geometry.Mesh, u *beam.Uniforms) *image.RGBA {
	r.Accumulate(m, u)
	return r.resolve()
}

// Accumulate clears the buffer and adds the contribution of every quad.
func (r *Renderer) Accumulate(m geometry.Mesh, u *beam.Uniforms) {
	clear(r.accum)
	for i := range m.Segments {
		r.segment(m.Segment(i), i, u)
	}
}

// Context renders m and returns a gg context holding the beam image with the
// graticule drawn on top. The caller must Close it.
func (r *Renderer) Context(m geometry.Mesh, u *beam.Uniforms) (*gg.Context, error) {
	dc := gg.NewContextForImage(r.Render(m, u))
	if !r.opts.Graticule {
		return dc, nil
	}
	if err := r.graticule(dc); err != nil {
		_ = dc.Close()
		return nil, err
	}
	return dc, nil
}

// WritePNG renders m and encodes it as PNG.
func (r *Renderer) WritePNG(w io.Writer, m geometry.Mesh, u *beam.Uniforms) error {
	dc, err := r.Context(m, u)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

// SavePNG renders m into a PNG file.
func (r *Renderer) SavePNG(path string, m geometry.Mesh, u *beam.Uniforms) error {
	dc, err := r.Context(m, u)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.SavePNG(path)
}

// segment shades the pixels covered by the quad of segment i, the same
// region the GPU rasterizes: hw beyond each endpoint along the segment and
// hw to either side.
func (r *Renderer) segment(s geometry.Segment, i int, u *beam.Uniforms) {
	hw := float64(u.HalfWidth)
	glow := beam.Afterglow(float64(i), float64(u.TotalSegments)) * float64(u.Intensity)
	if glow <= 0 || hw <= 0 {
		return
	}

	inv := [2]float64{float64(u.Invert[0]), float64(u.Invert[1])}
	start := [2]float64{float64(s.Start[0]) * inv[0], float64(s.Start[1]) * inv[1]}
	end := [2]float64{float64(s.End[0]) * inv[0], float64(s.End[1]) * inv[1]}

	x0, y0 := r.toPixel(min(start[0], end[0])-hw, max(start[1], end[1])+hw)
	x1, y1 := r.toPixel(max(start[0], end[0])+hw, min(start[1], end[1])-hw)
	x0, x1 = mathutil.Clamp(x0, 0, r.opts.Width-1), mathutil.Clamp(x1, 0, r.opts.Width-1)
	y0, y1 = mathutil.Clamp(y0, 0, r.opts.Height-1), mathutil.Clamp(y1, 0, r.opts.Height-1)

	col := u.Color
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			x, y, length := beam.SegmentFrame(r.toClip(px, py), start, end)
			if x < -hw || x > length+hw || math.Abs(y) > hw {
				continue
			}
			k := float32(beam.Alpha(x, y, length, hw) * glow)
			off := (py*r.opts.Width + px) * 3
			r.accum[off] += col[0] * k
			r.accum[off+1] += col[1] * k
			r.accum[off+2] += col[2] * k
		}
	}
}

// toClip returns the clip-space center of pixel (px, py); y points up.
func (r *Renderer) toClip(px, py int) [2]float64 {
	w, h := float64(r.opts.Width), float64(r.opts.Height)
	return [2]float64{
		(float64(px)+pixelCenter)/w*2 - 1,
		1 - (float64(py)+pixelCenter)/h*2,
	}
}

// toPixel maps clip coordinates to the containing pixel, unclamped.
func (r *Renderer) toPixel(x, y float64) (px, py int) {
	w, h := float64(r.opts.Width), float64(r.opts.Height)
	return int(math.Floor((x + 1) / 2 * w)), int(math.Floor((1 - y) / 2 * h))
}

func (r *Renderer) resolve() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	bg := r.opts.Background
	for i := range r.opts.Width * r.opts.Height {
		a := r.accum[i*3 : i*3+3 : i*3+3]
		img.Pix[i*4] = to8(bg[0] + a[0])
		img.Pix[i*4+1] = to8(bg[1] + a[1])
		img.Pix[i*4+2] = to8(bg[2] + a[2])
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// At returns the accumulated beam color at pixel (px, py), background
// excluded. Valid after Render or Accumulate.
func (r *Renderer) At(px, py int) [3]float32 {
	off := (py*r.opts.Width + px) * 3
	return [3]float32{r.accum[off], r.accum[off+1], r.accum[off+2]}
}

func (r *Renderer) graticule(dc *gg.Context) error {
	w, h := float64(r.opts.Width), float64(r.opts.Height)
	dc.SetLineWidth(graticuleLineWidth)

	dc.SetRGBA(1, 1, 1, graticuleAlpha)
	for i := 1; i < r.opts.DivisionsX; i++ {
		x := math.Floor(w*float64(i)/float64(r.opts.DivisionsX)) + pixelCenter
		dc.DrawLine(x, 0, x, h)
	}
	for i := 1; i < r.opts.DivisionsY; i++ {
		y := math.Floor(h*float64(i)/float64(r.opts.DivisionsY)) + pixelCenter
		dc.DrawLine(0, y, w, y)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("graticule: %w", err)
	}

	dc.SetRGBA(1, 1, 1, axisAlpha)
	dc.DrawRectangle(pixelCenter, pixelCenter, w-1, h-1)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("graticule frame: %w", err)
	}
	return nil
}

func to8(v float32) uint8 {
	return uint8(mathutil.Clamp(v, 0, 1)*255 + 0.5)
}
