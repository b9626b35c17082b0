package main

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	scope "github.com/tphakala/go-audio-scope"
	"github.com/tphakala/go-audio-scope/internal/analysis"
	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/geometry"
)

const (
	seekStep      = 5 * time.Second
	ampStep       = 1.25
	maxDrawQuads  = (1 << 16) / geometry.VerticesPerSegment // uint16 indices
	analysisEvery = 6                                       // frames
)

type game struct {
	scope  *scope.Scope
	player *audio.Player
	shader *ebiten.Shader
	an     *analysis.Analyzer

	filename string
	debug    bool
	report   analysis.Report

	vertices []ebiten.Vertex
	indices  []uint16
	uniforms map[string]any
	opts     ebiten.DrawTrianglesShaderOptions

	width, height int
}

func newGame(s *scope.Scope, player *audio.Player, shader *ebiten.Shader, an *analysis.Analyzer, filename string) *game {
	g := &game{
		scope:    s,
		player:   player,
		shader:   shader,
		an:       an,
		filename: filename,
		debug:    true,
		uniforms: make(map[string]any, 4),
	}
	g.opts.Blend = ebiten.BlendLighter
	g.opts.Uniforms = g.uniforms
	return g
}

func (g *game) play() {
	g.player.Play()
	g.scope.Play()
}

func (g *game) pause() {
	g.player.Pause()
	g.scope.Pause()
}

func (g *game) seek(d time.Duration) {
	pos := max(g.player.Position()+d, 0)
	if err := g.player.SetPosition(pos); err != nil {
		scope.Logger().Warn("seek failed", "err", err)
		return
	}
	g.scope.Seek(pos)
}

func (g *game) reconfigure(mutate func(*scope.Config)) {
	cfg := g.scope.Config()
	mutate(&cfg)
	if err := g.scope.Reconfigure(&cfg); err != nil {
		scope.Logger().Warn("reconfigure rejected", "err", err)
	}
}

func (g *game) Update() error {
	// The audio clock is authoritative for the buffered source.
	if g.player.IsPlaying() {
		g.scope.Seek(g.player.Position())
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if g.player.IsPlaying() {
			g.pause()
		} else {
			g.play()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.seek(-seekStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.seek(seekStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.reconfigure(func(c *scope.Config) { c.SweepMode = !c.SweepMode })
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.reconfigure(func(c *scope.Config) { c.AxisSwap = !c.AxisSwap })
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.reconfigure(func(c *scope.Config) { c.AmplitudeScale *= ampStep })
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.reconfigure(func(c *scope.Config) { c.AmplitudeScale /= ampStep })
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.scope.EnableLive(!g.scope.LiveEnabled())
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.debug = !g.debug
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	f := g.scope.Frame()
	g.drawBeam(screen, f.Mesh, &f.Uniforms)

	if !g.debug {
		return
	}
	if f.Sequence%analysisEvery == 0 {
		g.report = g.an.Measure()
	}
	st := g.scope.Stats()
	state := "playing"
	if g.scope.Paused() {
		state = "paused"
	}
	signal := ""
	if st.NoSignal {
		signal = "  NO SIGNAL"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"%s  %s %v%s\nsource %s  segments %d  dropped %d  %s\nrms %.2f/%.2f  corr %+.2f  %.0f Hz  fps %.0f",
		g.filename, state, f.Position.Round(time.Second/10), signal,
		f.Mode, st.Segments, st.Dropped, st.SIMD,
		g.report.RMS[0], g.report.RMS[1], g.report.Correlation, g.report.DominantHz, ebiten.ActualFPS()))
}

// drawBeam expands every quad on the CPU with the reference vertex stage and
// shades it with the Kage beam program. Quads are drawn in batches that fit
// 16-bit indices.
func (g *game) drawBeam(screen *ebiten.Image, m geometry.Mesh, u *beam.Uniforms) {
	if m.Empty() {
		return
	}
	g.uniforms["Color"] = u.Color[:]
	g.uniforms["HalfWidth"] = u.HalfWidth
	g.uniforms["Intensity"] = u.Intensity
	g.uniforms["TotalSegments"] = u.TotalSegments

	w, h := float32(g.width), float32(g.height)
	for first := 0; first < m.Segments; first += maxDrawQuads {
		n := min(maxDrawQuads, m.Segments-first)
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]

		for j := first * geometry.VerticesPerSegment; j < (first+n)*geometry.VerticesPerSegment; j++ {
			v := m.Vertex(j)
			out := beam.ExpandVertex(v.Start, v.End, float32(v.Index), u)
			g.vertices = append(g.vertices, ebiten.Vertex{
				DstX:   (out.Position[0] + 1) / 2 * w,
				DstY:   (1 - out.Position[1]) / 2 * h,
				ColorR: out.Tangent,
				ColorG: out.Side,
				ColorB: out.Length,
				ColorA: out.Age,
			})
		}
		base := uint32(first * geometry.VerticesPerSegment)
		for _, idx := range m.Indices[first*geometry.IndicesPerSegment : (first+n)*geometry.IndicesPerSegment] {
			g.indices = append(g.indices, uint16(idx-base))
		}

		screen.DrawTrianglesShader(g.vertices, g.indices, g.shader, &g.opts)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
