package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-scope/internal/source"
	"github.com/tphakala/go-audio-scope/internal/testutil"
)

func window(a, b []float32) source.Window {
	return source.Window{A: a, B: b, Mode: source.ModeBuffered}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		wantErr bool
	}{
		{"default window", 2048, false},
		{"smallest", 2, false},
		{"one sample", 1, true},
		{"zero", 0, true},
		{"too large", MaxSamples + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerator(tt.samples)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.samples-1, g.MaxSegments())
			assert.Len(t, g.vertices, (tt.samples-1)*FloatsPerSegment)
			assert.Len(t, g.indices, (tt.samples-1)*IndicesPerSegment)
		})
	}
}

// TestBuild_UnitSquare is the 4-sample scenario: three unit segments, no
// closing segment back to the first point.
func TestBuild_UnitSquare(t *testing.T) {
	g, err := NewGenerator(16)
	require.NoError(t, err)

	m := g.Build(window([]float32{0, 1, 1, 0}, []float32{0, 0, 1, 1}), DefaultOptions())

	assert.Equal(t, 3, m.Segments)
	assert.Equal(t, 12, m.VertexCount())
	assert.Equal(t, 18, m.IndexCount)
	assert.Len(t, m.Indices, 18)
	assert.Len(t, m.Vertices, 3*4*5)

	for i := range m.Segments {
		assert.InDelta(t, 1.0, m.Segment(i).Length(), 1e-6, "segment %d", i)
	}
	assert.Equal(t, [2]float32{1, 1}, m.Segment(2).Start)
	assert.Equal(t, [2]float32{0, 1}, m.Segment(2).End)
}

func TestBuild_SegmentInvariants(t *testing.T) {
	g, err := NewGenerator(2048)
	require.NoError(t, err)

	for _, n := range []int{2, 3, 17, 512, 2048} {
		a, b := testutil.Lissajous(n, 440, 660, 44100)
		m := g.Build(window(a, b), DefaultOptions())

		require.Equal(t, n-1, m.Segments, "n=%d", n)
		assert.Equal(t, m.Segments*IndicesPerSegment, m.IndexCount)
		assert.Equal(t, m.Segments*VerticesPerSegment*FloatsPerVertex, len(m.Vertices))
	}
}

func TestBuild_QuadVerticesShareEndpoints(t *testing.T) {
	g, err := NewGenerator(64)
	require.NoError(t, err)
	a, b := testutil.Lissajous(64, 100, 300, 8000)

	m := g.Build(window(a, b), DefaultOptions())
	for seg := range m.Segments {
		first := m.Vertex(seg * VerticesPerSegment)
		for corner := range VerticesPerSegment {
			v := m.Vertex(seg*VerticesPerSegment + corner)
			assert.Equal(t, first.Start, v.Start)
			assert.Equal(t, first.End, v.End)
			assert.Equal(t, corner, v.Corner())
			assert.Equal(t, seg, v.SegmentIndex())
		}
		assert.Equal(t, [2]float32{a[seg], b[seg]}, first.Start)
		assert.Equal(t, [2]float32{a[seg+1], b[seg+1]}, first.End)
	}
}

func TestBuild_IndexWinding(t *testing.T) {
	g, err := NewGenerator(4)
	require.NoError(t, err)

	m := g.Build(window([]float32{0, 1, 2}, []float32{0, 1, 2}), DefaultOptions())
	assert.Equal(t, []uint32{0, 1, 2, 1, 2, 3, 4, 5, 6, 5, 6, 7}, m.Indices)
}

func TestBuild_ShortWindows(t *testing.T) {
	g, err := NewGenerator(16)
	require.NoError(t, err)

	for _, n := range []int{0, 1} {
		m := g.Build(window(make([]float32, n), make([]float32, n)), DefaultOptions())
		assert.True(t, m.Empty())
		assert.Zero(t, m.IndexCount)
		assert.Empty(t, m.Vertices)
		assert.Empty(t, m.Indices)
	}
}

func TestBuild_TruncatesToCapacity(t *testing.T) {
	g, err := NewGenerator(8)
	require.NoError(t, err)

	a := make([]float32, 100)
	b := make([]float32, 100)
	for i := range a {
		a[i] = float32(i) / 100
		b[i] = -float32(i) / 100
	}
	m := g.Build(window(a, b), DefaultOptions())
	require.Equal(t, 7, m.Segments)

	// The newest pairs are kept.
	first, last := m.Segment(0), m.Segment(6)
	assert.InDelta(t, 0.92, first.Start[0], 1e-6)
	assert.InDelta(t, -0.92, first.Start[1], 1e-6)
	assert.InDelta(t, 0.99, last.End[0], 1e-6)
	assert.InDelta(t, -0.99, last.End[1], 1e-6)
}

func TestBuild_Options(t *testing.T) {
	a := []float32{0.5, -0.5, 0.25}
	b := []float32{0.1, 0.2, 0.3}

	tests := []struct {
		name      string
		opts      Options
		wantStart [2]float32
		wantEnd   [2]float32
	}{
		{
			name:      "amplitude",
			opts:      Options{Amplitude: 2},
			wantStart: [2]float32{1, 0.2},
			wantEnd:   [2]float32{-1, 0.4},
		},
		{
			name:      "swap",
			opts:      Options{Amplitude: 1, SwapAxes: true},
			wantStart: [2]float32{0.1, 0.5},
			wantEnd:   [2]float32{0.2, -0.5},
		},
		{
			name:      "sweep",
			opts:      Options{Amplitude: 1, Sweep: true, TimeScale: 2, SweepOrigin: -1},
			wantStart: [2]float32{-1, 0.1},
			wantEnd:   [2]float32{0, 0.2},
		},
		{
			name:      "sweep after swap",
			opts:      Options{Amplitude: 2, SwapAxes: true, Sweep: true, TimeScale: 1},
			wantStart: [2]float32{0, 1},
			wantEnd:   [2]float32{0.5, -1},
		},
	}

	g, err := NewGenerator(8)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := g.Build(window(a, b), tt.opts)
			require.Equal(t, 2, m.Segments)
			seg := m.Segment(0)
			assert.InDeltaSlice(t, tt.wantStart[:], seg.Start[:], 1e-6)
			assert.InDeltaSlice(t, tt.wantEnd[:], seg.End[:], 1e-6)
		})
	}
}

func TestBuild_DoesNotMutateWindow(t *testing.T) {
	g, err := NewGenerator(8)
	require.NoError(t, err)
	a := []float32{0.5, 0.25}
	b := []float32{0.1, 0.2}

	g.Build(window(a, b), Options{Amplitude: 4, Sweep: true, TimeScale: 1})
	assert.Equal(t, []float32{0.5, 0.25}, a)
	assert.Equal(t, []float32{0.1, 0.2}, b)
}

func TestBuild_ZeroAllocation(t *testing.T) {
	g, err := NewGenerator(2048)
	require.NoError(t, err)
	a, b := testutil.Lissajous(2048, 440, 550, 44100)
	w := window(a, b)
	opts := DefaultOptions()

	allocs := testing.AllocsPerRun(50, func() {
		g.Build(w, opts)
	})
	assert.Zero(t, allocs)
}

func TestResize(t *testing.T) {
	g, err := NewGenerator(8)
	require.NoError(t, err)
	old := g.Build(window(make([]float32, 8), make([]float32, 8)), DefaultOptions())

	require.NoError(t, g.Resize(32))
	assert.Equal(t, 32, g.MaxSamples())
	assert.Equal(t, 7, old.Segments, "earlier mesh keeps its storage")

	a := make([]float32, 32)
	m := g.Build(window(a, a), DefaultOptions())
	assert.Equal(t, 31, m.Segments)
	assert.Equal(t, uint32(31*4-1), m.Indices[len(m.Indices)-1])

	require.ErrorIs(t, g.Resize(1), ErrInvalidSize)
	assert.Equal(t, 32, g.MaxSamples(), "failed resize keeps the arenas")
}

func BenchmarkBuild_2048(b *testing.B) {
	g, err := NewGenerator(2048)
	require.NoError(b, err)
	a, c := testutil.Lissajous(2048, 440, 550, 44100)
	w := window(a, c)
	opts := DefaultOptions()

	b.ReportAllocs()
	for b.Loop() {
		g.Build(w, opts)
	}
}
