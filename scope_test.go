package scope

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-scope/internal/beam"
	"github.com/tphakala/go-audio-scope/internal/geometry"
	"github.com/tphakala/go-audio-scope/internal/source"
	"github.com/tphakala/go-audio-scope/internal/testutil"
)

const testRate = 48000

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newScope(t testing.TB, mutate func(*Config)) (*Scope, *fakeClock) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s, err := New(&cfg, WithClock(clock.Now))
	require.NoError(t, err)
	return s, clock
}

func track(t testing.TB, seconds float64) *source.DecodedBuffer {
	t.Helper()
	n := int(seconds * testRate)
	a, b := testutil.Lissajous(n, 220, 330, testRate)
	buf, err := source.NewDecodedBuffer(a, b, testRate)
	require.NoError(t, err)
	return buf
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2048, cfg.SampleWindowSize)
	assert.Equal(t, 2047, cfg.Segments())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"window not power of two", func(c *Config) { c.SampleWindowSize = 1000 }},
		{"window too small", func(c *Config) { c.SampleWindowSize = 1 }},
		{"window too large", func(c *Config) {
			c.SampleWindowSize = geometry.MaxSamples * 2
			c.RingCapacity = geometry.MaxSamples * 2
		}},
		{"zero amplitude", func(c *Config) { c.AmplitudeScale = 0 }},
		{"zero time scale", func(c *Config) { c.TimeScale = 0 }},
		{"negative half width", func(c *Config) { c.BeamHalfWidth = -0.01 }},
		{"negative color", func(c *Config) { c.BeamColor[2] = -1 }},
		{"zero intensity", func(c *Config) { c.BaseIntensity = 0 }},
		{"ring smaller than window", func(c *Config) { c.RingCapacity = 1024 }},
		{"zero quantum", func(c *Config) { c.TapQuantum = 0 }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero starvation frames", func(c *Config) { c.StarvationFrames = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			_, err := New(&cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFrame_NoSourceIsEmpty(t *testing.T) {
	s, _ := newScope(t, func(c *Config) { c.StarvationFrames = 3 })

	for i := range 3 {
		assert.False(t, s.NoSignal(), "frame %d", i)
		f := s.Frame()
		assert.Equal(t, source.ModeNone, f.Mode)
		assert.True(t, f.Mesh.Empty())
		assert.Zero(t, f.Mesh.IndexCount)
		assert.InDelta(t, float32(1), f.Uniforms.Intensity, 0, "neutral when nothing is drawn")
	}
	assert.True(t, s.NoSignal())
	assert.Equal(t, uint64(3), s.Stats().Frames)
}

func TestFrame_Live(t *testing.T) {
	s, _ := newScope(t, nil)
	s.EnableLive(true)
	require.True(t, s.LiveEnabled())

	a, b := testutil.Lissajous(4096, 440, 660, testRate)
	s.Tap().WriteStereo(a, b)

	f := s.Frame()
	assert.Equal(t, source.ModeLive, f.Mode)
	assert.Equal(t, 2047, f.Mesh.Segments)
	assert.Equal(t, 2047*6, f.Mesh.IndexCount)
	assert.Equal(t, 2047*4*5, len(f.Mesh.Vertices))
	assert.Zero(t, f.Window.Start, "live windows have no timeline position")
	assert.InDelta(t, float32(1), f.Uniforms.Intensity, 1e-6)
	assert.InDelta(t, float32(2047), f.Uniforms.TotalSegments, 0)
	assert.Equal(t, beam.DefaultColor, f.Uniforms.Color)

	// The newest sample is the end of the last segment.
	last := f.Mesh.Segment(f.Mesh.Segments - 1)
	assert.InDelta(t, a[4095], last.End[0], 1e-7)
	assert.InDelta(t, b[4095], last.End[1], 1e-7)
}

func TestFrame_ShortLiveWindowBoostsIntensity(t *testing.T) {
	s, _ := newScope(t, nil)
	s.EnableLive(true)

	a, b := testutil.Lissajous(100, 440, 660, testRate)
	s.Tap().WriteStereo(a, b)

	f := s.Frame()
	assert.Equal(t, 99, f.Mesh.Segments)
	assert.InDelta(t, float32(2), f.Uniforms.Intensity, 1e-6, "clamped at the maximum factor")
}

func TestFrame_BufferedFollowsPlayback(t *testing.T) {
	s, clock := newScope(t, nil)
	require.NoError(t, s.LoadBuffer(track(t, 1)))

	s.Play()
	f := s.Frame()
	assert.Equal(t, source.ModeBuffered, f.Mode)
	assert.Zero(t, f.Window.Start)

	clock.Advance(500 * time.Millisecond)
	f = s.Frame()
	assert.Equal(t, int64(24000), f.Window.Start)
	assert.Equal(t, 500*time.Millisecond, f.Position)

	// Past the end the window stays clamped inside the track.
	clock.Advance(2 * time.Second)
	f = s.Frame()
	assert.Equal(t, int64(testRate-2048), f.Window.Start)
	assert.Equal(t, 2047, f.Mesh.Segments)
}

func TestPause_CapturesSnapshot(t *testing.T) {
	s, clock := newScope(t, nil)
	require.NoError(t, s.LoadBuffer(track(t, 1)))

	s.Play()
	clock.Advance(250 * time.Millisecond)
	s.Pause()
	require.NotNil(t, s.Snapshot())
	assert.True(t, s.Paused())

	f := s.Frame()
	assert.Equal(t, source.ModeSnapshot, f.Mode)
	assert.Equal(t, int64(12000), f.Window.Start)

	clock.Advance(time.Second)
	assert.Equal(t, int64(12000), s.Frame().Window.Start, "frozen while paused")

	s.Play()
	assert.Nil(t, s.Snapshot())
	f = s.Frame()
	assert.Equal(t, source.ModeBuffered, f.Mode)
	assert.Equal(t, int64(12000), f.Window.Start)
}

func TestPause_LiveSnapshotIgnoresNewWrites(t *testing.T) {
	s, _ := newScope(t, nil)
	s.EnableLive(true)
	s.Play()

	a, b := testutil.Lissajous(2048, 440, 660, testRate)
	s.Tap().WriteStereo(a, b)
	s.Pause()

	before := s.Frame()
	require.Equal(t, source.ModeSnapshot, before.Mode)
	first := before.Mesh.Segment(0)

	c, d := testutil.Lissajous(2048, 1000, 1500, testRate)
	s.Tap().WriteStereo(c, d)

	after := s.Frame()
	assert.Equal(t, first, after.Mesh.Segment(0))
	assert.Equal(t, source.ModeLive, s.Snapshot().Origin())
}

func TestSeek_WhilePausedRecaptures(t *testing.T) {
	s, _ := newScope(t, nil)
	require.NoError(t, s.LoadBuffer(track(t, 1)))

	// New scopes start paused; loading captures at position zero.
	require.NotNil(t, s.Snapshot())
	assert.Zero(t, s.Frame().Window.Start)

	s.Seek(100 * time.Millisecond)
	assert.Equal(t, int64(4800), s.Frame().Window.Start)
	assert.Equal(t, 100*time.Millisecond, s.Snapshot().Position())

	s.Seek(10 * time.Second)
	assert.Equal(t, time.Second, s.Position(), "clamped to the track")
}

func TestSeek_WhilePlayingDefersCapture(t *testing.T) {
	s, clock := newScope(t, nil)
	require.NoError(t, s.LoadBuffer(track(t, 1)))
	s.Play()
	require.Nil(t, s.Snapshot())

	s.Seek(200 * time.Millisecond)
	assert.Nil(t, s.Snapshot())
	assert.Equal(t, source.ModeBuffered, s.Frame().Mode)

	clock.Advance(50 * time.Millisecond)
	s.Pause()
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 250*time.Millisecond, snap.Position())
	assert.Equal(t, int64(12000), s.Frame().Window.Start)
}

func TestLoadBuffer(t *testing.T) {
	s, _ := newScope(t, nil)

	err := s.LoadBuffer(&source.DecodedBuffer{SampleRate: testRate})
	require.ErrorIs(t, err, source.ErrEmptyBuffer)

	require.NoError(t, s.LoadBuffer(track(t, 0.5)))
	assert.Equal(t, source.ModeSnapshot, s.Frame().Mode)

	require.NoError(t, s.LoadBuffer(nil))
	assert.Nil(t, s.Snapshot())
	assert.Equal(t, source.ModeNone, s.Frame().Mode)
}

func TestLiveTakesPrecedenceOverBuffer(t *testing.T) {
	s, _ := newScope(t, nil)
	require.NoError(t, s.LoadBuffer(track(t, 1)))
	s.Play()

	s.EnableLive(true)
	assert.Equal(t, source.ModeLive, s.Frame().Mode)

	s.EnableLive(false)
	assert.Equal(t, source.ModeBuffered, s.Frame().Mode)
}

func TestReconfigure_AppliedAtFrameStart(t *testing.T) {
	s, _ := newScope(t, nil)
	s.EnableLive(true)
	a, b := testutil.Lissajous(4096, 440, 660, testRate)
	s.Tap().WriteStereo(a, b)

	cfg := s.Config()
	cfg.SampleWindowSize = 512
	cfg.SweepMode = true
	cfg.InvertAxes = [2]bool{false, true}
	require.NoError(t, s.Reconfigure(&cfg))

	assert.Equal(t, 2048, s.Config().SampleWindowSize, "not applied before the next frame")

	f := s.Frame()
	assert.Equal(t, 512, s.Config().SampleWindowSize)
	assert.Equal(t, 511, f.Mesh.Segments)
	assert.InDelta(t, float32(-1), f.Mesh.Segment(0).Start[0], 1e-6, "sweep starts at the left edge")
	assert.Equal(t, [2]float32{1, -1}, f.Uniforms.Invert)
}

func TestReconfigure_Rejects(t *testing.T) {
	s, _ := newScope(t, nil)

	require.ErrorIs(t, s.Reconfigure(nil), ErrInvalidConfig)

	bad := DefaultConfig()
	bad.SampleWindowSize = 3
	require.ErrorIs(t, s.Reconfigure(&bad), ErrInvalidConfig)

	ring := DefaultConfig()
	ring.RingCapacity *= 2
	require.ErrorIs(t, s.Reconfigure(&ring), ErrFixedConfig)

	quantum := DefaultConfig()
	quantum.TapQuantum = 256
	require.ErrorIs(t, s.Reconfigure(&quantum), ErrFixedConfig)

	// Capacity is compared after rounding.
	rounded := DefaultConfig()
	rounded.RingCapacity--
	require.NoError(t, s.Reconfigure(&rounded))
}

func TestReconfigure_ResizeWhilePausedRecaptures(t *testing.T) {
	s, _ := newScope(t, nil)
	require.NoError(t, s.LoadBuffer(track(t, 1)))
	require.Equal(t, 2048, s.Snapshot().Len())

	cfg := s.Config()
	cfg.SampleWindowSize = 256
	require.NoError(t, s.Reconfigure(&cfg))

	f := s.Frame()
	assert.Equal(t, 256, s.Snapshot().Len())
	assert.Equal(t, 255, f.Mesh.Segments)
}

// TestConcurrentProducerAndRenderer runs the audio producer, a config
// writer and the render loop at the same time.
func TestConcurrentProducerAndRenderer(t *testing.T) {
	s, _ := newScope(t, nil)
	s.EnableLive(true)

	a, b := testutil.Lissajous(DefaultTapQuantum, 440, 660, testRate)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 2000 {
			s.Tap().WriteStereo(a, b)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 50 {
			cfg := DefaultConfig()
			cfg.SampleWindowSize = 256 << (i % 4)
			assert.NoError(t, s.Reconfigure(&cfg))
		}
	}()

	for range 200 {
		f := s.Frame()
		require.Equal(t, f.Mesh.Segments*6, f.Mesh.IndexCount)
		cfg := s.Config()
		require.LessOrEqual(t, f.Mesh.Segments, cfg.Segments())
	}
	wg.Wait()

	st := s.Stats()
	assert.Equal(t, uint64(2000*DefaultTapQuantum), st.Written)
	assert.Equal(t, st.Written-uint64(s.Ring().Capacity()), st.Dropped)
}

func TestTap_WriteInterleavedPCM16(t *testing.T) {
	s, _ := newScope(t, func(c *Config) { c.TapQuantum = 128 })
	s.EnableLive(true)

	const frames = 300
	pcm := make([]byte, frames*pcm16Frame+1) // trailing partial frame
	for i := range frames {
		binary.LittleEndian.PutUint16(pcm[i*4:], uint16(int16(i*10)))
		binary.LittleEndian.PutUint16(pcm[i*4+2:], uint16(int16(-i*10)))
	}

	assert.Equal(t, frames, s.Tap().WriteInterleavedPCM16(pcm))
	assert.Equal(t, uint64(frames), s.Ring().Written())

	f := s.Frame()
	require.Equal(t, frames, f.Window.Len())
	assert.InDelta(t, float32(2990)/32768, f.Window.A[299], 1e-7)
	assert.InDelta(t, float32(-2990)/32768, f.Window.B[299], 1e-7)
	assert.Zero(t, s.Tap().Dropped())
}

func TestTap_ZeroAllocation(t *testing.T) {
	s, _ := newScope(t, nil)
	pcm := make([]byte, 4*DefaultTapQuantum*pcm16Frame)
	a, b := testutil.Lissajous(DefaultTapQuantum, 440, 660, testRate)

	allocs := testing.AllocsPerRun(100, func() {
		s.Tap().WriteInterleavedPCM16(pcm)
		s.Tap().WriteStereo(a, b)
	})
	assert.Zero(t, allocs)
}

func TestFrame_SteadyStateZeroAllocation(t *testing.T) {
	s, _ := newScope(t, nil)
	s.EnableLive(true)
	a, b := testutil.Lissajous(4096, 440, 660, testRate)
	s.Tap().WriteStereo(a, b)
	s.Frame()

	allocs := testing.AllocsPerRun(50, func() {
		s.Frame()
	})
	assert.Zero(t, allocs)
}

func TestStats(t *testing.T) {
	s, _ := newScope(t, nil)
	s.EnableLive(true)
	a, b := testutil.Lissajous(1000, 440, 660, testRate)
	s.Tap().WriteStereo(a, b)
	s.Frame()

	st := s.Stats()
	assert.Equal(t, uint64(1), st.Frames)
	assert.Equal(t, uint64(1000), st.Written)
	assert.Zero(t, st.Dropped)
	assert.Equal(t, source.ModeLive, st.Mode)
	assert.Equal(t, 999, st.Segments)
	assert.False(t, st.NoSignal)
	assert.NotEmpty(t, st.SIMD)
}

func TestNewAnalyzer(t *testing.T) {
	s, _ := newScope(t, nil)
	a := testutil.Sine(4096, 1000, testRate, 0.5, 0)
	s.Tap().WriteStereo(a, a)

	an, err := s.NewAnalyzer(2048)
	require.NoError(t, err)
	r := an.Measure()
	assert.Equal(t, 2048, r.Frames)
	assert.InDelta(t, 1.0, r.Correlation, 1e-9)
	assert.InDelta(t, 1000, r.DominantHz, 2*float64(testRate)/2048)
	assert.Zero(t, s.Ring().ReadIndex(), "analyzers never consume")
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	s, _ := newScope(t, func(c *Config) { c.StarvationFrames = 1 })
	s.Frame()
	assert.Contains(t, buf.String(), "scope: no signal")

	SetLogger(nil)
	buf.Reset()
	s.Frame()
	assert.Empty(t, buf.String())
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

func BenchmarkFrame_Live2048(b *testing.B) {
	s, _ := newScope(b, nil)
	s.EnableLive(true)
	x, y := testutil.Lissajous(4096, 440, 660, testRate)
	s.Tap().WriteStereo(x, y)

	b.ReportAllocs()
	for b.Loop() {
		s.Frame()
	}
}

func BenchmarkTap_PCM16Quantum(b *testing.B) {
	s, _ := newScope(b, nil)
	pcm := make([]byte, DefaultTapQuantum*pcm16Frame)

	b.ReportAllocs()
	for b.Loop() {
		s.Tap().WriteInterleavedPCM16(pcm)
	}
}
