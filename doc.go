// Package scope renders a stream of paired audio samples as an analog
// oscilloscope trace.
//
// A Scope turns two correlated channels (typically stereo left and right)
// into line-segment geometry every frame, and describes the uniforms of a
// GPU program that shades each segment as a Gaussian electron beam with
// phosphor afterglow.
//
// # Data flow
//
// Samples arrive either from a real-time producer through a Tap, which
// writes into a lock-free ring buffer without allocating or blocking, or as
// a fully decoded track loaded with LoadBuffer. Once per frame the render
// loop calls Frame, which:
//
//  1. applies a pending Reconfigure (the only point where storage is resized),
//  2. selects the source: the paused snapshot, then the live tap, then the
//     decoded track at the playback position,
//  3. builds one quad per segment into a preallocated vertex arena,
//  4. normalizes the beam intensity to the number of drawn segments.
//
// # Quick Start
//
//	cfg := scope.DefaultConfig()
//	s, err := scope.New(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tap := s.Tap()
//
//	// audio callback (producer goroutine)
//	tap.Write([][]float32{left, right})
//
//	// render loop
//	f := s.Frame()
//	upload(f.Mesh.Vertices, f.Mesh.Indices, f.Uniforms.Bytes())
//	draw(f.Mesh.IndexCount)
//
// The WGSL program and a pipeline description for WebGPU hosts live in
// internal/beam; internal/preview rasterizes frames on the CPU.
//
// # Concurrency
//
// Tap writes may run on any single producer goroutine and Reconfigure may be
// called from anywhere. Every other Scope method belongs to the render loop.
package scope
