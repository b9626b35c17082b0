package scope

import (
	"io"
	"sync"

	"github.com/tphakala/go-audio-scope/internal/decode"
	"github.com/tphakala/go-audio-scope/internal/ringbuf"
)

// Tap is the producer side of the live ring buffer. One goroutine (the audio
// callback) may use it at a time; it never locks, blocks or allocates.
// When the renderer falls behind the oldest frames are dropped and counted.
type Tap struct {
	ring    *ringbuf.Ring
	scratch [tapChannels][]float32
	block   [][]float32
}

func newTap(ring *ringbuf.Ring, quantum int) *Tap {
	t := &Tap{
		ring:  ring,
		block: make([][]float32, tapChannels),
	}
	for ch := range t.scratch {
		t.scratch[ch] = make([]float32, quantum)
	}
	return t
}

// Quantum returns the largest block decoded at once.
func (t *Tap) Quantum() int {
	return len(t.scratch[0])
}

// Write appends one block, block[ch] per channel. A single channel is
// recorded as channel A with silence on B. It returns the frames written.
func (t *Tap) Write(block [][]float32) int {
	return t.ring.Write(block)
}

// WriteStereo appends a block of paired channels.
func (t *Tap) WriteStereo(a, b []float32) int {
	t.block[0], t.block[1] = a, b
	n := t.ring.Write(t.block)
	t.block[0], t.block[1] = nil, nil
	return n
}

// WriteInterleavedPCM16 decodes 16-bit little-endian stereo PCM, the format
// audio players stream, and appends it in quantum-sized blocks. A trailing
// partial frame is ignored. It returns the frames written.
func (t *Tap) WriteInterleavedPCM16(b []byte) int {
	total := 0
	for len(b) >= pcm16Frame {
		n := decode.DeinterleavePCM16(b, t.scratch[0], t.scratch[1])
		total += t.WriteStereo(t.scratch[0][:n], t.scratch[1][:n])
		b = b[n*pcm16Frame:]
	}
	return total
}

// Dropped returns the number of frames lost to overruns.
func (t *Tap) Dropped() uint64 {
	return t.ring.Dropped()
}

// Reader returns an io.ReadSeeker that feeds every byte read from r, 16-bit
// little-endian stereo PCM, into the tap. It sits between a decoded stream
// and an audio player so the scope shows exactly what is played. Read runs
// on the player's goroutine, which becomes the tap's producer.
func (t *Tap) Reader(r io.Reader) *TapReader {
	return &TapReader{r: r, tap: t}
}

// TapReader tees a PCM stream into a Tap. Frames split across reads are
// reassembled.
//
// Audio players commonly call Seek from the game goroutine while Read runs
// on the player's own goroutine, so the two are serialized by a mutex. The
// Tap itself stays lock-free; the TapReader is its only producer.
type TapReader struct {
	mu  sync.Mutex
	r   io.Reader
	tap *Tap

	carry [pcm16Frame]byte
	held  int
}

// Read reads from the underlying stream and writes the bytes read to the
// tap.
func (tr *TapReader) Read(p []byte) (int, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	n, err := tr.r.Read(p)
	tr.feed(p[:n])
	return n, err
}

// Seek seeks the underlying stream, which must implement io.Seeker, and
// drops any partial frame. It may be called concurrently with Read.
func (tr *TapReader) Seek(offset int64, whence int) (int64, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	s, ok := tr.r.(io.Seeker)
	if !ok {
		return 0, ErrNotSeekable
	}
	tr.held = 0
	return s.Seek(offset, whence)
}

func (tr *TapReader) feed(b []byte) {
	if tr.held > 0 {
		c := copy(tr.carry[tr.held:], b)
		tr.held += c
		b = b[c:]
		if tr.held < pcm16Frame {
			return
		}
		tr.tap.WriteInterleavedPCM16(tr.carry[:])
		tr.held = 0
	}

	whole := len(b) - len(b)%pcm16Frame
	tr.tap.WriteInterleavedPCM16(b[:whole])
	tr.held = copy(tr.carry[:], b[whole:])
}
