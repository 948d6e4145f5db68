package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/viterin/vek/vek32"
)

type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// StreamReader turns a stereo SampleSource into interleaved float32LE bytes
// and applies the output volume.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
	gain   atomic.Uint32 // float32 bits
	frames atomic.Int64
}

func NewStreamReader(source SampleSource) *StreamReader {
	r := &StreamReader{source: source}
	r.gain.Store(math.Float32bits(1))
	return r
}

// SetGain may be called from any goroutine; it applies from the next Read.
func (r *StreamReader) SetGain(g float32) {
	if g < 0 {
		g = 0
	}
	r.gain.Store(math.Float32bits(g))
}

func (r *StreamReader) Gain() float32 {
	return math.Float32frombits(r.gain.Load())
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	if g := r.Gain(); g != 1 {
		vek32.MulNumber_Inplace(r.buf, g)
	}
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	r.frames.Add(int64(frames))
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

// Frames is the number of stereo frames handed to the device so far.
func (r *StreamReader) Frames() int64 { return r.frames.Load() }

func (r *StreamReader) Close() error { return nil }
