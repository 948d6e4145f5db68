package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

type constSource struct {
	v    float32
	done bool
}

func (s *constSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.v
	}
}

type finishingSource struct {
	constSource
}

func (s *finishingSource) Finished() bool { return s.done }

func decodeFloats(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(&constSource{v: 0.25})
	p := make([]byte, 8*16+3)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 8*16 {
		t.Fatalf("read %d bytes, want whole frames only", n)
	}
	if f := r.Frames(); f != 16 {
		t.Fatalf("Frames = %d, want 16", f)
	}
	for i, v := range decodeFloats(p[:n]) {
		if v != 0.25 {
			t.Fatalf("sample %d = %v", i, v)
		}
	}
}

func TestStreamReaderAppliesGain(t *testing.T) {
	r := NewStreamReader(&constSource{v: 0.5})
	r.SetGain(0.5)
	p := make([]byte, 64)
	if _, err := r.Read(p); err != nil {
		t.Fatal(err)
	}
	for i, v := range decodeFloats(p) {
		if v != 0.25 {
			t.Fatalf("sample %d = %v, want 0.25", i, v)
		}
	}
	r.SetGain(-1)
	if g := r.Gain(); g != 0 {
		t.Fatalf("negative gain clamped to %v", g)
	}
}

func TestStreamReaderReportsEOFWhenFinished(t *testing.T) {
	src := &finishingSource{constSource{v: 1}}
	r := NewStreamReader(src)
	p := make([]byte, 64)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("unexpected error before finish: %v", err)
	}
	src.done = true
	n, err := r.Read(p)
	if !errors.Is(err, io.EOF) || n != 64 {
		t.Fatalf("Read = %d, %v; want 64, EOF", n, err)
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendEbiten, "Ebiten": BackendEbiten, "oto": BackendOto} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Errorf("ParseBackend(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("alsa"); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
