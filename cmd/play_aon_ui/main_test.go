package main

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cbegin/aonplay-go/internal/song"
)

func TestFFTFindsSineBin(t *testing.T) {
	const n, bin = 64, 5
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(math.Sin(2*math.Pi*bin*float64(i)/n), 0)
	}
	fft(x)
	best := 0
	for i := 1; i < n/2; i++ {
		if cmplx.Abs(x[i]) > cmplx.Abs(x[best]) {
			best = i
		}
	}
	if best != bin {
		t.Fatalf("peak at bin %d, want %d", best, bin)
	}
}

func TestFormatRow(t *testing.T) {
	s := &song.Song{Channels: 2, Patterns: make([]song.Pattern, 1)}
	s.Patterns[0].Cells[3][1] = song.Cell{Note: 25, Instrument: 0x1A, Arpeggio: 2, Effect: 0xC, Arg: 0x40}
	if got, want := formatRow(s, 0, 3), "03|---00000|C-21A2C40"; got != want {
		t.Fatalf("formatRow = %q, want %q", got, want)
	}
}

func TestIsModule(t *testing.T) {
	for name, want := range map[string]bool{
		"tune.aon": true, "TUNE.AON8": true, "aon.tune": true, "aon4.x": true,
		"tune.mod": false, "aonx": false,
	} {
		if got := isModule(name); got != want {
			t.Errorf("isModule(%q) = %v", name, got)
		}
	}
}

func TestAnalyzerSnapshotFollowsPlayback(t *testing.T) {
	a := newAnalyzer(48000)
	buf := make([]float32, 20)
	for i := 0; i < 10; i++ {
		buf[2*i], buf[2*i+1] = float32(i), float32(i)
	}
	a.Tap(buf)
	if got := a.Snapshot(3, 10); got[0] != 7 || got[2] != 9 {
		t.Fatalf("caught up snapshot = %v", got)
	}
	if got := a.Snapshot(3, 5); got[0] != 2 || got[2] != 4 {
		t.Fatalf("delayed snapshot = %v", got)
	}
}
