package filter

import (
	"errors"
	"math"
	"testing"
)

func TestLowPassSettlesOnDC(t *testing.T) {
	f := NewLowPass(44100, 4420.97)
	var l, r float32
	for i := 0; i < 1000; i++ {
		l, r = f.Process(0.5, -0.5)
	}
	if math.Abs(float64(l)-0.5) > 1e-3 || math.Abs(float64(r)+0.5) > 1e-3 {
		t.Fatalf("expected ~±0.5 after warmup, got l=%f r=%f", l, r)
	}
}

func TestLowPassAboveNyquistIsTransparent(t *testing.T) {
	f := NewLowPass(8000, 34000)
	if l, r := f.Process(0.25, -0.75); l != 0.25 || r != -0.75 {
		t.Fatalf("got l=%f r=%f", l, r)
	}
}

func TestHighPassRemovesDC(t *testing.T) {
	f := NewHighPass(8000, highPassHz)
	var l float32
	for i := 0; i < 8000*5; i++ {
		l, _ = f.Process(0.5, 0.5)
	}
	if math.Abs(float64(l)) > 0.01 {
		t.Fatalf("expected DC to decay, got %f", l)
	}
}

func TestLEDBypassedWhileOff(t *testing.T) {
	f := NewLED(48000, ledHz)
	for _, x := range []float32{1, -1, 0.5, 0} {
		if l, r := f.Process(x, -x); l != x || r != -x {
			t.Fatalf("bypass changed %f to %f/%f", x, l, r)
		}
	}
}

func TestLEDAttenuatesHighFrequencies(t *testing.T) {
	f := NewLED(48000, ledHz)
	f.SetOn(true)
	if !f.On() {
		t.Fatal("filter did not switch on")
	}
	var peak float64
	for i := 0; i < 4800; i++ {
		x := float32(1)
		if i%2 == 1 {
			x = -1
		}
		l, _ := f.Process(x, x)
		if i > 100 {
			peak = math.Max(peak, math.Abs(float64(l)))
		}
	}
	if peak > 0.05 {
		t.Fatalf("nyquist tone passed with peak %f", peak)
	}

	var dc float32
	for i := 0; i < 4800; i++ {
		dc, _ = f.Process(0.5, 0.5)
	}
	if math.Abs(float64(dc)-0.5) > 1e-3 {
		t.Fatalf("DC gain off unity: %f", dc)
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in   string
		want Model
	}{
		{"", ModelNone},
		{"none", ModelNone},
		{"A500", ModelA500},
		{" a1200 ", ModelA1200},
	}
	for _, tc := range tests {
		got, err := ParseModel(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseModel(%q) = %v, %v", tc.in, got, err)
		}
	}
	if ModelA1200.String() != "a1200" {
		t.Errorf("String() = %q", ModelA1200.String())
	}
	if _, err := ParseModel("a3000"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestAmigaChainPerModel(t *testing.T) {
	if n := NewAmiga(ModelNone, 48000).fixed.Len(); n != 0 {
		t.Fatalf("none: %d fixed stages", n)
	}
	if n := NewAmiga(ModelA500, 48000).fixed.Len(); n != 2 {
		t.Fatalf("a500: %d fixed stages", n)
	}
	if n := NewAmiga(ModelA1200, 48000).fixed.Len(); n != 1 {
		t.Fatalf("a1200: %d fixed stages", n)
	}
}
