package song_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/cbegin/aonplay-go/internal/song"
	"github.com/cbegin/aonplay-go/internal/song/songtest"
)

func minimalBuilder(channels int) *songtest.Builder {
	b := songtest.New(channels)
	b.Title = "test tune"
	b.Author = "nobody"
	b.Waveforms = [][]int8{songtest.Square(64, 100)}
	b.Instruments = []songtest.Instrument{{Name: "square", Volume: 64, Length: 32, LoopLength: 32}}
	b.Set(0, 0, 0, song.Cell{Note: 25, Instrument: 1})
	return b
}

func TestLoadMinimalSong(t *testing.T) {
	for _, channels := range []int{4, 8} {
		s, err := song.Load(minimalBuilder(channels).Bytes())
		if err != nil {
			t.Fatalf("load %dch: %v", channels, err)
		}
		if s.Channels != channels {
			t.Fatalf("channels = %d, want %d", s.Channels, channels)
		}
		if s.Title != "test tune" || s.Author != "nobody" {
			t.Fatalf("metadata mismatch:\n%s", spew.Sdump(s.Title, s.Author))
		}
		if len(s.Patterns) != 1 || len(s.Instruments) != 1 || len(s.Waveforms) != 1 {
			t.Fatalf("unexpected table sizes: %d patterns, %d instruments, %d waveforms",
				len(s.Patterns), len(s.Instruments), len(s.Waveforms))
		}
		c, ok := s.Cell(0, 0, 0)
		if !ok || c.Note != 25 || c.Instrument != 1 {
			t.Fatalf("cell(0,0,0) = %s", spew.Sdump(c, ok))
		}
		if name, ok := s.InstrumentName(0); !ok || name != "square" {
			t.Fatalf("instrument name = %q, %v", name, ok)
		}
	}
}

func TestLoadRejectsMissingRequiredChunks(t *testing.T) {
	for _, name := range []string{"INFO", "ARPG", "PLST", "PATT", "INST", "WLEN", "WAVE"} {
		t.Run(name, func(t *testing.T) {
			b := minimalBuilder(4)
			b.Omit = map[string]bool{name: true}
			s, err := song.Load(b.Bytes())
			if err == nil {
				t.Fatalf("expected error without %s chunk", name)
			}
			if s != nil {
				t.Fatalf("partial song returned on failure")
			}
			if !errors.Is(err, song.ErrCorrupt) {
				t.Fatalf("error %v is not ErrCorrupt", err)
			}
		})
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	data := minimalBuilder(4).Bytes()
	copy(data, "MOD!")
	if _, err := song.Load(data); !errors.Is(err, song.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := song.Load([]byte("AO")); !errors.Is(err, song.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for short data, got %v", err)
	}
}

func TestLoadRejectsUnknownInstrumentKind(t *testing.T) {
	b := minimalBuilder(4)
	data := b.Bytes()
	// Locate the INST payload and corrupt the kind byte.
	idx := indexOf(data, "INST")
	if idx < 0 {
		t.Fatalf("INST chunk not found")
	}
	data[idx+8] = 7
	if _, err := song.Load(data); !errors.Is(err, song.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestLoadRejectsOverrunningChunk(t *testing.T) {
	data := minimalBuilder(4).Bytes()
	idx := indexOf(data, "WAVE")
	binary.BigEndian.PutUint32(data[idx+4:], 1<<20)
	if _, err := song.Load(data); !errors.Is(err, song.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestLoadRejectsOutOfRangeReferences(t *testing.T) {
	cases := []struct {
		name  string
		tweak func(b *songtest.Builder)
	}{
		{"instrument", func(b *songtest.Builder) { b.Set(0, 1, 0, song.Cell{Note: 1, Instrument: 9}) }},
		{"note", func(b *songtest.Builder) { b.Set(0, 1, 0, song.Cell{Note: 61}) }},
		{"pattern", func(b *songtest.Builder) { b.Positions = []byte{0, 4} }},
		{"waveform", func(b *songtest.Builder) { b.Instruments[0].Wave = 3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := minimalBuilder(4)
			tc.tweak(b)
			if _, err := song.Load(b.Bytes()); !errors.Is(err, song.ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestLoadClampsRestartPosition(t *testing.T) {
	b := minimalBuilder(4)
	b.Positions = []byte{0, 0}
	b.Restart = 5
	s, err := song.Load(b.Bytes())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Restart != 0 {
		t.Fatalf("restart = %d, want 0", s.Restart)
	}
}

func TestLoadClampsSampleRegion(t *testing.T) {
	b := minimalBuilder(4)
	b.Instruments[0].Start = 10
	b.Instruments[0].Length = 1000
	s, err := song.Load(b.Bytes())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sp := s.Instruments[0].Sample
	if sp.Start != 10 || sp.Length != 22 {
		t.Fatalf("sample region not clamped: %s", spew.Sdump(sp))
	}
}

func TestCellQueriesOutOfRange(t *testing.T) {
	s := minimalBuilder(4).MustLoad()
	for _, q := range [][3]int{{-1, 0, 0}, {1, 0, 0}, {0, 64, 0}, {0, 0, 4}, {0, -1, 0}} {
		if _, ok := s.Cell(q[0], q[1], q[2]); ok {
			t.Fatalf("cell %v should be out of range", q)
		}
	}
	if _, ok := s.ArpeggioTable(16); ok {
		t.Fatalf("arpeggio table 16 should be out of range")
	}
	if _, ok := s.InstrumentName(1); ok {
		t.Fatalf("instrument name 1 should be out of range")
	}
	if s.Instrument(0) != nil || s.Instrument(2) != nil {
		t.Fatalf("instrument refs 0 and 2 should resolve to nil")
	}
}

func TestCellPackingRoundTrip(t *testing.T) {
	c := song.Cell{Note: 60, Instrument: 63, Arpeggio: 0x0B, Effect: 0x21, Arg: 0xA5}
	b := songtest.New(4)
	b.Waveforms = [][]int8{songtest.Constant(4, 0)}
	for i := 0; i < 63; i++ {
		b.Instruments = append(b.Instruments, songtest.Instrument{})
	}
	b.Set(0, 5, 3, c)
	s := b.MustLoad()
	got, _ := s.Cell(0, 5, 3)
	if got != c {
		t.Fatalf("cell mismatch:\n%s", spew.Sdump(got, c))
	}
}

func indexOf(data []byte, name string) int {
	for i := 46; i+4 <= len(data); {
		if string(data[i:i+4]) == name {
			return i
		}
		size := int(binary.BigEndian.Uint32(data[i+4:]))
		i += 8 + size
	}
	return -1
}
