package replay

import (
	"testing"

	"github.com/cbegin/aonplay-go/internal/song"
)

func playedRows(e *Engine, ticks int) []int {
	rows := make([]int, ticks)
	for i := range rows {
		e.tick()
		rows[i] = e.State().Row
	}
	return rows
}

func TestPatternLoopRepeatsSection(t *testing.T) {
	b := toneBuilder(4)
	b.Set(0, 0, 1, song.Cell{Effect: fxExtra, Arg: 0x60})
	b.Set(0, 1, 1, song.Cell{Effect: fxExtra, Arg: 0x62})
	e := loadEngine(t, b)
	e.seq.speed = 1

	want := []int{0, 1, 0, 1, 0, 1, 2, 3}
	if got := playedRows(e, len(want)); !equalInts(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if e.seq.loopCount != loopExhausted {
		t.Fatalf("loop count = %#x, want exhausted", e.seq.loopCount)
	}
}

func TestPatternDelayHoldsRow(t *testing.T) {
	b := toneBuilder(4)
	b.Set(0, 0, 1, song.Cell{Effect: fxExtra, Arg: 0xE2})
	b.Set(0, 1, 0, song.Cell{Note: 37, Instrument: 1})
	e := loadEngine(t, b)
	e.seq.speed = 1

	want := []int{0, 0, 0, 1, 2}
	if got := playedRows(e, len(want)); !equalInts(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if n := e.State().Channels[0].Note; n != 37 {
		t.Fatalf("note after delay = %d, want 37", n)
	}
}

func TestPositionJumpWrapsToRestart(t *testing.T) {
	b := toneBuilder(4)
	b.Positions = []byte{0, 1, 2}
	b.Restart = 1
	b.Set(0, 0, 0, song.Cell{Effect: fxPositionJump, Arg: 0xFF})
	b.Set(1, 0, 0, song.Cell{Effect: fxPatternBreak, Arg: 0x00})
	b.Set(2, 63, 0, song.Cell{})
	e := loadEngine(t, b)
	e.seq.speed = 1

	for i := 0; i < 2000; i++ {
		e.tick()
		if e.seq.position < 0 || e.seq.position >= e.song.NumPositions() {
			t.Fatalf("tick %d: position %d out of range", i, e.seq.position)
		}
		if e.seq.row < 0 || e.seq.row >= song.Rows {
			t.Fatalf("tick %d: row %d out of range", i, e.seq.row)
		}
	}
	if e.seq.position == 0 {
		t.Fatalf("restart position not honoured")
	}
	// One wrap from the jump, then one per pass over positions 1 and 2.
	if got, want := e.LoopCount(), 1+(2000-1)/(1+64); got != want {
		t.Fatalf("LoopCount = %d, want %d", got, want)
	}
}

func TestBackwardJumpEndsSong(t *testing.T) {
	tests := []struct {
		name    string
		jumpPos byte
		ticks   int
		want    int
	}{
		// Position 0 plays 64 rows, position 1 jumps on its first row.
		{"back to start", 0, 65, 1},
		{"back to start twice", 0, 2 * 65, 2},
		{"same position", 1, 66, 2},
		{"forward", 2, 65, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := toneBuilder(4)
			b.Positions = []byte{0, 1, 0}
			b.Set(1, 0, 0, song.Cell{Effect: fxPositionJump, Arg: tc.jumpPos})
			e := loadEngine(t, b)
			e.seq.speed = 1
			for i := 0; i < tc.ticks; i++ {
				e.tick()
			}
			if got := e.LoopCount(); got != tc.want {
				t.Fatalf("LoopCount = %d, want %d (position %d row %d)", got, tc.want, e.seq.position, e.seq.row)
			}
		})
	}
}

func TestBackwardJumpFinishesDecode(t *testing.T) {
	b := toneBuilder(4)
	b.Positions = []byte{0, 1}
	b.Set(1, 0, 0, song.Cell{Effect: fxPositionJump, Arg: 0})
	e := loadEngine(t, b)

	// 65 rows at speed 6 and 125 bpm.
	buf := make([]float32, 2*(65*6*e.samplesPerTick+1))
	if _, finished := e.Decode(buf); !finished {
		t.Fatalf("Decode not finished after the backward jump, LoopCount %d", e.LoopCount())
	}
}

func TestSetSpeedRanges(t *testing.T) {
	tests := []struct {
		arg          int
		speed, tempo int
	}{
		{0, defaultSpeed, defaultTempo},
		{1, 1, defaultTempo},
		{32, 32, defaultTempo},
		{33, defaultSpeed, 33},
		{200, defaultSpeed, 200},
		{201, defaultSpeed, defaultTempo},
	}
	for _, tc := range tests {
		e := loadEngine(t, toneBuilder(4))
		e.setSpeed(tc.arg)
		if e.seq.speed != tc.speed || e.seq.tempo != tc.tempo {
			t.Errorf("setSpeed(%d): speed %d tempo %d, want %d and %d",
				tc.arg, e.seq.speed, e.seq.tempo, tc.speed, tc.tempo)
		}
	}
}
