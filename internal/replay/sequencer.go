package replay

import "github.com/cbegin/aonplay-go/internal/song"

const (
	defaultSpeed = 6
	defaultTempo = 125

	// loopExhausted marks a pattern loop that already ran out this pass.
	loopExhausted = 0xF0
)

// transport is the global song position and timing state.
type transport struct {
	position int
	pattern  int
	row      int

	// row currently sounding, for the state snapshot
	playPosition int
	playPattern  int
	playRow      int

	tick  int
	speed int
	tempo int

	delay     int // -1 when no pattern delay is armed
	loopRow   int
	loopCount int
	loopFlag  bool

	breakFlag bool
	breakRow  int
	jumpFlag  bool
	jumpPos   int

	dispatching bool
	songLoops   int
	ticks       uint64
}

func newTransport(s *song.Song) transport {
	return transport{
		pattern: s.PatternAt(0),
		speed:   defaultSpeed,
		tempo:   defaultTempo,
		delay:   -1,
	}
}

// tick runs one sequencer tick: the row advance on the first tick of a row,
// then effects, synth and mixer updates for every channel.
func (e *Engine) tick() {
	s := &e.seq
	dispatched := false
	if s.tick == 0 {
		dispatched = e.advance()
	}
	for ch := 0; ch < e.song.Channels; ch++ {
		v := &e.voices[ch]
		if !dispatched {
			e.runEffects(v)
		}
		e.runSynth(v)
		e.updateChannel(v)
	}
	s.ticks++
	s.tick++
	if s.tick >= s.speed {
		s.tick = 0
	}
}

// advance processes the row under the cursor and moves the cursor. It
// reports false when a pattern delay held the row instead.
func (e *Engine) advance() bool {
	s := &e.seq
	if s.delay >= 0 {
		s.delay--
		return false
	}

	s.loopFlag, s.breakFlag, s.jumpFlag = false, false, false
	s.playPosition, s.playPattern, s.playRow = s.position, s.pattern, s.row
	s.dispatching = true
	for ch := 0; ch < e.song.Channels; ch++ {
		v := &e.voices[ch]
		c, _ := e.song.Cell(s.pattern, s.row, ch)
		e.newRow(v, c)
		e.runEffects(v)
	}
	s.dispatching = false

	if s.loopFlag {
		s.row = s.loopRow
		return true
	}
	s.row++
	if s.row < song.Rows && !s.breakFlag && !s.jumpFlag {
		return true
	}
	e.nextPosition()
	return true
}

// nextPosition moves to the following position. Running past the last
// position or jumping back to the current or an earlier one ends a pass of
// the song.
func (e *Engine) nextPosition() {
	s := &e.seq
	if s.jumpFlag {
		if s.jumpPos <= s.position {
			s.songLoops++
		}
		s.position = s.jumpPos
	} else {
		s.position++
	}
	s.row = 0
	if s.breakFlag {
		s.row = s.breakRow
	}
	s.delay = -1
	s.loopRow = 0
	s.loopCount = 0
	if s.position >= e.song.NumPositions() {
		s.position = e.song.Restart
		s.songLoops++
	}
	s.pattern = e.song.PatternAt(s.position)
}

// patternLoop handles E6y on the row being dispatched. The counter is 0 when
// unused, counts down while looping and parks at loopExhausted afterwards.
func (e *Engine) patternLoop(count int) {
	s := &e.seq
	if count == 0 {
		s.loopRow = s.row
		if s.loopCount == loopExhausted {
			s.loopCount = 0
		}
		return
	}
	switch s.loopCount {
	case loopExhausted:
	case 0:
		s.loopCount = count
		s.loopFlag = true
	default:
		s.loopCount--
		if s.loopCount == 0 {
			s.loopCount = loopExhausted
		} else {
			s.loopFlag = true
		}
	}
}

// setSpeed handles Fxx: 1..32 sets ticks per row, 33..200 sets the tempo.
func (e *Engine) setSpeed(arg int) {
	switch {
	case arg <= 0:
	case arg <= 32:
		e.seq.speed = arg
	case arg <= 200:
		if e.seq.tempo != arg {
			e.seq.tempo = arg
			e.updateTickRate()
		}
	}
}

// updateTickRate recomputes samples per tick from tempo and sample rate.
func (e *Engine) updateTickRate() {
	tps := e.seq.tempo * 2 / 5
	if tps <= 0 {
		tps = 1
	}
	e.samplesPerTick = e.sampleRate / tps
	if e.samplesPerTick <= 0 {
		e.samplesPerTick = 1
	}
}
