package song

const (
	Rows        = 64
	MaxChannels = 8
	MaxNote     = 60
	ArpTables   = 16
)

type InstrumentKind int

const (
	KindSample InstrumentKind = iota
	KindSynth
)

func (k InstrumentKind) String() string {
	switch k {
	case KindSample:
		return "sample"
	case KindSynth:
		return "synth"
	default:
		return "unknown"
	}
}

// LoopMode selects how a synth wavetable cursor re-enters its loop window.
type LoopMode int

const (
	LoopNormal LoopMode = iota
	LoopBackward
	LoopPingPong
)

func (m LoopMode) String() string {
	switch m {
	case LoopBackward:
		return "backward"
	case LoopPingPong:
		return "pingpong"
	default:
		return "normal"
	}
}

// Cell is one row/channel slot of a pattern. Note 0 means no note,
// Instrument 0 means reuse the previous instrument.
type Cell struct {
	Note       uint8
	Instrument uint8
	Arpeggio   uint8
	Effect     uint8
	Arg        uint8
}

func (c Cell) Empty() bool {
	return c == Cell{}
}

type Pattern struct {
	Cells [Rows][MaxChannels]Cell
}

type Envelope struct {
	Start int
	Add   int
	End   int
	Sub   int
}

// SampleParams are in words (2 bytes) relative to the instrument waveform.
// LoopStart is relative to Start.
type SampleParams struct {
	Start      int
	Length     int
	LoopStart  int
	LoopLength int
}

type SynthParams struct {
	WaveLength   int // words per cycle
	VibratoDelay int
	VibratoSpeed int
	VibratoDepth int
	WaveSpeed    int
	LoopStart    int
	LoopLength   int
	LoopMode     LoopMode
}

type Instrument struct {
	Kind     InstrumentKind
	Name     string
	Volume   int
	FineTune int
	Wave     int
	ADSR     Envelope
	Sample   SampleParams
	Synth    SynthParams
}

// Song is the immutable result of Load. Waveforms are owned by the song and
// addressed by index from instruments and mixer regions.
type Song struct {
	Channels    int
	Version     int
	Title       string
	Author      string
	Remarks     string
	HeaderText  string
	Positions   []byte
	Restart     int
	Patterns    []Pattern
	Instruments []Instrument
	Waveforms   [][]int8
	Arpeggios   [ArpTables][4]byte
}

// Cell returns the cell at (pattern, row, channel).
func (s *Song) Cell(pattern, row, channel int) (Cell, bool) {
	if pattern < 0 || pattern >= len(s.Patterns) || row < 0 || row >= Rows || channel < 0 || channel >= s.Channels {
		return Cell{}, false
	}
	return s.Patterns[pattern].Cells[row][channel], true
}

func (s *Song) ArpeggioTable(i int) ([4]byte, bool) {
	if i < 0 || i >= ArpTables {
		return [4]byte{}, false
	}
	return s.Arpeggios[i], true
}

// InstrumentName takes a 0-based instrument index.
func (s *Song) InstrumentName(i int) (string, bool) {
	if i < 0 || i >= len(s.Instruments) {
		return "", false
	}
	return s.Instruments[i].Name, true
}

// PatternAt returns the pattern played at a position, or -1.
func (s *Song) PatternAt(position int) int {
	if position < 0 || position >= len(s.Positions) {
		return -1
	}
	return int(s.Positions[position])
}

func (s *Song) NumPositions() int { return len(s.Positions) }

// Instrument takes a 1-based cell reference; 0 and out-of-range refs return nil.
func (s *Song) Instrument(ref int) *Instrument {
	if ref <= 0 || ref > len(s.Instruments) {
		return nil
	}
	return &s.Instruments[ref-1]
}

// Waveform returns the waveform buffer at index i, or nil.
func (s *Song) Waveform(i int) []int8 {
	if i < 0 || i >= len(s.Waveforms) {
		return nil
	}
	return s.Waveforms[i]
}
