package song

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported is returned for data that is not an AON module or uses
	// features this replayer does not know.
	ErrUnsupported = errors.New("aon: unsupported module")
	// ErrCorrupt is returned for truncated or inconsistent modules.
	ErrCorrupt = errors.New("aon: corrupt module")
)

const (
	headerTextLen  = 42
	chunkStart     = 4 + headerTextLen
	instrumentSize = 32
	cellSize       = 4
	nameSize       = 32
)

var requiredChunks = []string{"INFO", "ARPG", "PLST", "PATT", "INST", "WLEN", "WAVE"}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// Load parses an AON4/AON8 module. On failure no song is returned.
func Load(data []byte) (*Song, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: data too short for magic", ErrUnsupported)
	}
	s := &Song{}
	switch string(data[:4]) {
	case "AON4":
		s.Channels = 4
	case "AON8":
		s.Channels = 8
	default:
		return nil, fmt.Errorf("%w: invalid magic %q", ErrUnsupported, data[:4])
	}
	if len(data) < chunkStart {
		return nil, corrupt("header truncated")
	}
	s.HeaderText = trimText(data[4:chunkStart])

	chunks, err := splitChunks(data[chunkStart:])
	if err != nil {
		return nil, err
	}
	for _, name := range requiredChunks {
		if _, ok := chunks[name]; !ok {
			return nil, corrupt("missing %s chunk", name)
		}
	}

	info := chunks["INFO"]
	if len(info) < 3 {
		return nil, corrupt("INFO chunk too short")
	}
	s.Version = int(info[0])
	numPositions := int(info[1])
	if numPositions == 0 {
		return nil, corrupt("song has no positions")
	}
	s.Restart = int(info[2])
	if s.Restart >= numPositions {
		s.Restart = 0
	}

	arpg := chunks["ARPG"]
	if len(arpg) < ArpTables*4 {
		return nil, corrupt("ARPG chunk too short")
	}
	for i := range s.Arpeggios {
		copy(s.Arpeggios[i][:], arpg[i*4:i*4+4])
	}

	if err := s.loadWaveforms(chunks["WLEN"], chunks["WAVE"]); err != nil {
		return nil, err
	}
	if err := s.loadInstruments(chunks["INST"]); err != nil {
		return nil, err
	}
	if err := s.loadPatterns(chunks["PATT"]); err != nil {
		return nil, err
	}

	plst := chunks["PLST"]
	if len(plst) < numPositions {
		return nil, corrupt("PLST holds %d positions, INFO declares %d", len(plst), numPositions)
	}
	s.Positions = make([]byte, numPositions)
	copy(s.Positions, plst)
	for i, p := range s.Positions {
		if int(p) >= len(s.Patterns) {
			return nil, corrupt("position %d references pattern %d of %d", i, p, len(s.Patterns))
		}
	}

	if b, ok := chunks["NAME"]; ok {
		s.Title = trimText(b)
	}
	if b, ok := chunks["AUTH"]; ok {
		s.Author = trimText(b)
	}
	if b, ok := chunks["RMRK"]; ok {
		s.Remarks = trimText(b)
	}
	if b, ok := chunks["INAM"]; ok {
		for i := range s.Instruments {
			off := i * nameSize
			if off+nameSize > len(b) {
				break
			}
			s.Instruments[i].Name = trimText(b[off : off+nameSize])
		}
	}
	return s, nil
}

func splitChunks(data []byte) (map[string][]byte, error) {
	chunks := make(map[string][]byte)
	pos := 0
	for pos < len(data) {
		if pos+8 > len(data) {
			return nil, corrupt("truncated chunk header at offset %d", chunkStart+pos)
		}
		name := string(data[pos : pos+4])
		size := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8
		if size < 0 || size > len(data)-pos {
			return nil, corrupt("chunk %s overruns data (%d bytes)", name, size)
		}
		if _, dup := chunks[name]; !dup {
			chunks[name] = data[pos : pos+size]
		}
		pos += size
	}
	return chunks, nil
}

func (s *Song) loadWaveforms(wlen, wave []byte) error {
	if len(wlen)%4 != 0 {
		return corrupt("WLEN size %d is not a multiple of 4", len(wlen))
	}
	n := len(wlen) / 4
	s.Waveforms = make([][]int8, n)
	off := 0
	for i := 0; i < n; i++ {
		l := int(binary.BigEndian.Uint32(wlen[i*4:]))
		if l < 0 || l > len(wave)-off {
			return corrupt("waveform %d (%d bytes) overruns WAVE chunk", i, l)
		}
		buf := make([]int8, l)
		for j := 0; j < l; j++ {
			buf[j] = int8(wave[off+j])
		}
		s.Waveforms[i] = buf
		off += l
	}
	return nil
}

func (s *Song) loadInstruments(inst []byte) error {
	if len(inst)%instrumentSize != 0 {
		return corrupt("INST size %d is not a multiple of %d", len(inst), instrumentSize)
	}
	n := len(inst) / instrumentSize
	s.Instruments = make([]Instrument, n)
	for i := 0; i < n; i++ {
		b := inst[i*instrumentSize : (i+1)*instrumentSize]
		ins := &s.Instruments[i]
		switch b[0] {
		case 0:
			ins.Kind = KindSample
		case 1:
			ins.Kind = KindSynth
		default:
			return fmt.Errorf("%w: instrument %d has kind %d", ErrUnsupported, i+1, b[0])
		}
		ins.Volume = minInt(int(b[1]), 64)
		ins.FineTune = int(b[2] & 0x0F)
		ins.Wave = int(b[3])
		if ins.Wave >= len(s.Waveforms) {
			return corrupt("instrument %d references waveform %d of %d", i+1, ins.Wave, len(s.Waveforms))
		}
		ins.ADSR = Envelope{
			Start: minInt(int(b[24]), 127),
			Add:   int(b[25]),
			End:   minInt(int(b[26]), 127),
			Sub:   int(b[27]),
		}
		waveLen := len(s.Waveforms[ins.Wave])
		if ins.Kind == KindSample {
			sp := SampleParams{
				Start:      int(binary.BigEndian.Uint32(b[4:])),
				Length:     int(binary.BigEndian.Uint32(b[8:])),
				LoopStart:  int(binary.BigEndian.Uint32(b[12:])),
				LoopLength: int(binary.BigEndian.Uint32(b[16:])),
			}
			ins.Sample = clampSample(sp, waveLen)
			continue
		}
		mode := LoopMode(b[11])
		if mode > LoopPingPong {
			mode = LoopNormal
		}
		ins.Synth = SynthParams{
			WaveLength:   int(b[4]),
			VibratoDelay: int(b[5]),
			VibratoSpeed: int(b[6]),
			VibratoDepth: int(b[7]),
			WaveSpeed:    int(b[8]),
			LoopStart:    int(b[9]),
			LoopLength:   int(b[10]),
			LoopMode:     mode,
		}
	}
	return nil
}

// clampSample keeps the playable region inside the waveform buffer. Loop data
// is left alone here; the replayer decides how far a loop may reach.
func clampSample(sp SampleParams, waveLen int) SampleParams {
	words := waveLen / 2
	if sp.Start > words {
		sp.Start = words
	}
	if sp.Start+sp.Length > words {
		sp.Length = words - sp.Start
	}
	if sp.LoopStart > words {
		sp.LoopStart = words
	}
	return sp
}

func (s *Song) loadPatterns(patt []byte) error {
	patternSize := Rows * s.Channels * cellSize
	if len(patt) == 0 || len(patt)%patternSize != 0 {
		return corrupt("PATT size %d is not a multiple of %d", len(patt), patternSize)
	}
	n := len(patt) / patternSize
	s.Patterns = make([]Pattern, n)
	off := 0
	for p := 0; p < n; p++ {
		for row := 0; row < Rows; row++ {
			for ch := 0; ch < s.Channels; ch++ {
				c := unpackCell(patt[off : off+cellSize])
				off += cellSize
				if c.Note > MaxNote {
					return corrupt("pattern %d row %d channel %d: note %d", p, row, ch, c.Note)
				}
				if int(c.Instrument) > len(s.Instruments) {
					return corrupt("pattern %d row %d channel %d: instrument %d of %d", p, row, ch, c.Instrument, len(s.Instruments))
				}
				s.Patterns[p].Cells[row][ch] = c
			}
		}
	}
	return nil
}

func unpackCell(b []byte) Cell {
	return Cell{
		Note:       b[0] & 0x3F,
		Instrument: b[1] & 0x3F,
		Arpeggio:   (b[0]>>6)<<2 | b[1]>>6,
		Effect:     b[2] & 0x3F,
		Arg:        b[3],
	}
}

// PackCell is the inverse of the PATT cell layout.
func PackCell(c Cell) [4]byte {
	return [4]byte{
		c.Note&0x3F | (c.Arpeggio>>2&3)<<6,
		c.Instrument&0x3F | (c.Arpeggio&3)<<6,
		c.Effect & 0x3F,
		c.Arg,
	}
}

func trimText(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " ")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
