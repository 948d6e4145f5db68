// Package songtest builds synthetic AON containers for tests.
package songtest

import (
	"bytes"
	"encoding/binary"

	"github.com/cbegin/aonplay-go/internal/song"
)

// Instrument mirrors the 32-byte INST record.
type Instrument struct {
	Synth    bool
	Volume   byte
	FineTune byte
	Wave     byte
	Name     string

	Start, Length, LoopStart, LoopLength uint32

	WaveLength, VibDelay, VibSpeed, VibDepth byte
	WaveSpeed, WaveLoopStart, WaveLoopLen    byte
	WaveLoopMode                             byte

	ADSRStart, ADSRAdd, ADSREnd, ADSRSub byte
}

// Builder assembles a module chunk by chunk. Zero values produce a valid
// single-pattern song once at least one position is present.
type Builder struct {
	Channels    int
	Title       string
	Author      string
	Remarks     string
	Restart     byte
	Positions   []byte
	Patterns    [][song.Rows][song.MaxChannels]song.Cell
	Instruments []Instrument
	Waveforms   [][]int8
	Arpeggios   [song.ArpTables][4]byte

	// Omit lists required chunks to leave out.
	Omit map[string]bool
}

func New(channels int) *Builder {
	return &Builder{
		Channels:  channels,
		Positions: []byte{0},
		Patterns:  make([][song.Rows][song.MaxChannels]song.Cell, 1),
	}
}

// Set stores a cell in pattern p.
func (b *Builder) Set(p, row, ch int, c song.Cell) *Builder {
	for len(b.Patterns) <= p {
		b.Patterns = append(b.Patterns, [song.Rows][song.MaxChannels]song.Cell{})
	}
	b.Patterns[p][row][ch] = c
	return b
}

func (b *Builder) Bytes() []byte {
	var out bytes.Buffer
	if b.Channels == 8 {
		out.WriteString("AON8")
	} else {
		out.WriteString("AON4")
	}
	header := make([]byte, 42)
	copy(header, "artofnoise by bastian spiegel (twice/lego)")
	out.Write(header)

	b.chunk(&out, "NAME", []byte(b.Title))
	b.chunk(&out, "AUTH", []byte(b.Author))
	if b.Remarks != "" {
		b.chunk(&out, "RMRK", []byte(b.Remarks))
	}
	b.chunk(&out, "INFO", []byte{1, byte(len(b.Positions)), b.Restart})

	arpg := make([]byte, 0, song.ArpTables*4)
	for _, a := range b.Arpeggios {
		arpg = append(arpg, a[:]...)
	}
	b.chunk(&out, "ARPG", arpg)
	b.chunk(&out, "PLST", b.Positions)

	var patt []byte
	for _, p := range b.Patterns {
		for row := 0; row < song.Rows; row++ {
			for ch := 0; ch < b.Channels; ch++ {
				packed := song.PackCell(p[row][ch])
				patt = append(patt, packed[:]...)
			}
		}
	}
	b.chunk(&out, "PATT", patt)

	var inst, inam []byte
	for _, in := range b.Instruments {
		rec := make([]byte, 32)
		if in.Synth {
			rec[0] = 1
		}
		rec[1] = in.Volume
		rec[2] = in.FineTune
		rec[3] = in.Wave
		if in.Synth {
			rec[4] = in.WaveLength
			rec[5] = in.VibDelay
			rec[6] = in.VibSpeed
			rec[7] = in.VibDepth
			rec[8] = in.WaveSpeed
			rec[9] = in.WaveLoopStart
			rec[10] = in.WaveLoopLen
			rec[11] = in.WaveLoopMode
		} else {
			binary.BigEndian.PutUint32(rec[4:], in.Start)
			binary.BigEndian.PutUint32(rec[8:], in.Length)
			binary.BigEndian.PutUint32(rec[12:], in.LoopStart)
			binary.BigEndian.PutUint32(rec[16:], in.LoopLength)
		}
		rec[24] = in.ADSRStart
		rec[25] = in.ADSRAdd
		rec[26] = in.ADSREnd
		rec[27] = in.ADSRSub
		inst = append(inst, rec...)
		name := make([]byte, 32)
		copy(name, in.Name)
		inam = append(inam, name...)
	}
	b.chunk(&out, "INST", inst)
	b.chunk(&out, "INAM", inam)

	var wlen, wave []byte
	for _, w := range b.Waveforms {
		wlen = binary.BigEndian.AppendUint32(wlen, uint32(len(w)))
		for _, v := range w {
			wave = append(wave, byte(v))
		}
	}
	b.chunk(&out, "WLEN", wlen)
	b.chunk(&out, "WAVE", wave)
	return out.Bytes()
}

func (b *Builder) chunk(out *bytes.Buffer, name string, payload []byte) {
	if b.Omit[name] {
		return
	}
	out.WriteString(name)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(payload)))
	out.Write(size[:])
	out.Write(payload)
}

// Square returns a looping square wave of n bytes with the given amplitude.
func Square(n int, amp int8) []int8 {
	w := make([]int8, n)
	for i := range w {
		if i < n/2 {
			w[i] = amp
		} else {
			w[i] = -amp
		}
	}
	return w
}

// Constant returns n bytes of the same value.
func Constant(n int, v int8) []int8 {
	w := make([]int8, n)
	for i := range w {
		w[i] = v
	}
	return w
}

// MustLoad loads the built container and panics on failure.
func (b *Builder) MustLoad() *song.Song {
	s, err := song.Load(b.Bytes())
	if err != nil {
		panic(err)
	}
	return s
}
