package replay

import (
	"github.com/cbegin/aonplay-go/internal/mixer"
	"github.com/cbegin/aonplay-go/internal/song"
)

// EnvelopePhase is the state of the synth volume ramp.
type EnvelopePhase int

const (
	EnvAdd EnvelopePhase = iota
	EnvSub
	EnvDone
)

func (p EnvelopePhase) String() string {
	switch p {
	case EnvAdd:
		return "add"
	case EnvSub:
		return "sub"
	default:
		return "done"
	}
}

const (
	maxVolume      = 64
	maxSynthVolume = 127
)

type voice struct {
	index int

	inst     *song.Instrument
	instRef  int
	note     int
	fineTune int

	period    int
	outPeriod int

	volume   int
	synthVol int
	trackVol int
	env      EnvelopePhase

	cell   song.Cell
	effect int
	arg    int

	portaTarget int
	portaSpeed  int

	vibAmp   byte // bits 0-3 depth, bits 5-6 waveform
	vibSpeed int
	vibPos   int
	vibNeg   bool

	arpOffsets [9]int8
	arpActive  bool
	arpPos     int
	arpCount   int
	arpSpeed   int
	arpPeriod  int

	sampleOffset int
	avoidNoise   bool
	oversize     bool

	waveBytes  int
	waveCursor int
	waveStep   int
	waveCount  int
	waveSpeed  int
	loopMode   song.LoopMode

	synthVibDelay int
	synthVibPos   int
	synthVibNeg   bool

	pendingNote bool
	lastEvent   int
}

func newVoice(index int) voice {
	return voice{
		index:    index,
		trackVol: maxVolume,
		synthVol: maxSynthVolume,
		env:      EnvDone,
		arpSpeed: 1,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (v *voice) setVolume(vol int) {
	v.volume = clamp(vol, 0, maxVolume)
}

func (v *voice) setSynthVolume(vol int) {
	v.synthVol = clamp(vol, 0, maxSynthVolume)
}

func (v *voice) setPeriod(p int) {
	v.period = song.ClampPeriod(p)
	v.outPeriod = v.period
}

// channelVolume is the linear amplitude a voice is mixed at. The 4-channel
// replayer drops one more bit of the synth volume than the 8-channel one.
func channelVolume(channels, vol, synthVol, trackVol int) float64 {
	synth := synthVol
	if channels == 4 {
		synth >>= 1
	}
	return float64(vol*synth*trackVol) / (64 * 128 * 64)
}

// newRow loads a cell into the voice and triggers its note.
func (e *Engine) newRow(v *voice, c song.Cell) {
	v.cell = c
	v.effect = int(c.Effect)
	v.arg = int(c.Arg)
	v.pendingNote = false

	x, y := v.arg>>4, v.arg&0x0F
	if v.effect == fxExtra && x == 0x5 {
		v.fineTune = y
	}

	sameInst := c.Instrument == 0 || int(c.Instrument) == v.instRef
	if c.Note != 0 && isTonePortamento(v.effect) && v.inst != nil && sameInst {
		v.note = int(c.Note)
		v.portaTarget = song.NotePeriod(v.note, v.fineTune)
		if c.Instrument != 0 {
			v.setVolume(v.inst.Volume)
		}
	} else {
		if c.Instrument != 0 {
			if ins := e.song.Instrument(int(c.Instrument)); ins != nil {
				v.inst = ins
				v.instRef = int(c.Instrument)
				if !(v.effect == fxExtra && x == 0x5) {
					v.fineTune = ins.FineTune
				}
				v.setVolume(ins.Volume)
			}
		}
		if c.Note != 0 && v.inst != nil {
			v.note = int(c.Note)
			v.portaTarget = 0
			if v.effect == fxExtra && x == 0xD && y != 0 {
				v.pendingNote = true
			} else {
				e.trigger(v)
			}
		}
	}

	switch v.effect {
	case fxTonePortamento:
		if v.arg != 0 {
			v.portaSpeed = v.arg
		}
	case fxVibrato:
		if x != 0 {
			v.vibSpeed = x
		}
		if y != 0 {
			v.vibAmp = v.vibAmp&0xF0 | byte(y)
		}
	}
	e.setupArpeggio(v)
}

func isTonePortamento(effect int) bool {
	return effect == fxTonePortamento || effect == fxTonePortaVolSlide
}

// setupArpeggio picks the offset list for the row: the two-note ProTracker
// form when the effect argument is set, else the cell's arpeggio table.
func (e *Engine) setupArpeggio(v *voice) {
	if v.effect != fxArpeggio {
		v.arpActive = false
		v.arpPeriod = 0
		return
	}
	var offs [9]int8
	if v.arg != 0 {
		offs = [9]int8{0, int8(v.arg >> 4), int8(v.arg & 0x0F), -1}
	} else {
		entry, _ := e.song.ArpeggioTable(int(v.cell.Arpeggio))
		offs = song.DecodeArpeggio(entry)
	}
	if offs[0] < 0 {
		v.arpActive = false
		v.arpPeriod = 0
		return
	}
	if !v.arpActive || offs != v.arpOffsets {
		v.arpPos = 0
		v.arpCount = 0
	}
	v.arpOffsets = offs
	v.arpActive = true
}

// trigger restarts the voice's instrument at its current note.
func (e *Engine) trigger(v *voice) {
	ins := v.inst
	if ins == nil || v.note == 0 {
		return
	}
	v.setPeriod(song.NotePeriod(v.note, v.fineTune))
	v.vibPos, v.vibNeg = 0, false
	v.arpPos, v.arpCount, v.arpPeriod = 0, 0, 0

	ch := e.mix.Channel(v.index)
	if ins.Kind == song.KindSynth {
		e.startSynth(v, ins)
		return
	}
	v.synthVol = maxSynthVolume
	v.env = EnvDone
	active, loop, hasLoop := e.sampleRegions(v, ins)
	ch.Trigger(active, loop, hasLoop)
}

// sampleRegions computes the initial and repeat regions of a sample
// instrument, honouring the sample offset effect and the oversize and
// avoid-noise channel flags.
func (e *Engine) sampleRegions(v *voice, ins *song.Instrument) (mixer.Region, mixer.Region, bool) {
	sp := ins.Sample
	waveLen := len(e.song.Waveform(ins.Wave))
	start := sp.Start * 2
	length := sp.Length * 2
	limit := start + length
	if v.oversize {
		limit = waveLen
	}

	loopStart := start + sp.LoopStart*2
	loopLen := sp.LoopLength * 2
	if loopStart+loopLen > limit {
		loopLen = limit - loopStart
	}
	hasLoop := sp.LoopLength > 0 && loopLen > 0
	if v.avoidNoise && sp.LoopLength <= 1 {
		hasLoop = false
	}
	loop := mixer.Region{Wave: ins.Wave, Offset: loopStart, Length: loopLen}
	active := mixer.Region{Wave: ins.Wave, Offset: start, Length: length}

	if v.effect == fxSampleOffset {
		off := v.arg << 8
		if v.arg == 0 {
			off = v.sampleOffset
		}
		v.sampleOffset = off
		switch {
		case off < length:
			active.Offset += off
			active.Length -= off
		case hasLoop && v.oversize:
			skip := (off - length) % loopLen
			active = mixer.Region{Wave: ins.Wave, Offset: loopStart + skip, Length: loopLen - skip}
		default:
			active.Length = 0
		}
	}
	return active, loop, hasLoop
}

// updateChannel pushes the voice's period and volume to its mixer channel.
func (e *Engine) updateChannel(v *voice) {
	ch := e.mix.Channel(v.index)
	if v.outPeriod > 0 {
		ch.SetPeriod(song.ClampPeriod(v.outPeriod), song.PALClock, e.sampleRate)
	}
	ch.SetAmplitude(channelVolume(e.song.Channels, v.volume, v.synthVol, v.trackVol))
}
