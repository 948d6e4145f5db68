package replay

import "github.com/cbegin/aonplay-go/internal/song"

// Effect codes as stored in the pattern cells.
const (
	fxArpeggio          = 0x00
	fxSlideUp           = 0x01
	fxSlideDown         = 0x02
	fxTonePortamento    = 0x03
	fxVibrato           = 0x04
	fxTonePortaVolSlide = 0x05
	fxVibratoVolSlide   = 0x06
	fxSampleOffset      = 0x09
	fxVolumeSlide       = 0x0A
	fxPositionJump      = 0x0B
	fxSetVolume         = 0x0C
	fxPatternBreak      = 0x0D
	fxExtra             = 0x0E
	fxSetSpeed          = 0x0F
	fxNewVolume         = 0x10
	fxWaveSpeed         = 0x11
	fxArpeggioSpeed     = 0x12
	fxFineSlideUp       = 0x13
	fxFineSlideDown     = 0x14
	fxAvoidNoise        = 0x16
	fxOversize          = 0x17
	fxTrackVolume       = 0x18
	fxWaveTableMode     = 0x19
	fxExternalEvent     = 0x21

	numEffects = 64
)

type effectFunc func(e *Engine, v *voice)

var (
	// tickEffects only run on ticks after the first of a row.
	tickEffects [numEffects]effectFunc
	// rowEffects run on every tick, including the first.
	rowEffects [numEffects]effectFunc
)

func init() {
	tickEffects[fxSlideUp] = (*Engine).slideUp
	tickEffects[fxSlideDown] = (*Engine).slideDown
	tickEffects[fxTonePortamento] = (*Engine).tonePortamento
	tickEffects[fxVibrato] = (*Engine).vibrato
	tickEffects[fxTonePortaVolSlide] = (*Engine).tonePortaVolSlide
	tickEffects[fxVibratoVolSlide] = (*Engine).vibratoVolSlide
	tickEffects[fxVolumeSlide] = (*Engine).volumeSlide

	rowEffects[fxArpeggio] = (*Engine).arpeggio
	rowEffects[fxPositionJump] = (*Engine).positionJump
	rowEffects[fxSetVolume] = (*Engine).setVolume
	rowEffects[fxPatternBreak] = (*Engine).patternBreak
	rowEffects[fxExtra] = (*Engine).extra
	rowEffects[fxSetSpeed] = (*Engine).setSpeedEffect
	rowEffects[fxNewVolume] = (*Engine).newVolume
	rowEffects[fxWaveSpeed] = (*Engine).waveSpeed
	rowEffects[fxArpeggioSpeed] = (*Engine).arpeggioSpeed
	rowEffects[fxFineSlideUp] = (*Engine).fineSlideUp
	rowEffects[fxFineSlideDown] = (*Engine).fineSlideDown
	rowEffects[fxAvoidNoise] = (*Engine).avoidNoise
	rowEffects[fxOversize] = (*Engine).oversize
	rowEffects[fxTrackVolume] = (*Engine).trackVolume
	rowEffects[fxWaveTableMode] = (*Engine).waveTableMode
	rowEffects[fxExternalEvent] = (*Engine).externalEvent
}

// runEffects applies the voice's current effect for this tick.
func (e *Engine) runEffects(v *voice) {
	v.outPeriod = v.period
	if v.effect < 0 || v.effect >= numEffects {
		return
	}
	if e.seq.tick != 0 {
		if fn := tickEffects[v.effect]; fn != nil {
			fn(e, v)
		}
	}
	if fn := rowEffects[v.effect]; fn != nil {
		fn(e, v)
	}
}

func (e *Engine) slideUp(v *voice) {
	v.setPeriod(v.period - v.arg)
}

func (e *Engine) slideDown(v *voice) {
	v.setPeriod(v.period + v.arg)
}

func (e *Engine) tonePortamento(v *voice) {
	if v.portaTarget == 0 || v.period == 0 {
		return
	}
	switch {
	case v.period < v.portaTarget:
		p := v.period + v.portaSpeed
		if p > v.portaTarget {
			p = v.portaTarget
		}
		v.setPeriod(p)
	case v.period > v.portaTarget:
		p := v.period - v.portaSpeed
		if p < v.portaTarget {
			p = v.portaTarget
		}
		v.setPeriod(p)
	}
}

func (e *Engine) vibrato(v *voice) {
	if v.period == 0 {
		return
	}
	wave := int(v.vibAmp>>5) & 3
	depth := int(v.vibAmp & 0x0F)
	v.outPeriod = v.period + vibratoDelta(wave, v.vibPos, depth, v.vibNeg)
	v.vibPos, v.vibNeg = advanceVibrato(v.vibPos, v.vibNeg, v.vibSpeed)
}

func (e *Engine) tonePortaVolSlide(v *voice) {
	e.tonePortamento(v)
	e.volumeSlide(v)
}

func (e *Engine) vibratoVolSlide(v *voice) {
	e.vibrato(v)
	e.volumeSlide(v)
}

func (e *Engine) volumeSlide(v *voice) {
	if up := v.arg >> 4; up != 0 {
		v.setVolume(v.volume + up)
		return
	}
	v.setVolume(v.volume - v.arg&0x0F)
}

// arpeggio steps through the row's offsets whenever the per-voice counter
// reaches the arpeggio speed and holds the last period otherwise.
func (e *Engine) arpeggio(v *voice) {
	if !v.arpActive || v.note == 0 {
		return
	}
	v.arpCount++
	if v.arpCount >= v.arpSpeed {
		v.arpCount = 0
		off := int(v.arpOffsets[v.arpPos])
		v.arpPos++
		if v.arpPos >= len(v.arpOffsets) || v.arpOffsets[v.arpPos] < 0 {
			v.arpPos = 0
		}
		v.arpPeriod = song.NotePeriod(v.note+off, v.fineTune)
	}
	if v.arpPeriod != 0 {
		v.outPeriod = v.arpPeriod
	}
}

func (e *Engine) positionJump(v *voice) {
	e.seq.jumpFlag = true
	e.seq.jumpPos = v.arg
}

func (e *Engine) setVolume(v *voice) {
	v.setVolume(v.arg)
}

func (e *Engine) patternBreak(v *voice) {
	e.seq.breakFlag = true
	e.seq.breakRow = breakRow(v.arg)
}

// breakRow decodes the pattern break argument. The tens digit is scaled as
// (hi>>1) + (hi>>3), which only matches decimal for the values trackers
// write; the result is kept as is.
func breakRow(arg int) int {
	h := (arg & 0xF0) >> 1
	row := h + h>>2 + arg&0x0F
	if row >= song.Rows {
		return 0
	}
	return row
}

func (e *Engine) setSpeedEffect(v *voice) {
	e.setSpeed(v.arg)
}

func (e *Engine) newVolume(v *voice) {
	v.setSynthVolume(v.arg)
	v.env = EnvDone
}

func (e *Engine) waveSpeed(v *voice) {
	v.waveSpeed = v.arg
}

func (e *Engine) arpeggioSpeed(v *voice) {
	v.arpSpeed = v.arg
}

func (e *Engine) fineSlideUp(v *voice) {
	if e.seq.tick == 0 {
		v.setPeriod(v.period - v.arg)
	}
}

func (e *Engine) fineSlideDown(v *voice) {
	if e.seq.tick == 0 {
		v.setPeriod(v.period + v.arg)
	}
}

func (e *Engine) avoidNoise(v *voice) {
	v.avoidNoise = v.arg != 0
}

func (e *Engine) oversize(v *voice) {
	v.oversize = v.arg != 0
}

func (e *Engine) trackVolume(v *voice) {
	v.trackVol = clamp(v.arg, 0, maxVolume)
}

func (e *Engine) waveTableMode(v *voice) {
	mode := song.LoopMode(v.arg & 3)
	if mode > song.LoopPingPong {
		mode = song.LoopNormal
	}
	v.loopMode = mode
}

// externalEvent is a hook for demo synchronisation; playback ignores it.
func (e *Engine) externalEvent(v *voice) {
	v.lastEvent = v.arg
}

// extra dispatches the Exy sub-effects.
func (e *Engine) extra(v *voice) {
	s := &e.seq
	x, y := v.arg>>4, v.arg&0x0F
	switch x {
	case 0x0:
		e.setLED(y == 0)
	case 0x1:
		if s.tick == 0 {
			v.setPeriod(v.period - y)
		}
	case 0x2:
		if s.tick == 0 {
			v.setPeriod(v.period + y)
		}
	case 0x4:
		v.vibAmp = v.vibAmp&^0x60 | byte(y&3)<<5
	case 0x6:
		if s.dispatching {
			e.patternLoop(y)
		}
	case 0x9:
		if y != 0 && s.tick != 0 && s.tick%y == 0 {
			e.trigger(v)
		}
	case 0xA:
		if s.tick == 0 {
			v.setVolume(v.volume + y)
		}
	case 0xB:
		if s.tick == 0 {
			v.setVolume(v.volume - y)
		}
	case 0xC:
		if s.tick == y {
			v.volume = 0
		}
	case 0xD:
		if v.pendingNote && s.tick == y {
			v.pendingNote = false
			e.trigger(v)
		}
	case 0xE:
		if s.dispatching && y > 0 && s.delay < 0 {
			s.delay = y - 1
		}
	}
}
