package replay

import (
	"github.com/cbegin/aonplay-go/internal/mixer"
	"github.com/cbegin/aonplay-go/internal/song"
)

// startSynth re-arms the wavetable cursor and ADSR of a synth instrument.
func (e *Engine) startSynth(v *voice, ins *song.Instrument) {
	sp := ins.Synth
	v.waveBytes = sp.WaveLength * 2
	if v.waveBytes < 2 {
		v.waveBytes = 2
	}
	v.waveCursor = 0
	v.waveStep = v.waveBytes
	v.waveCount = 0
	v.waveSpeed = sp.WaveSpeed
	v.loopMode = sp.LoopMode

	v.synthVol = clamp(ins.ADSR.Start, 0, maxSynthVolume)
	v.env = EnvAdd

	v.synthVibDelay = sp.VibratoDelay
	v.synthVibPos = 0
	v.synthVibNeg = false

	e.mix.Channel(v.index).Trigger(e.waveRegion(v, ins), e.waveRegion(v, ins), true)
}

func (e *Engine) waveRegion(v *voice, ins *song.Instrument) mixer.Region {
	return mixer.Region{Wave: ins.Wave, Offset: v.waveCursor, Length: v.waveBytes}
}

// runSynth advances envelope, wavetable and instrument vibrato of a synth
// voice by one tick. It runs after the effects of the tick.
func (e *Engine) runSynth(v *voice) {
	ins := v.inst
	if ins == nil || ins.Kind != song.KindSynth || v.waveBytes == 0 {
		return
	}
	stepEnvelope(v, ins.ADSR)
	if e.stepWavetable(v, ins) {
		e.mix.Channel(v.index).Retarget(e.waveRegion(v, ins))
	}
	stepSynthVibrato(v, ins.Synth)
}

// stepEnvelope runs the Add -> Sub -> Done ramp. An add of 0 jumps straight
// to full volume.
func stepEnvelope(v *voice, env song.Envelope) {
	switch v.env {
	case EnvAdd:
		if env.Add == 0 {
			v.synthVol = maxSynthVolume
			v.env = EnvDone
			return
		}
		v.synthVol += env.Add
		if v.synthVol >= maxSynthVolume {
			v.synthVol = maxSynthVolume
			v.env = EnvSub
		}
	case EnvSub:
		if env.Sub == 0 {
			v.env = EnvDone
			return
		}
		v.synthVol -= env.Sub
		if v.synthVol <= env.End {
			v.synthVol = env.End
			v.env = EnvDone
		}
	}
	v.setSynthVolume(v.synthVol)
}

// stepWavetable moves the cursor one cycle every WaveSpeed ticks and
// reports whether it moved.
func (e *Engine) stepWavetable(v *voice, ins *song.Instrument) bool {
	if v.waveSpeed == 0 {
		return false
	}
	v.waveCount++
	if v.waveCount < v.waveSpeed {
		return false
	}
	v.waveCount = 0

	// The loop window [lo, hi) holds LoopLength cycles, at least one.
	sp := ins.Synth
	lo := sp.LoopStart * v.waveBytes
	hi := lo + max(sp.LoopLength, 1)*v.waveBytes
	last := hi - v.waveBytes
	prev := v.waveCursor
	v.waveCursor += v.waveStep
	if v.waveCursor > last || (v.waveStep < 0 && v.waveCursor < lo) {
		switch v.loopMode {
		case song.LoopBackward:
			if v.waveStep > 0 {
				v.waveStep = -v.waveStep
			}
			v.waveCursor = last
		case song.LoopPingPong:
			v.waveStep = -v.waveStep
			v.waveCursor = prev
		default:
			if v.waveStep > 0 {
				v.waveCursor = lo
			} else {
				v.waveCursor = last
			}
		}
	}

	// Only windows reaching past the waveform end get here.
	wave := len(e.song.Waveform(ins.Wave))
	if v.waveCursor+v.waveBytes > wave {
		v.waveCursor = lo
		if v.waveCursor+v.waveBytes > wave {
			v.waveCursor = 0
		}
	}
	if v.waveCursor < 0 {
		v.waveCursor = 0
	}
	return v.waveCursor != prev
}

// stepSynthVibrato applies the instrument vibrato once its delay has run out.
func stepSynthVibrato(v *voice, sp song.SynthParams) {
	if sp.VibratoDepth == 0 || v.outPeriod == 0 {
		return
	}
	if v.synthVibDelay > 0 {
		v.synthVibDelay--
		return
	}
	v.outPeriod += vibratoDelta(0, v.synthVibPos, sp.VibratoDepth, v.synthVibNeg)
	v.synthVibPos, v.synthVibNeg = advanceVibrato(v.synthVibPos, v.synthVibNeg, sp.VibratoSpeed)
}
