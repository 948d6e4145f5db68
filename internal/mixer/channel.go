package mixer

import "math"

// Region addresses a span of a song-owned waveform in bytes. Several regions
// may point into the same waveform with independent offsets.
type Region struct {
	Wave   int
	Offset int
	Length int
}

// Channel is the resampling state of one voice.
type Channel struct {
	active  Region
	loop    Region
	hasLoop bool
	looping bool
	playing bool
	phase   float64
	inc     float64
	period  int
	amp     float64
}

// Trigger starts playback of active from its first byte. When hasLoop is set
// the channel re-enters loop once active is exhausted and never stops on its
// own, like Paula DMA.
func (c *Channel) Trigger(active, loop Region, hasLoop bool) {
	c.active = active
	c.loop = loop
	c.hasLoop = hasLoop && loop.Length > 0
	c.looping = false
	c.phase = 0
	c.playing = true
	if active.Length <= 0 {
		if !c.hasLoop {
			c.playing = false
			return
		}
		c.active = loop
		c.looping = true
	}
}

// Retarget swaps the region being played without restarting the phase. The
// region also becomes the loop, which is how synth wavetables are fed.
func (c *Channel) Retarget(r Region) {
	if r.Length <= 0 {
		return
	}
	c.active = r
	c.loop = r
	c.hasLoop = true
	c.looping = true
	if c.phase >= float64(r.Length) {
		c.phase = math.Mod(c.phase, float64(r.Length))
	}
	c.playing = true
}

func (c *Channel) Stop() {
	c.playing = false
	c.phase = 0
}

func (c *Channel) Playing() bool { return c.playing }

// SetPeriod converts an Amiga period into a phase increment at sampleRate.
func (c *Channel) SetPeriod(period int, clock float64, sampleRate int) {
	c.period = period
	if period <= 0 || sampleRate <= 0 {
		c.inc = 0
		return
	}
	c.inc = clock / float64(period) / float64(sampleRate)
}

func (c *Channel) Period() int { return c.period }

// Increment is the waveform bytes advanced per output frame.
func (c *Channel) Increment() float64 { return c.inc }

// SetAmplitude sets the linear gain applied to each sample, 0..1.
func (c *Channel) SetAmplitude(a float64) {
	c.amp = a
}

func (c *Channel) Amplitude() float64 { return c.amp }

// Next returns the current sample scaled by the amplitude and advances the
// phase by one output frame.
func (c *Channel) Next(waves [][]int8) float32 {
	if !c.playing {
		return 0
	}
	pos := int(c.phase)
	if pos >= c.active.Length {
		if !c.looping {
			if !c.hasLoop {
				c.playing = false
				return 0
			}
			c.phase -= float64(c.active.Length)
			c.active = c.loop
			c.looping = true
		} else {
			c.phase -= float64(c.loop.Length)
		}
		if c.phase >= float64(c.active.Length) {
			c.phase = math.Mod(c.phase, float64(c.active.Length))
		}
		if c.phase < 0 {
			c.phase = 0
		}
		pos = int(c.phase)
	}
	v := sampleAt(waves, c.active, pos)
	c.phase += c.inc
	return float32(float64(v) / 128 * c.amp)
}

func sampleAt(waves [][]int8, r Region, pos int) int8 {
	if r.Wave < 0 || r.Wave >= len(waves) {
		return 0
	}
	w := waves[r.Wave]
	i := r.Offset + pos
	if i < 0 || i >= len(w) {
		return 0
	}
	return w[i]
}
