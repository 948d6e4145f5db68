package mixer

const MaxChannels = 8

type side int

const (
	left side = iota
	right
)

var (
	sides4 = [MaxChannels]side{left, right, right, left}
	sides8 = [MaxChannels]side{left, left, right, right, right, right, left, left}
)

// Mixer sums all channels of a song into one stereo frame.
type Mixer struct {
	channels  [MaxChannels]Channel
	n         int
	pan       [MaxChannels][2]float32
	stereoMix float64
	gain      float32
	scope     Scope
}

// New creates a mixer for a 4 or 8 channel song. stereoMix 0 keeps the hard
// Amiga panning, 1 collapses every channel to the center.
func New(channels int, stereoMix float64) *Mixer {
	if channels < 1 {
		channels = 1
	}
	if channels > MaxChannels {
		channels = MaxChannels
	}
	m := &Mixer{n: channels, gain: 0.5}
	m.SetStereoMix(stereoMix)
	return m
}

func (m *Mixer) NumChannels() int { return m.n }

// SetStereoMix blends the pan table toward the center.
func (m *Mixer) SetStereoMix(mix float64) {
	if mix < 0 {
		mix = 0
	}
	if mix > 1 {
		mix = 1
	}
	m.stereoMix = mix
	sides := sides4
	if m.n > 4 {
		sides = sides8
	}
	near := float32(1 - mix/2)
	far := float32(mix / 2)
	for i := 0; i < m.n; i++ {
		if sides[i] == left {
			m.pan[i] = [2]float32{near, far}
		} else {
			m.pan[i] = [2]float32{far, near}
		}
	}
}

func (m *Mixer) StereoMix() float64 { return m.stereoMix }

// Pan returns the left/right gains of channel i.
func (m *Mixer) Pan(i int) (float32, float32) {
	return m.pan[i][0], m.pan[i][1]
}

func (m *Mixer) SetGain(g float32) { m.gain = g }

func (m *Mixer) Gain() float32 { return m.gain }

func (m *Mixer) Channel(i int) *Channel { return &m.channels[i] }

// Reset silences every channel.
func (m *Mixer) Reset() {
	for i := range m.channels {
		m.channels[i] = Channel{}
	}
	m.scope.Clear()
}

func (m *Mixer) Scope() *Scope { return &m.scope }

// Mix renders one stereo frame.
func (m *Mixer) Mix(waves [][]int8) (float32, float32) {
	var l, r float32
	capture := m.scope.Enabled()
	for i := 0; i < m.n; i++ {
		v := m.channels[i].Next(waves)
		if capture {
			m.scope.write(i, v)
		}
		l += v * m.pan[i][0]
		r += v * m.pan[i][1]
	}
	return l * m.gain, r * m.gain
}
