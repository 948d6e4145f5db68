package filter

import "math"

// OnePole is a first-order RC filter, low- or high-pass.
type OnePole struct {
	alpha float32
	high  bool
	l, r  float32
}

func rcAlpha(sampleRate int, cutoff float64) float32 {
	if cutoff <= 0 || sampleRate <= 0 || cutoff >= float64(sampleRate)/2 {
		return 1
	}
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	dt := 1.0 / float64(sampleRate)
	return float32(dt / (rc + dt))
}

// NewLowPass passes the input through unchanged when cutoff is at or above
// Nyquist.
func NewLowPass(sampleRate int, cutoff float64) *OnePole {
	return &OnePole{alpha: rcAlpha(sampleRate, cutoff)}
}

func NewHighPass(sampleRate int, cutoff float64) *OnePole {
	return &OnePole{alpha: rcAlpha(sampleRate, cutoff), high: true}
}

func (f *OnePole) Process(l, r float32) (float32, float32) {
	f.l += f.alpha * (l - f.l)
	f.r += f.alpha * (r - f.r)
	if f.high {
		return l - f.l, r - f.r
	}
	return f.l, f.r
}

func (f *OnePole) Reset() {
	f.l, f.r = 0, 0
}
