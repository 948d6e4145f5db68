package filter

import "math"

// LED is the two-pole Butterworth low-pass behind the power LED. It is
// bypassed while off.
type LED struct {
	on bool

	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 [2]float32
	y1, y2 [2]float32
}

func NewLED(sampleRate int, cutoff float64) *LED {
	f := &LED{}
	if sampleRate <= 0 || cutoff <= 0 || cutoff >= float64(sampleRate)/2 {
		f.b0 = 1
		return f
	}
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / math.Sqrt2 // Q = 1/sqrt(2)
	a0 := 1 + alpha
	f.b0 = float32((1 - cosw) / 2 / a0)
	f.b1 = float32((1 - cosw) / a0)
	f.b2 = f.b0
	f.a1 = float32(-2 * cosw / a0)
	f.a2 = float32((1 - alpha) / a0)
	return f
}

// SetOn switches the filter. Turning it on starts from a cleared state.
func (f *LED) SetOn(on bool) {
	if on && !f.on {
		f.Reset()
	}
	f.on = on
}

func (f *LED) On() bool { return f.on }

func (f *LED) Process(l, r float32) (float32, float32) {
	if !f.on {
		return l, r
	}
	return f.step(0, l), f.step(1, r)
}

func (f *LED) step(ch int, x float32) float32 {
	y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
	f.x2[ch], f.x1[ch] = f.x1[ch], x
	f.y2[ch], f.y1[ch] = f.y1[ch], y
	return y
}

func (f *LED) Reset() {
	f.x1, f.x2, f.y1, f.y2 = [2]float32{}, [2]float32{}, [2]float32{}, [2]float32{}
}
