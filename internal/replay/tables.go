package replay

var vibratoSine = [32]int{
	0, 24, 49, 74, 97, 120, 141, 161, 180, 197, 212, 224, 235, 244, 250, 253,
	255, 253, 250, 244, 235, 224, 212, 197, 180, 161, 141, 120, 97, 74, 49, 24,
}

var vibratoRampDown = func() [32]int {
	var t [32]int
	for i := range t {
		t[i] = 255 - i*8
	}
	return t
}()

var vibratoSquare = func() [32]int {
	var t [32]int
	for i := range t {
		t[i] = 255
	}
	return t
}()

// vibratoDelta returns the signed period offset for one vibrato step. wave
// selects sine (0), ramp down (1) or square (2, 3).
func vibratoDelta(wave, pos, depth int, negative bool) int {
	var amp int
	switch wave & 3 {
	case 0:
		amp = vibratoSine[pos&31]
	case 1:
		amp = vibratoRampDown[pos&31]
	default:
		amp = vibratoSquare[pos&31]
	}
	d := amp * depth >> 7
	if negative {
		return -d
	}
	return d
}

// advanceVibrato moves a 32-entry half-cycle cursor and flips the sign each
// time it wraps.
func advanceVibrato(pos int, negative bool, speed int) (int, bool) {
	pos += speed
	for pos >= 32 {
		pos -= 32
		negative = !negative
	}
	return pos, negative
}
