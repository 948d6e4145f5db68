package song

import "math"

const (
	// PALClock is the Paula clock used to turn periods into playback rates.
	PALClock = 3546895
	// MinPeriod is the lowest period the replayer lets slides and vibrato reach.
	MinPeriod = 103
	MaxPeriod = 0x7FFF
)

// ProTracker periods for octaves 1-3 at fine-tune 0. Notes 1..24 are the two
// octaves below, obtained by doubling.
var basePeriods = [36]int{
	856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
	214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
}

var periodTable [16][MaxNote + 1]int

func init() {
	for ft := 0; ft < 16; ft++ {
		scale := math.Pow(2, -float64(FineTuneSteps(ft))/96)
		for note := 1; note <= MaxNote; note++ {
			idx := note - 1
			p := 0
			switch {
			case idx < 12:
				p = basePeriods[idx] * 4
			case idx < 24:
				p = basePeriods[idx-12] * 2
			default:
				p = basePeriods[idx-24]
			}
			if ft != 0 {
				p = int(math.Round(float64(p) * scale))
			}
			periodTable[ft][note] = p
		}
	}
}

// FineTuneSteps maps a 0..15 fine-tune index to signed eighth-semitones.
func FineTuneSteps(ft int) int {
	ft &= 15
	if ft >= 8 {
		return ft - 16
	}
	return ft
}

// NotePeriod returns the Amiga period of note 1..60 at fine-tune 0..15.
// Notes outside the range clamp to the nearest valid note.
func NotePeriod(note, fineTune int) int {
	if note < 1 {
		note = 1
	}
	if note > MaxNote {
		note = MaxNote
	}
	return periodTable[fineTune&15][note]
}

// ClampPeriod applies the replayer period limits.
func ClampPeriod(p int) int {
	if p < MinPeriod {
		return MinPeriod
	}
	if p > MaxPeriod {
		return MaxPeriod
	}
	return p
}

// PeriodFrequency returns the playback rate in Hz for a period.
func PeriodFrequency(period int) float64 {
	if period <= 0 {
		return 0
	}
	return float64(PALClock) / float64(period)
}

// DecodeArpeggio expands a packed arpeggio entry into semitone offsets
// terminated by a negative sentinel. The high nibble of the first byte holds
// the number of offsets; the following nibbles hold the offsets themselves.
func DecodeArpeggio(entry [4]byte) [9]int8 {
	var out [9]int8
	n := int(entry[0] >> 4)
	if n > 7 {
		n = 7
	}
	nibbles := [7]byte{
		entry[0] & 0x0F,
		entry[1] >> 4, entry[1] & 0x0F,
		entry[2] >> 4, entry[2] & 0x0F,
		entry[3] >> 4, entry[3] & 0x0F,
	}
	for i := 0; i < n; i++ {
		out[i] = int8(nibbles[i])
	}
	out[n] = -1
	return out
}
