package filter

import (
	"errors"
	"fmt"
	"strings"
)

// Model selects which machine's output stage is emulated.
type Model int

const (
	ModelNone Model = iota
	ModelA500
	ModelA1200
)

const (
	a500LowPassHz = 4420.97
	highPassHz    = 5.2
	ledHz         = 3090.5
)

var ErrUnknownModel = errors.New("filter: unknown model")

func (m Model) String() string {
	switch m {
	case ModelA500:
		return "a500"
	case ModelA1200:
		return "a1200"
	default:
		return "none"
	}
}

func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return ModelNone, nil
	case "a500":
		return ModelA500, nil
	case "a1200":
		return ModelA1200, nil
	}
	return ModelNone, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// Amiga is the complete output stage: fixed filters, then the LED filter.
type Amiga struct {
	model Model
	fixed *Chain
	led   *LED
}

func NewAmiga(model Model, sampleRate int) *Amiga {
	a := &Amiga{model: model, fixed: NewChain(), led: NewLED(sampleRate, ledHz)}
	switch model {
	case ModelA500:
		a.fixed.Add(NewLowPass(sampleRate, a500LowPassHz))
		a.fixed.Add(NewHighPass(sampleRate, highPassHz))
	case ModelA1200:
		a.fixed.Add(NewHighPass(sampleRate, highPassHz))
	}
	return a
}

func (a *Amiga) Model() Model { return a.model }

func (a *Amiga) SetLED(on bool) { a.led.SetOn(on) }

func (a *Amiga) LED() bool { return a.led.On() }

func (a *Amiga) Process(l, r float32) (float32, float32) {
	l, r = a.fixed.Process(l, r)
	return a.led.Process(l, r)
}

func (a *Amiga) Reset() {
	a.fixed.Reset()
	a.led.Reset()
}
