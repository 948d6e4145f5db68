// Package replay drives an AON song: sequencer transport, per-voice effect
// and synth state, and the stereo mixer that renders it.
package replay

import (
	"errors"
	"fmt"

	"github.com/cbegin/aonplay-go/internal/filter"
	"github.com/cbegin/aonplay-go/internal/mixer"
	"github.com/cbegin/aonplay-go/internal/song"
)

const DefaultSampleRate = 48000

var (
	ErrSampleRate = errors.New("replay: invalid sample rate")
	ErrSubsong    = errors.New("replay: no such subsong")
)

type engineConfig struct {
	sampleRate int
	stereoMix  float64
	gain       float32
	filter     filter.Model
}

type Option func(*engineConfig)

func WithSampleRate(rate int) Option {
	return func(c *engineConfig) {
		if rate > 0 {
			c.sampleRate = rate
		}
	}
}

// WithStereoMix blends the hard Amiga panning toward mono. 0 is full
// separation, 1 is mono.
func WithStereoMix(mix float64) Option {
	return func(c *engineConfig) { c.stereoMix = mix }
}

func WithMasterGain(gain float32) Option {
	return func(c *engineConfig) { c.gain = gain }
}

// WithFilter emulates the output filters of an Amiga model. With ModelNone
// the output is unfiltered and the E0x LED switch has no audible effect.
func WithFilter(model filter.Model) Option {
	return func(c *engineConfig) { c.filter = model }
}

// Engine renders a loaded song. It is not safe for concurrent use.
type Engine struct {
	song       *song.Song
	sampleRate int

	seq    transport
	voices [song.MaxChannels]voice
	mix    *mixer.Mixer
	model  filter.Model
	post   *filter.Amiga
	led    bool

	samplesPerTick int
	acc            int
}

// New creates an engine positioned at the start of the song.
func New(s *song.Song, opts ...Option) *Engine {
	cfg := engineConfig{sampleRate: DefaultSampleRate, gain: 0.5}
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{
		song:       s,
		sampleRate: cfg.sampleRate,
		mix:        mixer.New(s.Channels, cfg.stereoMix),
		model:      cfg.filter,
	}
	e.mix.SetGain(cfg.gain)
	e.reset()
	return e
}

func (e *Engine) Song() *song.Song { return e.song }

func (e *Engine) SampleRate() int { return e.sampleRate }

// SetSampleRate changes the output rate without restarting the song.
func (e *Engine) SetSampleRate(rate int) error {
	if rate <= 0 {
		return fmt.Errorf("%w: %d", ErrSampleRate, rate)
	}
	e.sampleRate = rate
	e.updateTickRate()
	e.buildFilter()
	if e.acc > e.samplesPerTick {
		e.acc = e.samplesPerTick
	}
	for ch := 0; ch < e.song.Channels; ch++ {
		c := e.mix.Channel(ch)
		c.SetPeriod(c.Period(), song.PALClock, rate)
	}
	return nil
}

// Start rewinds to the first position. AON files carry a single song, so
// only subsong 0 exists.
func (e *Engine) Start(subsong int) error {
	if subsong != 0 {
		return fmt.Errorf("%w: %d", ErrSubsong, subsong)
	}
	e.reset()
	return nil
}

func (e *Engine) reset() {
	e.seq = newTransport(e.song)
	for i := range e.voices {
		e.voices[i] = newVoice(i)
	}
	e.mix.Reset()
	e.updateTickRate()
	e.acc = 0
	e.led = false
	e.buildFilter()
}

func (e *Engine) buildFilter() {
	if e.model == filter.ModelNone {
		e.post = nil
		return
	}
	e.post = filter.NewAmiga(e.model, e.sampleRate)
	e.post.SetLED(e.led)
}

// setLED follows the E0x switch: 0 turns the filter on, anything else off.
func (e *Engine) setLED(on bool) {
	e.led = on
	if e.post != nil {
		e.post.SetLED(on)
	}
}

// Decode fills dst with interleaved stereo frames. finished reports that
// the song has reached its end at least once; rendering carries on from the
// restart position regardless.
func (e *Engine) Decode(dst []float32) (int, bool) {
	frames := len(dst) / 2
	waves := e.song.Waveforms
	for i := 0; i < frames; i++ {
		if e.acc <= 0 {
			e.tick()
			e.acc += e.samplesPerTick
		}
		e.acc--
		l, r := e.mix.Mix(waves)
		if e.post != nil {
			l, r = e.post.Process(l, r)
		}
		dst[2*i], dst[2*i+1] = l, r
	}
	return frames, e.seq.songLoops > 0
}

// LoopCount is the number of times playback ran past the last position.
func (e *Engine) LoopCount() int { return e.seq.songLoops }

func (e *Engine) SetStereoMix(mix float64) { e.mix.SetStereoMix(mix) }

func (e *Engine) SetMasterGain(gain float32) { e.mix.SetGain(gain) }

// EnableScope starts recording the last size samples of every channel.
func (e *Engine) EnableScope(size int) { e.mix.Scope().Enable(size) }

func (e *Engine) DisableScope() { e.mix.Scope().Disable() }

// Scope copies channel ch's recorded samples into dst, oldest first.
func (e *Engine) Scope(ch int, dst []float32) int {
	if ch < 0 || ch >= e.song.Channels {
		return 0
	}
	return e.mix.Scope().Read(ch, dst)
}
