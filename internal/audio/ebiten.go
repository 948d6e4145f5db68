package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type ebitenOutput struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// SharedContext returns the process-wide ebiten audio context, creating it
// at sampleRate on first use.
func SharedContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		if c := ebitaudio.CurrentContext(); c != nil {
			audioContext = c
			audioSampleRate = c.SampleRate()
			return
		}
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func newEbitenOutput(sampleRate int, reader *StreamReader) (*ebitenOutput, error) {
	ctx, err := SharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &ebitenOutput{player: pl, reader: reader}, nil
}

func (p *ebitenOutput) Play()  { p.player.Play() }
func (p *ebitenOutput) Pause() { p.player.Pause() }
func (p *ebitenOutput) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *ebitenOutput) Position() time.Duration {
	return p.player.Position()
}

func (p *ebitenOutput) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
