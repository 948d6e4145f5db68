package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

type otoOutput struct {
	player     *oto.Player
	reader     *StreamReader
	sampleRate int
}

var (
	otoOnce       sync.Once
	otoContext    *oto.Context
	otoErr        error
	otoSampleRate int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		otoSampleRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

func newOtoOutput(sampleRate int, reader *StreamReader) (*otoOutput, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl := ctx.NewPlayer(reader)
	pl.SetBufferSize(sampleRate / 10 * 8) // 100ms of stereo float32
	return &otoOutput{player: pl, reader: reader, sampleRate: sampleRate}, nil
}

func (p *otoOutput) Play()           { p.player.Play() }
func (p *otoOutput) Pause()          { p.player.Pause() }
func (p *otoOutput) IsPlaying() bool { return p.player.IsPlaying() }

// Position subtracts what oto still holds in its buffer from what it read.
func (p *otoOutput) Position() time.Duration {
	frames := p.reader.Frames() - int64(p.player.BufferedSize()/8)
	if frames < 0 {
		frames = 0
	}
	return time.Duration(frames) * time.Second / time.Duration(p.sampleRate)
}

func (p *otoOutput) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
