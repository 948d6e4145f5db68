package aonplay

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/aonplay-go/internal/replay"
)

type RenderOption func(*renderConfig)

type renderConfig struct {
	stereoMix float64
	gain      float32
	filter    FilterModel
}

func RenderStereoMix(mix float64) RenderOption {
	return func(c *renderConfig) { c.stereoMix = mix }
}

func RenderGain(gain float32) RenderOption {
	return func(c *renderConfig) { c.gain = gain }
}

func RenderFilter(model FilterModel) RenderOption {
	return func(c *renderConfig) { c.filter = model }
}

func newRenderEngine(s *Song, sampleRate int, opts []RenderOption) *replay.Engine {
	cfg := renderConfig{gain: 0.5}
	for _, opt := range opts {
		opt(&cfg)
	}
	return replay.New(s,
		replay.WithSampleRate(sampleRate),
		replay.WithStereoMix(cfg.stereoMix),
		replay.WithMasterGain(cfg.gain),
		replay.WithFilter(cfg.filter),
	)
}

// RenderSamples renders a fixed duration of interleaved stereo audio.
func RenderSamples(s *Song, sampleRate int, seconds float64, opts ...RenderOption) []float32 {
	engine := newRenderEngine(s, sampleRate, opts)
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	engine.Decode(out)
	return out
}

// RenderSong renders until the song has ended loops times, or until
// maxSeconds of audio have been produced.
func RenderSong(s *Song, sampleRate int, loops int, maxSeconds float64, opts ...RenderOption) []float32 {
	if loops < 1 {
		loops = 1
	}
	engine := newRenderEngine(s, sampleRate, opts)
	limit := int(float64(sampleRate)*maxSeconds) * 2
	out := make([]float32, 0, sampleRate*2)
	chunk := make([]float32, 1024*2)
	for len(out) < limit && engine.LoopCount() < loops {
		n := len(chunk)
		if left := limit - len(out); left < n {
			n = left &^ 1
		}
		if n == 0 {
			break
		}
		engine.Decode(chunk[:n])
		out = append(out, chunk[:n]...)
	}
	return out
}

// WriteWAV encodes interleaved stereo samples as 16-bit PCM.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func WriteWAVFile(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
