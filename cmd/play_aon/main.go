package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/cbegin/aonplay-go"
	"github.com/cbegin/aonplay-go/internal/config"
)

type options struct {
	configPath string
	render     string
	seconds    float64
	info       bool
	dump       bool
	verbose    bool
}

func main() {
	cfg, opts, path, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(log, cfg, opts, path); err != nil {
		log.Error("play_aon failed", "err", err)
		os.Exit(1)
	}
}

// parseArgs loads the config file first so flags given on the command line
// override it.
func parseArgs(args []string) (config.Config, options, string, error) {
	fs := pflag.NewFlagSet("play_aon", pflag.ContinueOnError)
	var opts options
	fs.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "YAML config file")
	sampleRate := fs.IntP("sample-rate", "r", 0, "output sample rate")
	stereoMix := fs.Float64("stereo-mix", 0, "channel separation, 0 = hard Amiga panning, 1 = mono")
	volume := fs.Float64P("volume", "v", 0, "master volume scalar")
	backend := fs.String("backend", "", "audio backend: ebiten|oto")
	model := fs.String("filter", "", "output filter: none|a500|a1200")
	loop := fs.Bool("loop", false, "keep playing after the song ends")
	loops := fs.IntP("loops", "n", 0, "song passes to play or render")
	fs.StringVarP(&opts.render, "render", "o", "", "render to a WAV file instead of playing")
	fs.Float64Var(&opts.seconds, "max-seconds", 600, "render length limit")
	fs.BoolVar(&opts.info, "info", false, "print song metadata as YAML and exit")
	fs.BoolVar(&opts.dump, "dump", false, "dump the parsed song structure and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: play_aon [flags] file.aon\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return config.Config{}, options{}, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return config.Config{}, options{}, "", errors.New("expected exactly one module file")
	}

	cfg, err := config.Load(opts.configPath, !fs.Changed("config"))
	if err != nil {
		return config.Config{}, options{}, "", err
	}
	if fs.Changed("sample-rate") {
		cfg.SampleRate = *sampleRate
	}
	if fs.Changed("stereo-mix") {
		cfg.StereoMix = *stereoMix
	}
	if fs.Changed("volume") {
		cfg.Volume = *volume
	}
	if fs.Changed("backend") {
		cfg.Backend = *backend
	}
	if fs.Changed("filter") {
		cfg.Filter = *model
	}
	if fs.Changed("loop") {
		cfg.Loop = *loop
	}
	if fs.Changed("loops") {
		cfg.Loops = *loops
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, options{}, "", err
	}
	return cfg, opts, fs.Arg(0), nil
}

func run(log *slog.Logger, cfg config.Config, opts options, path string) error {
	song, err := aonplay.LoadFile(path)
	if err != nil {
		return err
	}
	log.Debug("loaded", "path", path, "channels", song.Channels, "positions", song.NumPositions(),
		"patterns", len(song.Patterns), "instruments", len(song.Instruments))

	switch {
	case opts.dump:
		spew.Fdump(os.Stdout, song)
		return nil
	case opts.info:
		out, err := yaml.Marshal(describe(song))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	case opts.render != "":
		return render(log, cfg, opts, song)
	}
	return play(log, cfg, song)
}

func render(log *slog.Logger, cfg config.Config, opts options, song *aonplay.Song) error {
	samples := aonplay.RenderSong(song, cfg.SampleRate, cfg.Loops, opts.seconds,
		aonplay.RenderStereoMix(cfg.StereoMix),
		aonplay.RenderGain(float32(cfg.Volume)*0.5),
		aonplay.RenderFilter(cfg.FilterValue()),
	)
	if err := aonplay.WriteWAVFile(opts.render, samples, cfg.SampleRate); err != nil {
		return err
	}
	log.Info("rendered", "file", opts.render, "seconds", float64(len(samples)/2)/float64(cfg.SampleRate))
	return nil
}

func play(log *slog.Logger, cfg config.Config, song *aonplay.Song) error {
	pl, err := aonplay.NewPlayer(cfg.SampleRate,
		aonplay.WithBackend(cfg.BackendValue()),
		aonplay.WithStereoMix(cfg.StereoMix),
		aonplay.WithFilter(cfg.FilterValue()),
		aonplay.WithLoopPlayback(cfg.Loop),
		aonplay.WithLoops(cfg.Loops),
	)
	if err != nil {
		return err
	}
	pl.SetMasterVolume(cfg.Volume)
	ch := pl.Watch()
	if err := pl.Play(song); err != nil {
		return err
	}
	log.Info("playing", "title", song.Title, "author", song.Author, "backend", cfg.Backend)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	for {
		select {
		case <-sig:
			log.Info("interrupted")
			return pl.Stop()
		case ev := <-ch:
			switch ev.Kind {
			case aonplay.EventLoopCompleted:
				if st, ok := pl.State(); ok {
					log.Info("song end reached", "loop", ev.Loop, "position", st.Position, "ticks", st.Ticks)
				}
			case aonplay.EventPlaybackEnded:
				log.Info("playback completed")
				pl.Wait()
				return pl.Stop()
			}
		}
	}
}

type instrumentInfo struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Volume int    `yaml:"volume"`
	Wave   int    `yaml:"wave"`
}

type songInfo struct {
	Title       string           `yaml:"title"`
	Author      string           `yaml:"author,omitempty"`
	Remarks     string           `yaml:"remarks,omitempty"`
	Version     int              `yaml:"version"`
	Channels    int              `yaml:"channels"`
	Positions   int              `yaml:"positions"`
	Restart     int              `yaml:"restart"`
	Patterns    int              `yaml:"patterns"`
	Waveforms   int              `yaml:"waveforms"`
	Instruments []instrumentInfo `yaml:"instruments"`
}

func describe(s *aonplay.Song) songInfo {
	info := songInfo{
		Title:     s.Title,
		Author:    s.Author,
		Remarks:   strings.TrimSpace(s.Remarks),
		Version:   s.Version,
		Channels:  s.Channels,
		Positions: s.NumPositions(),
		Restart:   s.Restart,
		Patterns:  len(s.Patterns),
		Waveforms: len(s.Waveforms),
	}
	for _, ins := range s.Instruments {
		info.Instruments = append(info.Instruments, instrumentInfo{
			Name:   ins.Name,
			Kind:   ins.Kind.String(),
			Volume: ins.Volume,
			Wave:   ins.Wave,
		})
	}
	return info
}
