package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/cbegin/aonplay-go"
	"github.com/cbegin/aonplay-go/internal/config"
	"github.com/cbegin/aonplay-go/internal/tui"
)

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath(), "YAML config file")
	pflag.Parse()
	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: aon_tui [--config file] file.aon")
		os.Exit(2)
	}
	if err := run(*configPath, pflag.CommandLine.Changed("config"), pflag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, required bool, path string) error {
	cfg, err := config.Load(configPath, !required)
	if err != nil {
		return err
	}
	song, err := aonplay.LoadFile(path)
	if err != nil {
		return err
	}
	pl, err := aonplay.NewPlayer(cfg.SampleRate,
		aonplay.WithBackend(cfg.BackendValue()),
		aonplay.WithStereoMix(cfg.StereoMix),
		aonplay.WithFilter(cfg.FilterValue()),
		aonplay.WithLoopPlayback(true),
	)
	if err != nil {
		return err
	}
	pl.SetMasterVolume(cfg.Volume)
	if err := pl.Play(song); err != nil {
		return err
	}
	defer pl.Stop()

	_, err = tea.NewProgram(tui.NewModel(song, pl, filepath.Base(path))).Run()
	return err
}
