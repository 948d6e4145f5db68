// Package config loads player settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cbegin/aonplay-go/internal/audio"
	"github.com/cbegin/aonplay-go/internal/filter"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	SampleRate int     `yaml:"sample_rate"`
	StereoMix  float64 `yaml:"stereo_mix"`
	Volume     float64 `yaml:"volume"`
	Backend    string  `yaml:"backend"`
	Filter     string  `yaml:"filter"`
	Loop       bool    `yaml:"loop"`
	Loops      int     `yaml:"loops"`
	ScopeSize  int     `yaml:"scope_size"`
}

func Default() Config {
	return Config{
		SampleRate: 48000,
		StereoMix:  0.3,
		Volume:     1,
		Backend:    string(audio.BackendEbiten),
		Filter:     filter.ModelNone.String(),
		Loops:      1,
		ScopeSize:  1024,
	}
}

// DefaultPath is config.yaml under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "aonplay", "config.yaml")
}

// Parse overlays data on the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path. A missing file yields the defaults when optional is set.
func Load(path string, optional bool) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample_rate %d", ErrInvalid, c.SampleRate)
	case c.StereoMix < 0 || c.StereoMix > 1:
		return fmt.Errorf("%w: stereo_mix %v", ErrInvalid, c.StereoMix)
	case c.Volume < 0:
		return fmt.Errorf("%w: volume %v", ErrInvalid, c.Volume)
	case c.Loops < 1:
		return fmt.Errorf("%w: loops %d", ErrInvalid, c.Loops)
	case c.ScopeSize < 0:
		return fmt.Errorf("%w: scope_size %d", ErrInvalid, c.ScopeSize)
	}
	if _, err := audio.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := filter.ParseModel(c.Filter); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// BackendValue and FilterValue return the parsed enum fields of a
// validated config.
func (c Config) BackendValue() audio.Backend {
	b, _ := audio.ParseBackend(c.Backend)
	return b
}

func (c Config) FilterValue() filter.Model {
	m, _ := filter.ParseModel(c.Filter)
	return m
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
