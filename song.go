package aonplay

import (
	"fmt"
	"os"

	"github.com/cbegin/aonplay-go/internal/audio"
	"github.com/cbegin/aonplay-go/internal/filter"
	"github.com/cbegin/aonplay-go/internal/replay"
	"github.com/cbegin/aonplay-go/internal/song"
)

type (
	Song         = song.Song
	Cell         = song.Cell
	Instrument   = song.Instrument
	State        = replay.State
	ChannelState = replay.ChannelState
	Backend      = audio.Backend
	FilterModel  = filter.Model
)

const (
	BackendEbiten = audio.BackendEbiten
	BackendOto    = audio.BackendOto

	FilterNone  = filter.ModelNone
	FilterA500  = filter.ModelA500
	FilterA1200 = filter.ModelA1200
)

var (
	ErrUnsupported = song.ErrUnsupported
	ErrCorrupt     = song.ErrCorrupt
)

// Load parses an AON4 or AON8 module.
func Load(data []byte) (*Song, error) {
	return song.Load(data)
}

func LoadFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := song.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func ParseBackend(s string) (Backend, error) { return audio.ParseBackend(s) }

func ParseFilter(s string) (FilterModel, error) { return filter.ParseModel(s) }
