// Package audio plays a SampleSource on the default audio device through
// either ebiten's audio package or oto directly.
package audio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend names an audio output implementation.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
)

var ErrUnknownBackend = errors.New("audio: unknown backend")

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendEbiten:
		return BackendEbiten, nil
	case BackendOto:
		return BackendOto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Output is a started or paused device stream.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	// Position is how much audio the listener has heard.
	Position() time.Duration
	Stop() error
}

// Open creates a paused output for source. Only one backend can be used per
// process since both share the platform audio device.
func Open(backend Backend, sampleRate int, reader *StreamReader) (Output, error) {
	switch backend {
	case BackendEbiten, "":
		return newEbitenOutput(sampleRate, reader)
	case BackendOto:
		return newOtoOutput(sampleRate, reader)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
