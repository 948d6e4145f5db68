package aonplay

import (
	"errors"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/aonplay-go/internal/audio"
	"github.com/cbegin/aonplay-go/internal/replay"
)

// PlaybackEvent carries playback events from Watch().
type PlaybackEvent struct {
	Kind int // EventLoopCompleted or EventPlaybackEnded
	Loop int // song end count when Kind is EventLoopCompleted
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	loopPlayback bool
	loops        int
	sampleTap    func([]float32)
	stereoMix    float64
	backend      Backend
	scope        int
	filter       FilterModel
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{loopPlayback: true, loops: 1, backend: BackendEbiten}
}

// WithLoopPlayback keeps playing from the restart position when the song
// ends. When disabled, playback ends after the number of passes set by
// WithLoops.
func WithLoopPlayback(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loopPlayback = enabled
	}
}

func WithLoops(n int) PlayerOption {
	return func(cfg *playerConfig) {
		if n > 0 {
			cfg.loops = n
		}
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

func WithStereoMix(mix float64) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.stereoMix = mix
	}
}

func WithBackend(b Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = b
	}
}

// WithScope records the last size samples of every channel for Scope.
func WithScope(size int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.scope = size
	}
}

func WithFilter(model FilterModel) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.filter = model
	}
}

type Player struct {
	mu         sync.Mutex
	sampleRate int
	cfg        playerConfig
	source     *engineSource
	reader     *intaudio.StreamReader
	audio      intaudio.Output
	open       func(intaudio.Backend, int, *intaudio.StreamReader) (intaudio.Output, error)
	volume     float64
	eventCh    chan PlaybackEvent
	eventChMu  sync.Mutex
}

// engineSource feeds the audio stream from a replay engine and turns loop
// counter changes into playback events.
type engineSource struct {
	mu        sync.Mutex
	engine    *replay.Engine
	seen      int
	stopAfter int // 0 plays forever
	finished  atomic.Bool
	onLoop    func(n int)
	onEnd     func()
	sampleTap func([]float32)

	// done is closed once when this source ends, is stopped or is replaced.
	done     chan struct{}
	doneOnce sync.Once
}

func (s *engineSource) close() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *engineSource) Process(dst []float32) {
	if s.finished.Load() {
		clear(dst)
		return
	}
	s.mu.Lock()
	s.engine.Decode(dst)
	loops := s.engine.LoopCount()
	s.mu.Unlock()

	for s.seen < loops && !s.finished.Load() {
		s.seen++
		if s.onLoop != nil {
			s.onLoop(s.seen)
		}
		if s.stopAfter > 0 && s.seen >= s.stopAfter {
			s.finished.Store(true)
			if s.onEnd != nil {
				s.onEnd()
			}
		}
	}
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

func (s *engineSource) Finished() bool {
	return s.finished.Load()
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := intaudio.ParseBackend(string(cfg.backend)); err != nil {
		return nil, err
	}
	return &Player{
		sampleRate: sampleRate,
		cfg:        cfg,
		open:       intaudio.Open,
		volume:     1,
	}, nil
}

func (p *Player) newSource(s *Song) *engineSource {
	engine := replay.New(s,
		replay.WithSampleRate(p.sampleRate),
		replay.WithStereoMix(p.cfg.stereoMix),
		replay.WithFilter(p.cfg.filter),
	)
	if p.cfg.scope > 0 {
		engine.EnableScope(p.cfg.scope)
	}
	src := &engineSource{engine: engine, sampleTap: p.cfg.sampleTap, done: make(chan struct{})}
	if !p.cfg.loopPlayback {
		src.stopAfter = p.cfg.loops
	}
	src.onLoop = func(n int) {
		if p.current(src) {
			p.sendEvent(PlaybackEvent{Kind: EventLoopCompleted, Loop: n})
		}
	}
	src.onEnd = func() {
		if p.current(src) {
			p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
		}
		src.close()
	}
	return src
}

// current reports whether src is still the source being played. Events from
// a replaced stream are dropped.
func (p *Player) current(src *engineSource) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source == src
}

// Play starts s from its first position, replacing any current playback.
// If the output cannot be opened the current playback is left untouched.
func (p *Player) Play(s *Song) error {
	src := p.newSource(s)
	reader := intaudio.NewStreamReader(src)

	p.mu.Lock()
	reader.SetGain(float32(p.volume))
	backend, err := p.open(p.cfg.backend, p.sampleRate, reader)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	old, oldAudio := p.source, p.audio
	p.source = src
	p.reader = reader
	p.audio = backend
	p.audio.Play()
	p.mu.Unlock()

	if oldAudio != nil {
		_ = oldAudio.Stop()
	}
	// Release any Wait on the replaced playback.
	if old != nil {
		old.close()
	}
	return nil
}

// PlayFile loads and plays a module from disk.
func (p *Player) PlayFile(path string) error {
	s, err := LoadFile(path)
	if err != nil {
		return err
	}
	return p.Play(s)
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full or closed; drop event
		}
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio != nil && p.audio.IsPlaying()
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	out, src := p.audio, p.source
	p.audio = nil
	p.mu.Unlock()
	// The audio thread may be waiting on p.mu in an event callback.
	err := out.Stop()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if src != nil {
		src.close()
	}
	return err
}

// Wait blocks until the current playback ends. When loop playback is enabled,
// Wait blocks until Stop (use Watch for loop counting instead).
// Wait returns immediately if no playback is active or if it was stopped.
func (p *Player) Wait() {
	p.mu.Lock()
	src := p.source
	active := p.audio != nil
	p.mu.Unlock()
	if src != nil && active {
		<-src.done
	}
}

// Watch returns a channel that receives playback events. Events are sent when:
//   - EventLoopCompleted: the song ran past its last position
//   - EventPlaybackEnded: playback finished or was stopped
//
// The channel is buffered (cap 8); receive in a goroutine to avoid blocking the audio thread.
// Only the most recent Watch() channel receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// PlaybackPosition returns the number of frames the listener has heard
// since Play.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return 0
	}
	return int64(p.audio.Position().Seconds() * float64(p.sampleRate))
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.reader != nil {
		p.reader.SetGain(float32(volume))
	}
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetStereoMix changes the channel separation of the current song.
func (p *Player) SetStereoMix(mix float64) {
	p.mu.Lock()
	p.cfg.stereoMix = mix
	src := p.source
	p.mu.Unlock()
	if src != nil {
		src.mu.Lock()
		src.engine.SetStereoMix(mix)
		src.mu.Unlock()
	}
}

// State returns a snapshot of the playing song; ok is false before Play.
func (p *Player) State() (st State, ok bool) {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()
	if src == nil {
		return State{}, false
	}
	src.mu.Lock()
	defer src.mu.Unlock()
	return src.engine.State(), true
}

// Song returns the song last passed to Play.
func (p *Player) Song() *Song {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()
	if src == nil {
		return nil
	}
	return src.engine.Song()
}

// Scope copies the newest samples of channel ch into dst. It returns 0
// unless the player was created WithScope.
func (p *Player) Scope(ch int, dst []float32) int {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()
	if src == nil {
		return 0
	}
	src.mu.Lock()
	defer src.mu.Unlock()
	return src.engine.Scope(ch, dst)
}
