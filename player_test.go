package aonplay

import (
	"errors"
	"testing"
	"time"

	intaudio "github.com/cbegin/aonplay-go/internal/audio"
	"github.com/cbegin/aonplay-go/internal/song"
	"github.com/cbegin/aonplay-go/internal/song/songtest"
)

func testSong(t *testing.T) *Song {
	t.Helper()
	b := songtest.New(4)
	b.Title = "player test"
	b.Waveforms = [][]int8{songtest.Square(32, 100)}
	b.Instruments = []songtest.Instrument{{Name: "square", Volume: 64, Length: 16, LoopLength: 16}}
	b.Set(0, 0, 0, song.Cell{Note: 25, Instrument: 1})
	// Two rows per pass keeps the song short.
	b.Set(0, 1, 1, song.Cell{Effect: 0x0D})
	s, err := Load(b.Bytes())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestPlayerMasterVolumeRuntimeAPI(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if got := pl.MasterVolume(); got != 1 {
		t.Fatalf("default master volume = %v, want 1", got)
	}
	pl.SetMasterVolume(0.35)
	if got := pl.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	pl.SetMasterVolume(-2)
	if got := pl.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
}

func TestNewPlayerValidatesOptions(t *testing.T) {
	if _, err := NewPlayer(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewPlayer(48000, WithBackend("pulse")); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	pl, err := NewPlayer(44100, WithBackend(BackendOto), WithLoops(3), WithLoopPlayback(false), WithScope(128))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if pl.cfg.loops != 3 || pl.cfg.loopPlayback || pl.cfg.scope != 128 {
		t.Fatalf("options not applied: %+v", pl.cfg)
	}
	if _, ok := pl.State(); ok {
		t.Fatal("State reported a song before Play")
	}
	if pl.Song() != nil || pl.Scope(0, make([]float32, 4)) != 0 {
		t.Fatal("player without a song returned data")
	}
}

func TestEngineSourceEndsAfterLoops(t *testing.T) {
	var tapped int
	pl, err := NewPlayer(8000,
		WithLoopPlayback(false),
		WithLoops(2),
		WithScope(64),
		WithSampleTap(func(buf []float32) { tapped += len(buf) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	events := pl.Watch()
	src := pl.newSource(testSong(t))
	pl.source = src

	buf := make([]float32, 512)
	for i := 0; i < 200 && !src.Finished(); i++ {
		src.Process(buf)
	}
	if !src.Finished() {
		t.Fatal("source never finished")
	}

	var loops []int
	ended := false
	for len(events) > 0 {
		ev := <-events
		switch ev.Kind {
		case EventLoopCompleted:
			loops = append(loops, ev.Loop)
		case EventPlaybackEnded:
			ended = true
		}
	}
	if len(loops) != 2 || loops[0] != 1 || loops[1] != 2 || !ended {
		t.Fatalf("events: loops %v ended %v", loops, ended)
	}
	if tapped == 0 {
		t.Fatal("sample tap never called")
	}
	if st, ok := pl.State(); !ok || st.LoopCount < 2 {
		t.Fatalf("state: %+v %v", st, ok)
	}
	if n := pl.Scope(0, make([]float32, 64)); n != 64 {
		t.Fatalf("scope returned %d samples", n)
	}

	src.Process(buf)
	for _, v := range buf {
		if v != 0 {
			t.Fatal("finished source still produced audio")
		}
	}
}

func TestEngineSourceLoopsForever(t *testing.T) {
	pl, err := NewPlayer(8000)
	if err != nil {
		t.Fatal(err)
	}
	src := pl.newSource(testSong(t))
	buf := make([]float32, 2048)
	for i := 0; i < 50; i++ {
		src.Process(buf)
	}
	if src.Finished() || src.seen < 2 {
		t.Fatalf("looping source: finished %v after %d loops", src.Finished(), src.seen)
	}
}

type fakeOutput struct {
	playing bool
	stopped bool
}

func (o *fakeOutput) Play()                   { o.playing = true }
func (o *fakeOutput) Pause()                  { o.playing = false }
func (o *fakeOutput) IsPlaying() bool         { return o.playing }
func (o *fakeOutput) Position() time.Duration { return 0 }
func (o *fakeOutput) Stop() error {
	o.playing = false
	o.stopped = true
	return nil
}

// fakeDevice records the outputs a player opens and can be made to fail.
type fakeDevice struct {
	outputs []*fakeOutput
	fail    error
}

func (d *fakeDevice) open(intaudio.Backend, int, *intaudio.StreamReader) (intaudio.Output, error) {
	if d.fail != nil {
		return nil, d.fail
	}
	o := &fakeOutput{}
	d.outputs = append(d.outputs, o)
	return o, nil
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestPlayKeepsCurrentPlaybackWhenOpenFails(t *testing.T) {
	dev := &fakeDevice{}
	pl, err := NewPlayer(8000)
	if err != nil {
		t.Fatal(err)
	}
	pl.open = dev.open
	s := testSong(t)
	if err := pl.Play(s); err != nil {
		t.Fatalf("play: %v", err)
	}
	first := pl.source

	dev.fail = errors.New("device busy")
	if err := pl.Play(s); !errors.Is(err, dev.fail) {
		t.Fatalf("Play error = %v, want device error", err)
	}
	if pl.source != first || !pl.IsPlaying() || dev.outputs[0].stopped {
		t.Fatal("failed Play replaced or stopped the current playback")
	}
	if isClosed(first.done) {
		t.Fatal("failed Play released Wait on the current playback")
	}
}

func TestReplacedSourceCannotEndNewPlayback(t *testing.T) {
	dev := &fakeDevice{}
	pl, err := NewPlayer(8000, WithLoopPlayback(false))
	if err != nil {
		t.Fatal(err)
	}
	pl.open = dev.open
	events := pl.Watch()
	s := testSong(t)
	if err := pl.Play(s); err != nil {
		t.Fatal(err)
	}
	old := pl.source
	if err := pl.Play(s); err != nil {
		t.Fatal(err)
	}
	if !isClosed(old.done) || !dev.outputs[0].stopped {
		t.Fatal("replaced playback was not stopped and released")
	}

	// A late end from the old stream.
	old.onEnd()
	if isClosed(pl.source.done) {
		t.Fatal("old source ended the new playback")
	}
	if len(events) != 0 {
		t.Fatalf("old source sent %v", <-events)
	}

	pl.source.onEnd()
	pl.Wait()
	if ev := <-events; ev.Kind != EventPlaybackEnded {
		t.Fatalf("event = %+v, want playback ended", ev)
	}
	if err := pl.Stop(); err != nil {
		t.Fatal(err)
	}
	pl.Wait()
}
