package replay

// ChannelState is the per-voice part of a State snapshot.
type ChannelState struct {
	Instrument  int // 1-based, 0 when none
	Note        int
	Volume      int
	SynthVolume int
	TrackVolume int
	Period      int
	Effect      int
	Arg         int
	Envelope    EnvelopePhase
	Playing     bool
	LastEvent   int
}

// State is a copy of the engine's playback position and voice state.
type State struct {
	Position  int
	Pattern   int
	Row       int
	Tick      int
	Speed     int
	Tempo     int
	LoopCount int
	Ticks     uint64
	Filter    bool // LED filter switch
	Channels  []ChannelState
}

// State reports the row currently sounding, not the next one queued.
func (e *Engine) State() State {
	s := e.seq
	st := State{
		Position:  s.playPosition,
		Pattern:   s.playPattern,
		Row:       s.playRow,
		Tick:      s.tick,
		Speed:     s.speed,
		Tempo:     s.tempo,
		LoopCount: s.songLoops,
		Ticks:     s.ticks,
		Filter:    e.led,
		Channels:  make([]ChannelState, e.song.Channels),
	}
	for i := range st.Channels {
		v := &e.voices[i]
		st.Channels[i] = ChannelState{
			Instrument:  v.instRef,
			Note:        v.note,
			Volume:      v.volume,
			SynthVolume: v.synthVol,
			TrackVolume: v.trackVol,
			Period:      v.outPeriod,
			Effect:      v.effect,
			Arg:         v.arg,
			Envelope:    v.env,
			Playing:     e.mix.Channel(i).Playing(),
			LastEvent:   v.lastEvent,
		}
	}
	return st
}
