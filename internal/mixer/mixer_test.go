package mixer

import "testing"

func rampWave() [][]int8 {
	return [][]int8{{1, 2, 3, 4, 5, 6, 7, 8}}
}

func unitChannel() *Channel {
	c := &Channel{}
	c.SetPeriod(100, 4800, 48) // one byte per frame
	c.SetAmplitude(128)        // samples come back as raw byte values
	return c
}

func TestChannelEntersLoopAfterInitialRegion(t *testing.T) {
	waves := rampWave()
	c := unitChannel()
	c.Trigger(Region{Wave: 0, Offset: 0, Length: 4}, Region{Wave: 0, Offset: 4, Length: 4}, true)
	want := []float32{1, 2, 3, 4, 5, 6, 7, 8, 5, 6, 7, 8, 5}
	for i, w := range want {
		if got := c.Next(waves); got != w {
			t.Fatalf("frame %d: got %v, want %v", i, got, w)
		}
	}
	if !c.Playing() {
		t.Fatalf("looping channel must keep playing")
	}
}

func TestChannelStopsWithoutLoop(t *testing.T) {
	waves := rampWave()
	c := unitChannel()
	c.Trigger(Region{Wave: 0, Offset: 0, Length: 3}, Region{}, false)
	for i := 0; i < 3; i++ {
		if got := c.Next(waves); got != float32(i+1) {
			t.Fatalf("frame %d: got %v", i, got)
		}
	}
	if got := c.Next(waves); got != 0 {
		t.Fatalf("exhausted channel should be silent, got %v", got)
	}
	if c.Playing() {
		t.Fatalf("channel should have stopped")
	}
}

func TestChannelWrapsByLoopLengthKeepingFraction(t *testing.T) {
	waves := rampWave()
	c := &Channel{}
	c.SetPeriod(100, 7200, 48) // 1.5 bytes per frame
	c.SetAmplitude(128)
	c.Trigger(Region{Wave: 0, Offset: 4, Length: 4}, Region{Wave: 0, Offset: 4, Length: 4}, true)
	// phases: 0, 1.5, 3, 4.5->0.5, 2, 3.5, 5->1
	want := []float32{5, 6, 8, 5, 7, 8, 6}
	for i, w := range want {
		if got := c.Next(waves); got != w {
			t.Fatalf("frame %d: got %v, want %v", i, got, w)
		}
	}
}

func TestChannelTriggerEmptyRegionStartsInLoop(t *testing.T) {
	waves := rampWave()
	c := unitChannel()
	c.Trigger(Region{}, Region{Wave: 0, Offset: 6, Length: 2}, true)
	for i, w := range []float32{7, 8, 7, 8} {
		if got := c.Next(waves); got != w {
			t.Fatalf("frame %d: got %v, want %v", i, got, w)
		}
	}
	c.Trigger(Region{}, Region{}, false)
	if c.Playing() {
		t.Fatalf("empty trigger without loop should not play")
	}
}

func TestChannelReadsOutOfRangeAsSilence(t *testing.T) {
	c := unitChannel()
	c.Trigger(Region{Wave: 3, Offset: 0, Length: 4}, Region{}, false)
	if got := c.Next(rampWave()); got != 0 {
		t.Fatalf("unknown waveform should read as 0, got %v", got)
	}
}

func TestPanTables(t *testing.T) {
	cases := []struct {
		channels int
		lefts    []bool
	}{
		{4, []bool{true, false, false, true}},
		{8, []bool{true, true, false, false, false, false, true, true}},
	}
	for _, tc := range cases {
		m := New(tc.channels, 0)
		for i, isLeft := range tc.lefts {
			l, r := m.Pan(i)
			if isLeft && (l != 1 || r != 0) {
				t.Fatalf("%dch channel %d: pan (%v,%v), want left", tc.channels, i, l, r)
			}
			if !isLeft && (l != 0 || r != 1) {
				t.Fatalf("%dch channel %d: pan (%v,%v), want right", tc.channels, i, l, r)
			}
		}
	}
}

func TestStereoMixBlendsTowardCenter(t *testing.T) {
	m := New(4, 0.5)
	l, r := m.Pan(0)
	if l != 0.75 || r != 0.25 {
		t.Fatalf("pan = (%v,%v), want (0.75,0.25)", l, r)
	}
	m.SetStereoMix(1)
	l, r = m.Pan(1)
	if l != 0.5 || r != 0.5 {
		t.Fatalf("pan = (%v,%v), want centered", l, r)
	}
	m.SetStereoMix(3)
	if m.StereoMix() != 1 {
		t.Fatalf("stereo mix should clamp to 1")
	}
}

func TestMixAppliesPanAndGain(t *testing.T) {
	waves := [][]int8{{64, 64, 64, 64}}
	m := New(4, 0)
	m.SetGain(1)
	for i := 0; i < 2; i++ {
		c := m.Channel(i)
		c.SetPeriod(100, 4800, 48)
		c.SetAmplitude(1)
		c.Trigger(Region{Length: 4}, Region{Length: 4}, true)
	}
	l, r := m.Mix(waves)
	if l != 0.5 || r != 0.5 {
		t.Fatalf("mix = (%v,%v), want (0.5,0.5)", l, r)
	}
}

func TestScopeRingWraps(t *testing.T) {
	var s Scope
	dst := make([]float32, 4)
	if n := s.Read(0, dst); n != 0 {
		t.Fatalf("disabled scope returned %d samples", n)
	}
	s.Enable(4)
	for i := 1; i <= 6; i++ {
		s.write(1, float32(i))
	}
	n := s.Read(1, dst)
	if n != 4 {
		t.Fatalf("read %d samples, want 4", n)
	}
	for i, w := range []float32{3, 4, 5, 6} {
		if dst[i] != w {
			t.Fatalf("dst = %v, want [3 4 5 6]", dst)
		}
	}
	short := make([]float32, 2)
	s.Read(1, short)
	if short[0] != 5 || short[1] != 6 {
		t.Fatalf("short read = %v, want newest samples", short)
	}
	s.Disable()
	if s.Enabled() || s.Size() != 0 {
		t.Fatalf("disable should release buffers")
	}
}

func TestMixerCapturesScope(t *testing.T) {
	waves := [][]int8{{32, 32}}
	m := New(4, 0)
	m.Scope().Enable(8)
	c := m.Channel(2)
	c.SetPeriod(100, 4800, 48)
	c.SetAmplitude(1)
	c.Trigger(Region{Length: 2}, Region{Length: 2}, true)
	for i := 0; i < 3; i++ {
		m.Mix(waves)
	}
	dst := make([]float32, 8)
	if n := m.Scope().Read(2, dst); n != 3 || dst[0] != 0.25 {
		t.Fatalf("scope read n=%d dst=%v", n, dst)
	}
}
