package mixer

// Scope keeps the most recent per-channel samples for visualization. It is a
// plain ring buffer without locking; callers sharing it across goroutines
// must serialise access themselves.
type Scope struct {
	bufs    [MaxChannels][]float32
	pos     [MaxChannels]int
	filled  [MaxChannels]int
	enabled bool
}

// Enable allocates size samples per channel and starts capturing.
func (s *Scope) Enable(size int) {
	if size <= 0 {
		s.Disable()
		return
	}
	for i := range s.bufs {
		s.bufs[i] = make([]float32, size)
		s.pos[i] = 0
		s.filled[i] = 0
	}
	s.enabled = true
}

// Disable stops capturing and releases the buffers.
func (s *Scope) Disable() {
	for i := range s.bufs {
		s.bufs[i] = nil
		s.pos[i] = 0
		s.filled[i] = 0
	}
	s.enabled = false
}

func (s *Scope) Enabled() bool { return s.enabled }

// Size is the per-channel capacity, 0 when disabled.
func (s *Scope) Size() int { return len(s.bufs[0]) }

// Clear forgets captured samples but keeps capturing.
func (s *Scope) Clear() {
	for i := range s.bufs {
		for j := range s.bufs[i] {
			s.bufs[i][j] = 0
		}
		s.pos[i] = 0
		s.filled[i] = 0
	}
}

func (s *Scope) write(ch int, v float32) {
	buf := s.bufs[ch]
	buf[s.pos[ch]] = v
	s.pos[ch]++
	if s.pos[ch] == len(buf) {
		s.pos[ch] = 0
	}
	if s.filled[ch] < len(buf) {
		s.filled[ch]++
	}
}

// Read copies up to len(dst) of the newest samples of channel ch into dst,
// oldest first, and returns how many were copied.
func (s *Scope) Read(ch int, dst []float32) int {
	if !s.enabled || ch < 0 || ch >= MaxChannels {
		return 0
	}
	buf := s.bufs[ch]
	n := len(dst)
	if n > s.filled[ch] {
		n = s.filled[ch]
	}
	start := s.pos[ch] - n
	if start < 0 {
		start += len(buf)
	}
	for i := 0; i < n; i++ {
		dst[i] = buf[(start+i)%len(buf)]
	}
	return n
}
