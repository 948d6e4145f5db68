// Package filter models the analog output stage of the Amiga: the fixed RC
// filters of each machine and the switchable "LED" low-pass.
package filter

// Stage processes one stereo frame.
type Stage interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies stages in order.
type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, s := range c.stages {
		l, r = s.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

func (c *Chain) Add(s Stage) {
	c.stages = append(c.stages, s)
}

func (c *Chain) Len() int { return len(c.stages) }
