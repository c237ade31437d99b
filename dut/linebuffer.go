package dut

import "github.com/sarchlab/pixelverify/axis"

// delayCore is a shift register of fixed depth. Each accepted beat pushes
// one sample in and the oldest one out, so output i carries input i-depth.
// The register powers up unresolved and reset does not clear it. Markers
// are not delayed.
type delayCore struct {
	chain []axis.Logic
	head  int
}

func newDelayCore(depth int) *delayCore {
	c := &delayCore{chain: make([]axis.Logic, depth)}
	for i := range c.chain {
		c.chain[i] = axis.X
	}

	return c
}

func (c *delayCore) Reset() {}

func (c *delayCore) Accept(b axis.Beat) []axis.Beat {
	if len(c.chain) == 0 {
		return []axis.Beat{b}
	}

	old := c.chain[c.head]
	c.chain[c.head] = b.Data
	c.head = (c.head + 1) % len(c.chain)

	return []axis.Beat{{Data: old, Last: b.Last, User: b.User}}
}

// LineBufferConfig describes a single-line delay buffer. The delay defaults
// to LineWidth+1 to account for the registered output.
type LineBufferConfig struct {
	LineWidth int
	Height    int
	Delay     int
	Latency   int
}

// NewLineBuffer creates a line delay stage.
func NewLineBuffer(name string, cfg LineBufferConfig) *Stage {
	delay := cfg.Delay
	if delay == 0 {
		delay = cfg.LineWidth + 1
	}

	params := map[string]int{
		ParamLineWidth: cfg.LineWidth,
		ParamWidth:     cfg.LineWidth,
		ParamHeight:    cfg.Height,
		ParamDelay:     delay,
	}

	return NewStage(name, params, newDelayCore(delay), max(cfg.Latency, 1), 8)
}
