package dut

import "github.com/sarchlab/pixelverify/axis"

// Core is the data path of a stage. It is handed every accepted input beat
// and returns the output beats that became computable, in order.
type Core interface {
	Accept(b axis.Beat) []axis.Beat
	Reset()
}

type pendingBeat struct {
	beat    axis.Beat
	readyAt uint64
}

// Stage wraps a Core with the handshake logic shared by all behavioural
// pipelines: a registered input ready that follows the output ready one
// cycle later, a fixed register latency, an output register that holds its
// value while the consumer stalls, and unresolved outputs until the first
// reset.
type Stage struct {
	name     string
	params   map[string]int
	core     Core
	latency  uint64
	capacity int

	resetReq    bool
	resetSeen   bool
	input       axis.Bus
	outReady    axis.Logic
	inReady     axis.Logic
	out         axis.Bus
	outLoaded   bool
	pending     []pendingBeat
	cycle       uint64
	accepted    int
	transferred int
}

// NewStage creates a stage. Latency is the number of cycles between
// accepting an input beat and presenting the outputs it produced. Capacity
// bounds the number of outputs held internally before input ready drops.
func NewStage(
	name string,
	params map[string]int,
	core Core,
	latency, capacity int,
) *Stage {
	if latency < 1 {
		panic("stage latency must be at least one cycle")
	}

	if capacity < 1 {
		panic("stage capacity must be positive")
	}

	p := make(map[string]int, len(params)+1)
	for k, v := range params {
		p[k] = v
	}
	p[ParamLatency] = latency

	return &Stage{
		name:     name,
		params:   p,
		core:     core,
		latency:  uint64(latency),
		capacity: capacity,
		inReady:  axis.X,
		outReady: axis.X,
		out:      axis.Unknown,
	}
}

func (s *Stage) Name() string {
	return s.name
}

func (s *Stage) Param(name string) (int, bool) {
	v, ok := s.params[name]
	return v, ok
}

func (s *Stage) SetReset(active bool) {
	s.resetReq = active
}

func (s *Stage) SetInput(b axis.Bus) {
	s.input = b
}

func (s *Stage) SetOutReady(ready axis.Logic) {
	s.outReady = ready
}

func (s *Stage) InReady() axis.Logic {
	return s.inReady
}

func (s *Stage) Output() axis.Bus {
	b := s.out
	b.Ready = s.outReady

	return b
}

// Accepted is the number of input beats taken so far.
func (s *Stage) Accepted() int {
	return s.accepted
}

// Pending is the number of computed outputs not yet transferred.
func (s *Stage) Pending() int {
	n := len(s.pending)
	if s.outLoaded {
		n++
	}

	return n
}

func (s *Stage) Rising() {
	if s.resetReq {
		s.reset()
		return
	}

	if !s.resetSeen {
		return
	}

	s.cycle++

	s.doOutput()
	s.doInput()
	s.loadOutput()
	s.updateReady()
}

func (s *Stage) reset() {
	s.resetSeen = true
	s.core.Reset()
	s.pending = nil
	s.outLoaded = false
	s.out = axis.Idle
	s.inReady = axis.Low
	s.cycle = 0
	s.accepted = 0
	s.transferred = 0
}

func (s *Stage) doOutput() {
	if !s.outLoaded || !s.outReady.IsHigh() {
		return
	}

	s.outLoaded = false
	s.transferred++
	s.out.Valid = axis.Low
	s.out.Last = axis.Low
	s.out.User = axis.Low
}

func (s *Stage) doInput() {
	if !s.inReady.IsHigh() || !s.input.Valid.IsHigh() {
		return
	}

	s.accepted++

	for _, b := range s.core.Accept(axis.BeatFrom(s.input, s.cycle)) {
		s.pending = append(s.pending, pendingBeat{
			beat:    b,
			readyAt: s.cycle + s.latency - 1,
		})
	}
}

func (s *Stage) loadOutput() {
	if s.outLoaded || len(s.pending) == 0 {
		return
	}

	head := s.pending[0]
	if head.readyAt > s.cycle {
		return
	}

	s.pending = s.pending[1:]
	s.outLoaded = true
	s.out = axis.Bus{
		Data:  head.beat.Data,
		Valid: axis.High,
		Last:  axis.Bit(head.beat.Last),
		User:  axis.Bit(head.beat.User),
	}
}

func (s *Stage) updateReady() {
	s.inReady = axis.Bit(s.outReady.IsHigh() && len(s.pending) < s.capacity)
}

// Transferred is the number of output beats taken by the consumer so far.
func (s *Stage) Transferred() int {
	return s.transferred
}
