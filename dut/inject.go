package dut

import "github.com/sarchlab/pixelverify/axis"

// Fault describes a deliberate misbehaviour added on top of a pipeline.
type Fault struct {
	// SidebandCycle, when positive, drives last high with valid low on the
	// output during that cycle.
	SidebandCycle uint64

	// CorruptBeat, when positive, adds CorruptDelta to the data of the
	// n-th output beat (1-based).
	CorruptBeat  int
	CorruptDelta int

	// StallFrom and StallTo force input ready low for cycles in
	// [StallFrom, StallTo).
	StallFrom uint64
	StallTo   uint64
}

// Faulty wraps a pipeline and applies a Fault at its ports.
type Faulty struct {
	Pipeline
	fault Fault

	cycle     uint64
	outputs   int
	outReady  axis.Logic
	resetDone bool
}

// Inject returns p with the fault applied.
func Inject(p Pipeline, f Fault) *Faulty {
	return &Faulty{Pipeline: p, fault: f, outReady: axis.X}
}

func (f *Faulty) stalled() bool {
	return f.cycle >= f.fault.StallFrom && f.cycle < f.fault.StallTo
}

func (f *Faulty) SetReset(active bool) {
	if active {
		f.resetDone = true
		f.cycle = 0
	}

	f.Pipeline.SetReset(active)
}

func (f *Faulty) SetInput(b axis.Bus) {
	if f.stalled() {
		b.Valid = axis.Low
		b.Last = axis.Low
		b.User = axis.Low
	}

	f.Pipeline.SetInput(b)
}

func (f *Faulty) SetOutReady(ready axis.Logic) {
	f.outReady = ready
	f.Pipeline.SetOutReady(ready)
}

func (f *Faulty) InReady() axis.Logic {
	if f.stalled() {
		return axis.Low
	}

	return f.Pipeline.InReady()
}

func (f *Faulty) Output() axis.Bus {
	b := f.Pipeline.Output()

	if f.fault.SidebandCycle > 0 && f.cycle == f.fault.SidebandCycle && !b.Valid.IsHigh() {
		b.Last = axis.High
	}

	if f.fault.CorruptBeat > 0 && f.outputs+1 == f.fault.CorruptBeat &&
		b.Valid.IsHigh() && b.Data.Known {
		b.Data = axis.Val(uint64(int(b.Data.V) + f.fault.CorruptDelta))
	}

	return b
}

func (f *Faulty) Rising() {
	if f.Pipeline.Output().Fires() {
		f.outputs++
	}

	f.Pipeline.Rising()

	if f.resetDone {
		f.cycle++
	}
}
