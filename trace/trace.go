// Package trace records a cycle-indexed log of named signal values.
//
// The set of traced signals is a static table handed to the recorder. A
// probe may carry more wires than the table names; those are ignored.
package trace

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pixelverify/axis"
)

// HookPosCycle marks the end of the sampling phase of a clock cycle. The
// hook item is a Probe.
var HookPosCycle = &sim.HookPos{Name: "Cycle"}

// Policy decides when a signal is written to the trace.
type Policy int

const (
	// CaptureAlways records the signal in every cycle.
	CaptureAlways Policy = iota
	// CaptureOnChange records the signal only when its value differs from
	// the previous record.
	CaptureOnChange
)

// Signal is one entry of the trace table.
type Signal struct {
	Name   string
	Policy Policy
}

// Unresolved is written in place of an unresolved value.
const Unresolved = "X"

// Handshake wire names.
const (
	Reset  = "rst"
	SData  = "s_tdata"
	SValid = "s_tvalid"
	SReady = "s_tready"
	SLast  = "s_tlast"
	SUser  = "s_tuser"
	MData  = "m_tdata"
	MValid = "m_tvalid"
	MReady = "m_tready"
	MLast  = "m_tlast"
	MUser  = "m_tuser"
)

// HandshakeSignals traces both ports. Control wires are recorded every
// cycle and data wires on change.
func HandshakeSignals() []Signal {
	return []Signal{
		{Name: Reset, Policy: CaptureOnChange},
		{Name: SValid, Policy: CaptureAlways},
		{Name: SReady, Policy: CaptureAlways},
		{Name: SData, Policy: CaptureOnChange},
		{Name: SLast, Policy: CaptureOnChange},
		{Name: SUser, Policy: CaptureOnChange},
		{Name: MValid, Policy: CaptureAlways},
		{Name: MReady, Policy: CaptureAlways},
		{Name: MData, Policy: CaptureOnChange},
		{Name: MLast, Policy: CaptureOnChange},
		{Name: MUser, Policy: CaptureOnChange},
	}
}

// Probe is the value of every wire a testbench owns in one cycle.
type Probe struct {
	Cycle  uint64
	Values map[string]axis.Logic
}

// ProbeBuses builds a probe from the input and output buses.
func ProbeBuses(cycle uint64, reset bool, in, out axis.Bus) Probe {
	return Probe{
		Cycle: cycle,
		Values: map[string]axis.Logic{
			Reset:  axis.Bit(reset),
			SData:  in.Data,
			SValid: in.Valid,
			SReady: in.Ready,
			SLast:  in.Last,
			SUser:  in.User,
			MData:  out.Data,
			MValid: out.Valid,
			MReady: out.Ready,
			MLast:  out.Last,
			MUser:  out.User,
		},
	}
}
