// Package dut defines the boundary between the harness and a design under
// test, and provides behavioural pipelines that honour that boundary.
//
// The harness knows a design only through Pipeline: its run-time constants,
// a reset input, the input and output handshake buses, and a clock edge. The
// pipelines in this package are used to exercise the harness itself. They
// are not models of any particular hardware.
package dut

import "github.com/sarchlab/pixelverify/axis"

// Pipeline is a clocked streaming design seen from its ports.
//
// Within one cycle the caller first sets the inputs, then samples InReady
// and Output, and finally calls Rising to advance the design by one clock
// edge. InReady and Output reflect registered state and therefore do not
// change between two calls to Rising.
type Pipeline interface {
	// Name identifies the design in reports and traces.
	Name() string

	// Param returns a run-time constant exposed by the design, such as
	// IMG_WIDTH.
	Param(name string) (int, bool)

	// SetReset drives the active-high reset request.
	SetReset(active bool)

	// SetInput drives data, valid, last and user of the input port. The
	// ready field is ignored.
	SetInput(b axis.Bus)

	// SetOutReady drives the ready wire of the output port.
	SetOutReady(ready axis.Logic)

	// InReady is the ready wire of the input port.
	InReady() axis.Logic

	// Output is the output port. Its ready field echoes SetOutReady.
	Output() axis.Bus

	// Rising advances the design by one clock edge.
	Rising()
}

// Parameter names understood by the pipelines in this package.
const (
	ParamWidth     = "IMG_WIDTH"
	ParamHeight    = "IMG_HEIGHT"
	ParamLatency   = "LATENCY"
	ParamRounding  = "ROUNDING"
	ParamLineWidth = "LINE_WIDTH"
	ParamDelay     = "DELAY"
)
