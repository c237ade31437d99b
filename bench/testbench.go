// Package bench runs a pipeline against a reference stream on a simulated
// clock.
//
// A Testbench is a ticking component. Each tick is one clock cycle and
// always follows the same order:
//
//  1. the driver puts the current input beat on the bus,
//  2. the consumer decides the output ready wire,
//  3. both ports are sampled (driver sees s_tready, monitor sees m_*),
//  4. a probe of every handshake wire is handed to the hooks,
//  5. the pipeline takes a clock edge,
//  6. the driver advances if its beat was accepted,
//  7. the watchdog decides whether the drain is over.
//
// After the engine stops, the captured stream is aligned with the reference
// and compared sample by sample. The result is a *verify.Report.
package bench

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/dut"
	"github.com/sarchlab/pixelverify/frame"
	"github.com/sarchlab/pixelverify/trace"
	"github.com/sarchlab/pixelverify/verify"
)

// Testbench drives one pipeline through one run.
type Testbench struct {
	*sim.TickingComponent
	*sim.HookableBase

	dut      dut.Pipeline
	driver   *Driver
	monitor  *Monitor
	watchdog *Watchdog
	consumer ReadyPattern
	machine  stateMachine

	frames      []frame.Frame
	reference   []int
	width       int
	height      int
	alignOpts   verify.AlignOptions
	compareOpts verify.CompareOptions
	resetCycles int

	ctx         context.Context
	cancelled   bool
	cycle       uint64
	resetCount  int
	streamStart uint64
	drainDone   bool

	report *verify.Report
}

// State returns the current phase of the run.
func (tb *Testbench) State() State {
	return tb.machine.state
}

// Report returns the report of the run so far.
func (tb *Testbench) Report() *verify.Report {
	return tb.report
}

// Run resets the pipeline, streams every frame through it, drains it, and
// verifies the captured output. A failed verification is not an error: it
// is recorded in the returned report. An error means the run could not be
// carried out, or ctx was cancelled.
func (tb *Testbench) Run(ctx context.Context) (*verify.Report, error) {
	if tb.machine.state != StateIdle {
		return nil, fmt.Errorf("testbench %s has already run", tb.Name())
	}

	if err := tb.checkGeometry(); err != nil {
		return nil, err
	}

	for _, f := range tb.frames {
		tb.driver.FeedIn(f)
	}

	tb.ctx = ctx
	tb.TickNow()

	if err := tb.Engine.Run(); err != nil {
		tb.finishReport()
		return tb.report, fmt.Errorf("engine stopped: %w", err)
	}

	if tb.cancelled {
		tb.finishReport()
		return tb.report, ctx.Err()
	}

	if !tb.machine.state.Terminal() {
		tb.verify()
	}

	tb.finishReport()

	return tb.report, nil
}

func (tb *Testbench) checkGeometry() error {
	if len(tb.frames) == 0 {
		return fmt.Errorf("testbench %s has no frames to stream", tb.Name())
	}

	for i, f := range tb.frames {
		if f.Width != tb.width || f.Height != tb.height {
			return fmt.Errorf(
				"frame %d is %dx%d but pipeline %s expects %dx%d",
				i, f.Width, f.Height, tb.dut.Name(), tb.width, tb.height)
		}
	}

	if len(tb.reference) == 0 {
		return fmt.Errorf("testbench %s has no reference stream", tb.Name())
	}

	return nil
}

// Tick runs one clock cycle.
func (tb *Testbench) Tick() bool {
	if tb.ctx != nil && tb.ctx.Err() != nil {
		tb.cancelled = true
		Trace("Cancelled", "Cycle", tb.cycle, "State", tb.machine.state)

		return false
	}

	switch tb.machine.state {
	case StateIdle:
		tb.transition(StateResetting)
		tb.resetCycle()

		return true
	case StateResetting:
		tb.resetCycle()
		return true
	case StateStreaming, StateFlushing:
		return tb.streamCycle()
	default:
		return false
	}
}

// resetCycle holds reset for resetCycles cycles and then spends one more
// cycle with reset released and the ports idle.
func (tb *Testbench) resetCycle() {
	active := tb.resetCount < tb.resetCycles

	tb.dut.SetReset(active)
	tb.dut.SetInput(axis.Idle)
	tb.dut.SetOutReady(axis.Low)

	in := axis.Idle
	in.Ready = tb.dut.InReady()
	tb.probe(active, in, tb.dut.Output())

	tb.dut.Rising()
	tb.cycle++
	tb.resetCount++

	if tb.resetCount > tb.resetCycles {
		tb.streamStart = tb.cycle
		tb.transition(StateStreaming)
	}
}

func (tb *Testbench) streamCycle() bool {
	in := tb.driver.Drive(tb.cycle)
	tb.dut.SetInput(in)
	tb.dut.SetOutReady(axis.Bit(tb.consumer.Ready(tb.cycle)))

	sReady := tb.dut.InReady()
	out := tb.dut.Output()

	tb.driver.Sample(sReady)
	err := tb.monitor.Sample(out, tb.cycle)

	in.Ready = sReady
	tb.probe(false, in, out)

	tb.dut.Rising()
	tb.driver.Advance()
	tb.cycle++

	if err != nil {
		tb.fail(err)
		return false
	}

	if tb.machine.state == StateStreaming && tb.driver.Done() {
		tb.transition(StateFlushing)
	}

	done, status := tb.watchdog.Check(
		tb.monitor.Stream(),
		tb.cycle-tb.streamStart,
		tb.machine.state == StateFlushing,
	)
	if !done {
		return true
	}

	tb.drainDone = true
	tb.report.Drain = status

	if status.TimedOut {
		w := status.TimeoutWarning()
		tb.report.Warn(w)
		slog.Warn("DrainTimeout",
			"Cycle", tb.cycle,
			"Beats", status.ObservedBeats, "ExpectedBeats", status.ExpectedBeats,
			"Lasts", status.ObservedLasts, "ExpectedLasts", status.ExpectedLasts)
	} else {
		Trace("Drained", "Cycle", tb.cycle, "Reason", status.Reason)
	}

	return false
}

func (tb *Testbench) probe(reset bool, in, out axis.Bus) {
	tb.InvokeHook(sim.HookCtx{
		Domain: tb,
		Pos:    trace.HookPosCycle,
		Item:   trace.ProbeBuses(tb.cycle, reset, in, out),
	})
}

func (tb *Testbench) verify() {
	if tb.machine.state == StateStreaming {
		tb.transition(StateFlushing)
	}

	tb.transition(StateAligning)

	captured := tb.monitor.Stream().Data()

	res, err := verify.Align(tb.reference, captured, tb.alignOpts)
	tb.report.Alignment = &res

	if err != nil {
		tb.fail(err)
		return
	}

	tb.transition(StateComparing)

	cmp, err := verify.Compare(tb.reference, captured, res.Shift(), tb.compareOpts)
	tb.report.Comparison = &cmp

	if err != nil {
		tb.fail(err)
		return
	}

	tb.transition(StatePass)
}

func (tb *Testbench) fail(err error) {
	f, ok := verify.AsFailure(err)
	if !ok {
		f = verify.NewFailure(verify.KindProtocolViolation, "%v", err)
	}

	tb.report.Failure = f
	slog.Warn("Failure", "Kind", f.Kind, "Message", f.Message, "Cycle", tb.cycle)

	tb.transition(StateFail)
}

func (tb *Testbench) transition(next State) {
	from := tb.machine.state
	tb.machine.to(next)

	Trace("State", "From", from, "To", next, "Cycle", tb.cycle)
}

func (tb *Testbench) finishReport() {
	r := tb.report

	r.Width = tb.width
	r.Height = tb.height
	r.Frames = len(tb.frames)
	r.Cycles = tb.cycle
	r.InputBeats = tb.driver.Beats()
	r.InputStalls = tb.driver.Stalls()
	r.OutputStalls = tb.monitor.Stalls()
	r.UnresolvedBeats = tb.monitor.Stream().Unresolved()

	if !tb.drainDone {
		cycles := uint64(0)
		if tb.cycle > tb.streamStart {
			cycles = tb.cycle - tb.streamStart
		}
		r.Drain = tb.watchdog.Status(tb.monitor.Stream(), cycles)
	}

	r.FinalState = tb.machine.state.String()
	r.Transitions = tb.machine.names()

	r.Verdict = verify.VerdictFail
	if tb.machine.state == StatePass {
		r.Verdict = verify.VerdictPass
	}
}
