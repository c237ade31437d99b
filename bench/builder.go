package bench

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/dut"
	"github.com/sarchlab/pixelverify/frame"
	"github.com/sarchlab/pixelverify/verify"
)

// Default drain budget: BudgetFactor cycles per expected output beat plus
// BudgetFloor.
const (
	BudgetFactor uint64 = 16
	BudgetFloor  uint64 = 1000

	DefaultResetCycles = 2
)

// Builder creates a Testbench.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	pipeline  dut.Pipeline
	frames    []frame.Frame
	reference []int

	consumer ReadyPattern
	throttle ReadyPattern

	resetCycles    int
	budgetFactor   uint64
	budgetFloor    uint64
	alignOpts      *verify.AlignOptions
	tolerance      int
	border         int
	checkStability bool
	hooks          []sim.Hook
	scenario       string
}

// NewBuilder returns a builder with the default settings.
func NewBuilder() Builder {
	return Builder{
		freq:         1 * sim.GHz,
		consumer:     AlwaysReady{},
		resetCycles:  DefaultResetCycles,
		budgetFactor: BudgetFactor,
		budgetFloor:  BudgetFloor,
		tolerance:    1,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithPipeline sets the design under test.
func (b Builder) WithPipeline(p dut.Pipeline) Builder {
	b.pipeline = p
	return b
}

// WithFrames sets the stimulus frames, streamed in order.
func (b Builder) WithFrames(frames ...frame.Frame) Builder {
	b.frames = frames
	return b
}

// WithReference sets the expected output stream.
func (b Builder) WithReference(reference []int) Builder {
	b.reference = reference
	return b
}

// WithConsumer sets the pattern of the output ready wire.
func (b Builder) WithConsumer(p ReadyPattern) Builder {
	b.consumer = p
	return b
}

// WithThrottle limits how often the driver presents a new input beat.
func (b Builder) WithThrottle(p ReadyPattern) Builder {
	b.throttle = p
	return b
}

// WithResetCycles sets how many cycles reset is held.
func (b Builder) WithResetCycles(n int) Builder {
	b.resetCycles = n
	return b
}

// WithDrainBudget sets the drain budget to factor cycles per expected beat
// plus floor.
func (b Builder) WithDrainBudget(factor, floor uint64) Builder {
	b.budgetFactor = factor
	b.budgetFloor = floor

	return b
}

// WithAlignOptions overrides the alignment search settings.
func (b Builder) WithAlignOptions(o verify.AlignOptions) Builder {
	b.alignOpts = &o
	return b
}

// WithTolerance sets the largest acceptable per-sample difference.
func (b Builder) WithTolerance(t int) Builder {
	b.tolerance = t
	return b
}

// WithBorder excludes the given number of rows and columns at each frame
// edge from comparison.
func (b Builder) WithBorder(n int) Builder {
	b.border = n
	return b
}

// WithStabilityCheck makes an output that changes while stalled a protocol
// violation.
func (b Builder) WithStabilityCheck(on bool) Builder {
	b.checkStability = on
	return b
}

// WithHook attaches a per-cycle hook, such as a trace recorder.
func (b Builder) WithHook(h sim.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// WithScenario names the run in its report.
func (b Builder) WithScenario(name string) Builder {
	b.scenario = name
	return b
}

// Build creates the testbench.
func (b Builder) Build(name string) *Testbench {
	if b.engine == nil {
		panic("testbench requires an engine")
	}

	if b.pipeline == nil {
		panic("testbench requires a pipeline")
	}

	if b.consumer == nil {
		b.consumer = AlwaysReady{}
	}

	tb := &Testbench{
		HookableBase: sim.NewHookableBase(),
		dut:          b.pipeline,
		driver:       NewDriver(b.throttle),
		monitor:      NewMonitor(b.checkStability),
		consumer:     b.consumer,
		machine:      newStateMachine(),
		frames:       b.frames,
		reference:    b.reference,
		resetCycles:  b.resetCycles,
	}

	tb.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, tb)

	tb.width, tb.height = b.geometry()

	tb.alignOpts = verify.DefaultAlignOptions(tb.width)
	if b.alignOpts != nil {
		tb.alignOpts = *b.alignOpts
	}

	tb.compareOpts = verify.CompareOptions{
		Width:     tb.width,
		Height:    tb.height,
		Border:    b.border,
		Tolerance: b.tolerance,
	}

	beats, lasts := axis.Expected(tb.width, tb.height, len(b.frames))
	tb.watchdog = NewWatchdog(beats, lasts, b.budgetFactor, b.budgetFloor)

	for _, h := range b.hooks {
		tb.AcceptHook(h)
	}

	tb.report = verify.NewReport(b.pipeline.Name())
	tb.report.Scenario = b.scenario

	return tb
}

// geometry prefers the dimensions the pipeline reports and falls back to
// those of the first frame.
func (b Builder) geometry() (int, int) {
	var w, h int
	if len(b.frames) > 0 {
		w, h = b.frames[0].Width, b.frames[0].Height
	}

	if v, ok := b.pipeline.Param(dut.ParamWidth); ok {
		w = v
	}

	if v, ok := b.pipeline.Param(dut.ParamHeight); ok {
		h = v
	}

	return w, h
}
