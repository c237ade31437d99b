package config

import (
	"fmt"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pixelverify/bench"
	"github.com/sarchlab/pixelverify/dut"
	"github.com/sarchlab/pixelverify/frame"
	"github.com/sarchlab/pixelverify/golden"
	"github.com/sarchlab/pixelverify/trace"
	"github.com/sarchlab/pixelverify/util/valgen"
	"github.com/sarchlab/pixelverify/verify"
)

// PipelineBuilder returns a builder configured from the scenario.
func (s *Scenario) PipelineBuilder() PipelineBuilder {
	edge, _ := parseEdge(s.Pipeline.Edge)

	b := MakePipelineBuilder(s.Pipeline.Kind).
		WithWidth(s.Pipeline.Width).
		WithHeight(s.Pipeline.Height).
		WithLatency(s.Pipeline.Latency).
		WithRounding(s.rounding()).
		WithEdge(edge).
		WithDelay(s.Pipeline.Delay)

	if s.Fault != nil {
		b = b.WithFault(dut.Fault{
			SidebandCycle: s.Fault.SidebandCycle,
			CorruptBeat:   s.Fault.CorruptBeat,
			CorruptDelta:  s.Fault.CorruptDelta,
			StallFrom:     s.Fault.StallFrom,
			StallTo:       s.Fault.StallTo,
		})
	}

	return b
}

func (s *Scenario) rounding() bool {
	return s.Pipeline.Rounding == nil || *s.Pipeline.Rounding
}

// Frames generates the stimulus. Frames for an NMS pipeline carry a
// direction in the upper bits of every sample.
func (s *Scenario) Frames() ([]frame.Frame, error) {
	p, err := frame.ParsePattern(s.Stimulus.Pattern)
	if err != nil {
		return nil, err
	}

	frames, err := frame.GenerateSequence(
		s.Pipeline.Width, s.Pipeline.Height, p, s.Stimulus.Seed, s.Stimulus.Frames)
	if err != nil {
		return nil, err
	}

	if s.Pipeline.Kind != KindNMS {
		return frames, nil
	}

	for i, f := range frames {
		dirs, err := s.directions(int64(i))
		if err != nil {
			return nil, err
		}

		frames[i] = golden.PackFrame(f, dirs)
	}

	return frames, nil
}

func (s *Scenario) directions(index int64) (golden.DirectionGrid, error) {
	w, h := s.Pipeline.Width, s.Pipeline.Height

	d, random, err := parseDirection(s.Stimulus.Direction)
	if err != nil {
		return golden.DirectionGrid{}, err
	}

	grid := golden.UniformDirections(w, h, d)
	if !random {
		return grid, nil
	}

	gen := valgen.MakeRandomGen(s.Stimulus.Seed+index, 4)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			grid.Set(r, c, golden.Direction(gen()))
		}
	}

	return grid, nil
}

func parseDirection(name string) (golden.Direction, bool, error) {
	switch strings.ToLower(name) {
	case "random":
		return golden.DirEW, true, nil
	case "e-w", "ew":
		return golden.DirEW, false, nil
	case "ne-sw", "nesw":
		return golden.DirNESW, false, nil
	case "n-s", "ns":
		return golden.DirNS, false, nil
	case "nw-se", "nwse":
		return golden.DirNWSE, false, nil
	default:
		return 0, false, fmt.Errorf("unknown direction %q", name)
	}
}

// Reference computes the expected output stream for the given stimulus.
func (s *Scenario) Reference(frames []frame.Frame) ([]int, error) {
	switch s.Pipeline.Kind {
	case KindGaussian:
		k := golden.Gaussian5x5()
		for _, f := range frames {
			if err := f.RequireKernel(k.Size()); err != nil {
				return nil, err
			}
		}

		return frame.Flatten(golden.ConvolveAll(frames, k, s.rounding())...), nil
	case KindNMS:
		out := make([]frame.Frame, 0, len(frames))
		for _, f := range frames {
			mag, dirs := golden.UnpackFrame(f)

			suppressed, err := golden.NonMaxSuppress(mag, dirs)
			if err != nil {
				return nil, err
			}

			out = append(out, suppressed)
		}

		return frame.Flatten(out...), nil
	case KindLineBuffer:
		return frame.Flatten(frames...), nil
	default:
		return nil, fmt.Errorf("unknown pipeline kind %q", s.Pipeline.Kind)
	}
}

// TraceSignals returns the traced wires, all handshake wires by default.
func (s *Scenario) TraceSignals() []trace.Signal {
	if len(s.Trace.Signals) == 0 {
		return trace.HandshakeSignals()
	}

	var signals []trace.Signal
	for _, name := range s.Trace.Signals {
		if sig, ok := signalByName(name); ok {
			signals = append(signals, sig)
		}
	}

	return signals
}

// Build assembles the pipeline, the stimulus, the reference and the
// testbench. The recorder is nil unless tracing is enabled.
func (s *Scenario) Build(
	engine sim.Engine,
	tracing bool,
) (*bench.Testbench, *trace.Recorder, error) {
	frames, err := s.Frames()
	if err != nil {
		return nil, nil, fmt.Errorf("stimulus: %w", err)
	}

	reference, err := s.Reference(frames)
	if err != nil {
		return nil, nil, fmt.Errorf("reference: %w", err)
	}

	p := s.PipelineBuilder().Build(s.Name + ".DUT")

	align := verify.DefaultAlignOptions(s.Pipeline.Width)
	if s.Verify.MaxOffset > 0 {
		align.MaxOffset = s.Verify.MaxOffset
	}
	if s.Verify.SampleLen > 0 {
		align.SampleLen = s.Verify.SampleLen
	}
	if s.Verify.Windows > 0 {
		align.Windows = s.Verify.Windows
	}
	if s.Verify.MaxLead != nil {
		align.MaxLead = *s.Verify.MaxLead
	}
	if s.Verify.MinOverlap != nil {
		align.MinOverlap = max(*s.Verify.MinOverlap, 1)
	}
	align.Tolerance = *s.Verify.AlignTolerance

	b := bench.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithPipeline(p).
		WithFrames(frames...).
		WithReference(reference).
		WithConsumer(s.Consumer.ReadyPattern()).
		WithResetCycles(s.ResetCycles).
		WithDrainBudget(s.Drain.Factor, s.Drain.Floor).
		WithAlignOptions(align).
		WithTolerance(*s.Verify.Tolerance).
		WithBorder(*s.Verify.Border).
		WithStabilityCheck(s.Verify.StabilityCheck).
		WithScenario(s.Name)

	if s.Throttle != nil {
		b = b.WithThrottle(s.Throttle.ReadyPattern())
	}

	var rec *trace.Recorder
	if tracing {
		rec = trace.NewRecorder(s.Name, p.Name(), s.TraceSignals())
		b = b.WithHook(rec)
	}

	tb := b.Build("Bench")
	if rec != nil {
		rec.RunID = tb.Report().RunID
	}

	return tb, rec, nil
}
