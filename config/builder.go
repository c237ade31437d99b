// Package config describes a conformance run in a YAML scenario file and
// turns it into a pipeline, stimulus frames, a reference stream and a
// testbench.
package config

import (
	"fmt"

	"github.com/sarchlab/pixelverify/dut"
)

// Pipeline kinds.
const (
	KindGaussian   = "gaussian"
	KindNMS        = "nms"
	KindLineBuffer = "linebuffer"
)

// PipelineBuilder can build the behavioural pipelines.
type PipelineBuilder struct {
	kind          string
	width, height int
	latency       int
	rounding      bool
	edge          dut.EdgePolicy
	delay         int
	fault         *dut.Fault
}

// MakePipelineBuilder returns a builder for the given pipeline kind.
func MakePipelineBuilder(kind string) PipelineBuilder {
	return PipelineBuilder{kind: kind, rounding: true}
}

// WithWidth sets the frame width, or the line width of a line buffer.
func (b PipelineBuilder) WithWidth(width int) PipelineBuilder {
	b.width = width
	return b
}

// WithHeight sets the frame height.
func (b PipelineBuilder) WithHeight(height int) PipelineBuilder {
	b.height = height
	return b
}

// WithLatency sets the register latency of the stage.
func (b PipelineBuilder) WithLatency(latency int) PipelineBuilder {
	b.latency = latency
	return b
}

// WithRounding sets whether the Gaussian adds half an LSB before shifting.
func (b PipelineBuilder) WithRounding(rounding bool) PipelineBuilder {
	b.rounding = rounding
	return b
}

// WithEdge sets how the Gaussian reads outside the frame.
func (b PipelineBuilder) WithEdge(edge dut.EdgePolicy) PipelineBuilder {
	b.edge = edge
	return b
}

// WithDelay sets the depth of a line buffer.
func (b PipelineBuilder) WithDelay(delay int) PipelineBuilder {
	b.delay = delay
	return b
}

// WithFault wraps the pipeline with a fault.
func (b PipelineBuilder) WithFault(f dut.Fault) PipelineBuilder {
	b.fault = &f
	return b
}

// Build creates the pipeline.
func (b PipelineBuilder) Build(name string) dut.Pipeline {
	var p dut.Pipeline

	switch b.kind {
	case KindGaussian:
		p = dut.NewGaussian(name, dut.GaussianConfig{
			Width:    b.width,
			Height:   b.height,
			Latency:  b.latency,
			Rounding: b.rounding,
			Edge:     b.edge,
		})
	case KindNMS:
		p = dut.NewNMS(name, dut.NMSConfig{
			Width:   b.width,
			Height:  b.height,
			Latency: b.latency,
		})
	case KindLineBuffer:
		p = dut.NewLineBuffer(name, dut.LineBufferConfig{
			LineWidth: b.width,
			Height:    b.height,
			Delay:     b.delay,
			Latency:   b.latency,
		})
	default:
		panic(fmt.Sprintf("unknown pipeline kind %q", b.kind))
	}

	if b.fault != nil {
		p = dut.Inject(p, *b.fault)
	}

	return p
}
