package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/pixelverify/bench"
	"github.com/sarchlab/pixelverify/dut"
	"github.com/sarchlab/pixelverify/frame"
	"github.com/sarchlab/pixelverify/trace"
)

// Scenario is one conformance run.
type Scenario struct {
	// Name identifies the scenario in reports and traces.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description,omitempty"`

	Pipeline PipelineConfig `yaml:"pipeline"`

	// Fault, when present, wraps the pipeline with a deliberate
	// misbehaviour. Used to check that the harness catches it.
	Fault *FaultConfig `yaml:"fault,omitempty"`

	Stimulus StimulusConfig `yaml:"stimulus"`

	// Consumer drives the output ready wire. Defaults to always ready.
	Consumer ReadyConfig `yaml:"consumer,omitempty"`

	// Throttle limits how often the driver presents a new input beat.
	Throttle *ReadyConfig `yaml:"throttle,omitempty"`

	ResetCycles int         `yaml:"reset_cycles,omitempty"`
	Drain       DrainConfig `yaml:"drain,omitempty"`

	Verify VerifyConfig `yaml:"verify,omitempty"`
	Trace  TraceConfig  `yaml:"trace,omitempty"`
}

// PipelineConfig selects and parameterizes the design under test.
type PipelineConfig struct {
	Kind     string `yaml:"kind"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Latency  int    `yaml:"latency,omitempty"`
	Rounding *bool  `yaml:"rounding,omitempty"`
	Edge     string `yaml:"edge,omitempty"`
	Delay    int    `yaml:"delay,omitempty"`
}

// FaultConfig mirrors dut.Fault.
type FaultConfig struct {
	SidebandCycle uint64 `yaml:"sideband_cycle,omitempty"`
	CorruptBeat   int    `yaml:"corrupt_beat,omitempty"`
	CorruptDelta  int    `yaml:"corrupt_delta,omitempty"`
	StallFrom     uint64 `yaml:"stall_from,omitempty"`
	StallTo       uint64 `yaml:"stall_to,omitempty"`
}

// StimulusConfig describes the input frames.
type StimulusConfig struct {
	Pattern string `yaml:"pattern"`
	Seed    int64  `yaml:"seed,omitempty"`
	Frames  int    `yaml:"frames,omitempty"`

	// Direction applies to NMS pipelines: e-w, ne-sw, n-s, nw-se or
	// random.
	Direction string `yaml:"direction,omitempty"`
}

// ReadyConfig describes a ready pattern.
type ReadyConfig struct {
	// Pattern is always, random, periodic or scripted.
	Pattern     string  `yaml:"pattern,omitempty"`
	Probability float64 `yaml:"probability,omitempty"`
	Seed        int64   `yaml:"seed,omitempty"`
	Period      uint64  `yaml:"period,omitempty"`
	Stall       uint64  `yaml:"stall,omitempty"`
	Script      []bool  `yaml:"script,omitempty"`
}

// DrainConfig sizes the drain budget.
type DrainConfig struct {
	Factor uint64 `yaml:"factor,omitempty"`
	Floor  uint64 `yaml:"floor,omitempty"`
}

// VerifyConfig holds the alignment and comparison settings.
type VerifyConfig struct {
	Tolerance      *int    `yaml:"tolerance,omitempty"`
	Border         *int    `yaml:"border,omitempty"`
	MaxOffset      int     `yaml:"max_offset,omitempty"`
	SampleLen      int     `yaml:"sample_len,omitempty"`
	Windows        int     `yaml:"windows,omitempty"`
	StabilityCheck bool    `yaml:"stability_check,omitempty"`

	// MaxLead bounds the search for pipelines that drop leading outputs.
	// Zero searches lags only. Defaults to MaxOffset's default.
	MaxLead *int `yaml:"max_lead,omitempty"`

	// MinOverlap is the smallest overlap scored during alignment. Zero
	// scores every offset that overlaps at all. Defaults to a quarter of
	// the shorter stream.
	MinOverlap *int `yaml:"min_overlap,omitempty"`

	// AlignTolerance is the largest mean error an offset may have. Zero
	// requires an exact match.
	AlignTolerance *float64 `yaml:"align_tolerance,omitempty"`
}

// TraceConfig selects the traced wires and where the trace is written.
type TraceConfig struct {
	Path    string   `yaml:"path,omitempty"`
	Signals []string `yaml:"signals,omitempty"`
}

// Ready patterns.
const (
	ReadyAlways   = "always"
	ReadyRandom   = "random"
	ReadyPeriodic = "periodic"
	ReadyScripted = "scripted"
)

// Load reads, defaults and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a scenario. Unknown fields are
// rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	s.ApplyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &s, nil
}

// ApplyDefaults fills in every setting left out of the file.
func (s *Scenario) ApplyDefaults() {
	if s.Pipeline.Rounding == nil {
		rounding := true
		s.Pipeline.Rounding = &rounding
	}

	if s.Pipeline.Edge == "" {
		s.Pipeline.Edge = "replicate"
	}

	if s.Stimulus.Pattern == "" {
		s.Stimulus.Pattern = string(frame.PatternRandom)
	}

	if s.Stimulus.Frames == 0 {
		s.Stimulus.Frames = 1
	}

	if s.Pipeline.Kind == KindNMS && s.Stimulus.Direction == "" {
		s.Stimulus.Direction = "random"
	}

	if s.Consumer.Pattern == "" {
		s.Consumer.Pattern = ReadyAlways
	}

	if s.ResetCycles == 0 {
		s.ResetCycles = bench.DefaultResetCycles
	}

	if s.Drain.Factor == 0 {
		s.Drain.Factor = bench.BudgetFactor
	}

	if s.Drain.Floor == 0 {
		s.Drain.Floor = bench.BudgetFloor
	}

	if s.Verify.Tolerance == nil {
		tolerance := 1
		s.Verify.Tolerance = &tolerance
	}

	if s.Verify.Border == nil {
		border := kernelHalfWidth(s.Pipeline.Kind)
		s.Verify.Border = &border
	}

	if s.Verify.AlignTolerance == nil {
		tolerance := 1.0
		s.Verify.AlignTolerance = &tolerance
	}
}

// kernelHalfWidth is the number of edge rows and columns a kernel of the
// given pipeline kind cannot compute from real neighbours.
func kernelHalfWidth(kind string) int {
	switch kind {
	case KindGaussian:
		return 2
	case KindNMS:
		return 1
	default:
		return 0
	}
}

// Validate checks that the scenario describes a run that can be carried
// out.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if err := s.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := s.Stimulus.validate(s.Pipeline.Kind); err != nil {
		return fmt.Errorf("stimulus: %w", err)
	}

	if err := s.Consumer.validate(); err != nil {
		return fmt.Errorf("consumer: %w", err)
	}

	if s.Throttle != nil {
		if err := s.Throttle.validate(); err != nil {
			return fmt.Errorf("throttle: %w", err)
		}
	}

	if s.ResetCycles < 1 {
		return fmt.Errorf("reset_cycles must be at least 1, got %d", s.ResetCycles)
	}

	if *s.Verify.Tolerance < 0 {
		return fmt.Errorf("verify: tolerance must not be negative")
	}

	if b := *s.Verify.Border; b < 0 || 2*b >= min(s.Pipeline.Width, s.Pipeline.Height) {
		return fmt.Errorf("verify: border %d leaves nothing to compare in a %dx%d frame",
			b, s.Pipeline.Width, s.Pipeline.Height)
	}

	if s.Verify.MaxLead != nil && *s.Verify.MaxLead < 0 {
		return fmt.Errorf("verify: max_lead must not be negative")
	}

	if s.Verify.MinOverlap != nil && *s.Verify.MinOverlap < 0 {
		return fmt.Errorf("verify: min_overlap must not be negative")
	}

	if *s.Verify.AlignTolerance < 0 {
		return fmt.Errorf("verify: align_tolerance must not be negative")
	}

	for _, name := range s.Trace.Signals {
		if _, ok := signalByName(name); !ok {
			return fmt.Errorf("trace: unknown signal %q", name)
		}
	}

	return nil
}

func (p PipelineConfig) validate() error {
	switch p.Kind {
	case KindGaussian, KindNMS, KindLineBuffer:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", p.Kind)
	}

	if p.Width < 1 || p.Height < 1 {
		return fmt.Errorf("frame must be at least 1x1, got %dx%d", p.Width, p.Height)
	}

	if p.Kind != KindLineBuffer && (p.Width < 5 || p.Height < 5) {
		return fmt.Errorf("%s needs a frame of at least 5x5, got %dx%d",
			p.Kind, p.Width, p.Height)
	}

	if p.Latency < 0 || p.Delay < 0 {
		return fmt.Errorf("latency and delay must not be negative")
	}

	if _, err := parseEdge(p.Edge); err != nil {
		return err
	}

	return nil
}

func (st StimulusConfig) validate(kind string) error {
	if _, err := frame.ParsePattern(st.Pattern); err != nil {
		return err
	}

	if st.Frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", st.Frames)
	}

	if kind == KindNMS {
		if _, _, err := parseDirection(st.Direction); err != nil {
			return err
		}
	}

	return nil
}

func (r ReadyConfig) validate() error {
	switch r.Pattern {
	case ReadyAlways, ReadyScripted:
	case ReadyRandom:
		if r.Probability <= 0 || r.Probability > 1 {
			return fmt.Errorf("probability must be in (0, 1], got %g", r.Probability)
		}
	case ReadyPeriodic:
		if r.Period == 0 || r.Stall >= r.Period {
			return fmt.Errorf("stall %d must be shorter than period %d", r.Stall, r.Period)
		}
	default:
		return fmt.Errorf("unknown ready pattern %q", r.Pattern)
	}

	return nil
}

// ReadyPattern creates the bench pattern described by r.
func (r ReadyConfig) ReadyPattern() bench.ReadyPattern {
	switch r.Pattern {
	case ReadyRandom:
		return bench.RandomReady(r.Probability, r.Seed)
	case ReadyPeriodic:
		return bench.PeriodicStall{Period: r.Period, Stall: r.Stall}
	case ReadyScripted:
		return bench.Scripted(r.Script)
	default:
		return bench.AlwaysReady{}
	}
}

func parseEdge(name string) (dut.EdgePolicy, error) {
	switch name {
	case "", "replicate":
		return dut.EdgeReplicate, nil
	case "zero":
		return dut.EdgeZero, nil
	default:
		return 0, fmt.Errorf("unknown edge policy %q", name)
	}
}

func signalByName(name string) (trace.Signal, bool) {
	for _, s := range trace.HandshakeSignals() {
		if s.Name == name {
			return s, true
		}
	}

	return trace.Signal{}, false
}
