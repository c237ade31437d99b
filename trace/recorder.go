package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pixelverify/axis"
)

// Payload is the serialized form of a trace.
type Payload struct {
	Test     string                   `json:"test" cbor:"test"`
	Toplevel string                   `json:"toplevel" cbor:"toplevel"`
	Clock    string                   `json:"clock" cbor:"clock"`
	RunID    string                   `json:"run_id,omitempty" cbor:"run_id,omitempty"`
	Signals  []string                 `json:"signals" cbor:"signals"`
	Samples  []map[string]interface{} `json:"samples" cbor:"samples"`
}

// Recorder is a hook that collects probes into a trace.
type Recorder struct {
	Test     string
	Toplevel string
	Clock    string
	RunID    string

	signals []Signal
	last    map[string]axis.Logic
	samples []map[string]interface{}
}

// NewRecorder creates a recorder for the given signal table.
func NewRecorder(test, toplevel string, signals []Signal) *Recorder {
	table := make([]Signal, len(signals))
	copy(table, signals)

	return &Recorder{
		Test:     test,
		Toplevel: toplevel,
		Clock:    "clk",
		signals:  table,
		last:     make(map[string]axis.Logic),
	}
}

// Func implements sim.Hook.
func (r *Recorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosCycle {
		return
	}

	probe, ok := ctx.Item.(Probe)
	if !ok {
		return
	}

	r.Record(probe)
}

// Record adds the declared signals of one probe to the trace.
func (r *Recorder) Record(p Probe) {
	sample := make(map[string]interface{})

	for _, s := range r.signals {
		v, ok := p.Values[s.Name]
		if !ok {
			continue
		}

		prev, seen := r.last[s.Name]
		if s.Policy == CaptureOnChange && seen && prev == v {
			continue
		}

		r.last[s.Name] = v
		sample[s.Name] = encode(v)
	}

	if len(sample) == 0 {
		return
	}

	sample["cycle"] = p.Cycle
	r.samples = append(r.samples, sample)
}

// Len is the number of recorded samples.
func (r *Recorder) Len() int {
	return len(r.samples)
}

// Payload returns the trace in serializable form.
func (r *Recorder) Payload() Payload {
	names := make([]string, len(r.signals))
	for i, s := range r.signals {
		names[i] = s.Name
	}

	samples := r.samples
	if samples == nil {
		samples = []map[string]interface{}{}
	}

	return Payload{
		Test:     r.Test,
		Toplevel: r.Toplevel,
		Clock:    r.Clock,
		RunID:    r.RunID,
		Signals:  names,
		Samples:  samples,
	}
}

// DumpJSON writes the trace as indented JSON.
func (r *Recorder) DumpJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r.Payload(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}

	data = append(data, '\n')
	_, err = w.Write(data)

	return err
}

// DumpCBOR writes the trace in canonical CBOR.
func (r *Recorder) DumpCBOR(w io.Writer) error {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}

	data, err := em.Marshal(r.Payload())
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}

	_, err = w.Write(data)

	return err
}

// Save writes the trace to a file. A .cbor extension selects CBOR, any
// other extension JSON.
func (r *Recorder) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer file.Close()

	if filepath.Ext(path) == ".cbor" {
		return r.DumpCBOR(file)
	}

	return r.DumpJSON(file)
}

func encode(v axis.Logic) interface{} {
	if !v.Known {
		return Unresolved
	}

	return v.V
}
