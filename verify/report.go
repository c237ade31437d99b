package verify

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/pixelverify/axis"
)

// Verdict is the final outcome of a run.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

// Report represents a complete verification report
type Report struct {
	RunID    string
	Scenario string
	Pipeline string
	Width    int
	Height   int
	Frames   int

	FinalState  string
	Transitions []string
	Verdict     Verdict

	Cycles          uint64
	InputBeats      int
	InputStalls     int
	OutputStalls    int
	UnresolvedBeats int

	Drain      DrainStatus
	Alignment  *AlignmentResult
	Comparison *Comparison
	Failure    *Failure
	Warnings   []Warning
}

// NewReport creates an empty report with a fresh run ID.
func NewReport(pipeline string) *Report {
	return &Report{
		RunID:    uuid.Must(uuid.NewV7()).String(),
		Pipeline: pipeline,
	}
}

// Passed tells whether the run ended in PASS.
func (r *Report) Passed() bool {
	return r.Verdict == VerdictPass
}

// Warn appends a warning.
func (r *Report) Warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// WriteReport writes a formatted report to a writer
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "PIXEL PIPELINE CONFORMANCE REPORT")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "\nRun:      %s\n", r.RunID)
	if r.Scenario != "" {
		fmt.Fprintf(w, "Scenario: %s\n", r.Scenario)
	}
	fmt.Fprintf(w, "Pipeline: %s (%dx%d, %d frame(s))\n",
		r.Pipeline, r.Width, r.Height, r.Frames)

	// STAGE 1: STREAMING
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STREAMING AND DRAIN")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Cycles: %d\n", r.Cycles)
	fmt.Fprintf(w, "Input beats: %d (%d cycles held by backpressure)\n",
		r.InputBeats, r.InputStalls)
	fmt.Fprintf(w, "Output stalls: %d cycles\n", r.OutputStalls)
	fmt.Fprintf(w, "Output beats: %d/%d\n",
		r.Drain.ObservedBeats, r.Drain.ExpectedBeats)
	fmt.Fprintf(w, "End-of-line markers: %d/%d\n",
		r.Drain.ObservedLasts, r.Drain.ExpectedLasts)
	fmt.Fprintf(w, "Start-of-frame markers: %d\n", r.Drain.ObservedUsers)
	fmt.Fprintf(w, "Unresolved output beats: %d\n", r.UnresolvedBeats)

	if r.Drain.TimedOut {
		fmt.Fprintf(w, "⚠ Drain budget of %d cycles exhausted\n", r.Drain.Budget)
	} else if r.Drain.Reason != "" {
		fmt.Fprintf(w, "✓ Drain complete (%s)\n", r.Drain.Reason)
	}

	// STAGE 2: ALIGNMENT
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: ALIGNMENT")
	fmt.Fprintln(w, separator)

	if r.Alignment == nil {
		fmt.Fprintln(w, "Not reached")
	} else {
		a := r.Alignment
		if a.Candidates == 0 {
			fmt.Fprintln(w, "No candidate offset")
		} else {
			if a.Lead > 0 {
				fmt.Fprintf(w, "Lead: %d beats (leading outputs missing)\n", a.Lead)
			} else {
				fmt.Fprintf(w, "Offset: %d beats\n", a.Offset)
			}
			fmt.Fprintf(w, "Mean error: %.4f\n", a.Error)
			fmt.Fprintf(w, "Candidates scored: %d\n", a.Candidates)
			fmt.Fprintf(w, "Windows: %v x %d samples\n", a.Windows, a.WindowLen)
		}
	}

	// STAGE 3: COMPARISON
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 3: COMPARISON")
	fmt.Fprintln(w, separator)

	if r.Comparison == nil {
		fmt.Fprintln(w, "Not reached")
	} else {
		c := r.Comparison
		fmt.Fprintf(w, "Compared: %d (masked %d, unresolved %d)\n",
			c.Compared, c.Masked, c.Unresolved)
		fmt.Fprintf(w, "Max diff: %d\n", c.MaxDiff)
		fmt.Fprintf(w, "Mean diff: %.4f\n", c.MeanDiff)
		fmt.Fprintf(w, "Mismatching samples: %d\n", c.Mismatches)

		if len(c.Worst) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, mismatchTable(c.Worst))
		}
	}

	// FAILURE
	if r.Failure != nil {
		fmt.Fprintln(w, "\n"+separator)
		fmt.Fprintf(w, "FAILURE: %s\n", r.Failure.Kind)
		fmt.Fprintln(w, separator)
		fmt.Fprintln(w, r.Failure.Message)

		for _, k := range sortedKeys(r.Failure.Details) {
			if k == "worst" {
				continue
			}
			fmt.Fprintf(w, "  %s: %v\n", k, r.Failure.Details[k])
		}

		if len(r.Failure.Expected) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, sampleTable(r.Failure.Expected, r.Failure.Actual))
		}
	}

	// WARNINGS
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\nWARNINGS (%d):\n", len(r.Warnings))
		fmt.Fprintln(w, dash)
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warn)
		}
	}

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "States: %s\n", strings.Join(r.Transitions, " -> "))
	if r.Passed() {
		fmt.Fprintln(w, "✓ PASS")
	} else {
		reason := "run did not finish"
		if r.Failure != nil {
			reason = string(r.Failure.Kind)
		}
		fmt.Fprintf(w, "✗ FAIL (%s)\n", reason)
	}

	fmt.Fprintln(w)
}

// SaveReportToFile saves the report to a file
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}

func mismatchTable(ms []Mismatch) string {
	t := table.NewWriter()
	t.SetTitle("Worst mismatches")
	t.AppendHeader(table.Row{"Index", "Frame", "Row", "Col", "Expected", "Actual", "Diff"})

	for _, m := range ms {
		t.AppendRow(table.Row{m.Index, m.Frame, m.Row, m.Col, m.Expected, m.Actual, m.Diff})
	}

	return t.Render()
}

func sampleTable(expected []int, actual []axis.Logic) string {
	t := table.NewWriter()
	t.SetTitle("Expected vs actual")
	t.AppendHeader(table.Row{"#", "Expected", "Actual"})

	for i, e := range expected {
		a := axis.X
		if i < len(actual) {
			a = actual[i]
		}
		t.AppendRow(table.Row{i, e, a.String()})
	}

	return t.Render()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
