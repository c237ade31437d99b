// Package verify decides whether a captured output stream conforms to a
// reference stream.
//
// Verification of one run happens in two stages:
//
// 1. Alignment (align.go): the latency of a pipeline is not known in
// advance, so the captured stream is searched for the offset at which it
// best matches the reference.
//   - Candidate offsets range over a lag in [0, MaxOffset] and a lead in
//     [0, MaxLead], tried in order of magnitude.
//   - Each offset is scored by mean absolute error over up to four windows
//     spread across the overlap (start, two interior points, end).
//   - Unresolved captured samples never contribute to a score.
//   - The search stops once an offset scores zero error.
//
// 2. Comparison (compare.go): at the chosen offset every reference sample
// is compared with its captured counterpart.
//   - Unresolved samples are masked out.
//   - Samples within Border rows or columns of a frame edge are masked out.
//   - The maximum masked difference must not exceed Tolerance.
//   - A comparison with nothing left to compare fails.
//
// # Offset convention
//
// Usually the captured stream lags the reference. For an offset o,
// captured[i+o] is compared against reference[i]:
//
//	reference:      r0 r1 r2 r3 ...
//	captured:    x  x  c2 c3 c4 c5 ...   (o = 2)
//
// A pipeline that drops its first outputs leads instead. For a lead l,
// captured[i-l] is compared against reference[i] and the first l reference
// samples have no counterpart:
//
//	reference:   r0 r1 r2 r3 r4 ...
//	captured:          c0 c1 c2 ...      (l = 2)
//
// AlignmentResult.Shift folds both into one signed value.
// # Failures and warnings
//
// Every fatal outcome is a *Failure carrying a Kind, a message, structured
// details and, where useful, a dump of expected and actual samples. A
// drain timeout is a Warning instead: the run is still compared, and the
// report shows observed against expected counts so that a truncated
// capture cannot pass silently.
//
// # Usage Example
//
//	opts := verify.DefaultAlignOptions(width)
//	res, err := verify.Align(reference, captured, opts)
//	if err != nil {
//	    return err // *verify.Failure of kind ALIGNMENT_FAILURE
//	}
//
//	cmp, err := verify.Compare(reference, captured, res.Shift(),
//	    verify.CompareOptions{Width: width, Height: height, Border: 2, Tolerance: 1})
package verify

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pixelverify/axis"
)

// Kind categorizes failures and warnings
type Kind string

const (
	KindProtocolViolation    Kind = "PROTOCOL_VIOLATION"    // Sideband asserted without a transfer
	KindAlignmentFailure     Kind = "ALIGNMENT_FAILURE"     // No offset within tolerance
	KindToleranceViolation   Kind = "TOLERANCE_VIOLATION"   // Aligned, but a masked sample is off by too much
	KindDegenerateComparison Kind = "DEGENERATE_COMPARISON" // Nothing left to compare after masking
	KindDrainTimeout         Kind = "DRAIN_TIMEOUT"         // Cycle budget ran out while draining (warning)
)

// Failure is a fatal verification outcome.
type Failure struct {
	Kind     Kind                   // What went wrong
	Message  string                 // Human-readable description
	Details  map[string]interface{} // Additional structured data
	Expected []int                  // First reference samples, when relevant
	Actual   []axis.Logic           // Matching captured samples, when relevant
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NewFailure creates a failure with an empty details map.
func NewFailure(kind Kind, format string, args ...interface{}) *Failure {
	return &Failure{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}

	return nil, false
}

// Warning is a non-fatal verification outcome.
type Warning struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// DrainStatus records how the drain phase of a run ended.
type DrainStatus struct {
	ExpectedBeats int
	ObservedBeats int
	ExpectedLasts int
	ObservedLasts int
	ObservedUsers int
	Cycles        uint64 // Cycles since streaming started
	Budget        uint64 // Cycle budget, counted from the start of streaming
	Reason        string // "beats", "lasts" or "budget"
	TimedOut      bool
}

// Complete tells whether every expected beat or marker was observed.
func (d DrainStatus) Complete() bool {
	return d.ObservedBeats >= d.ExpectedBeats ||
		(d.ExpectedLasts > 0 && d.ObservedLasts >= d.ExpectedLasts)
}

// TimeoutWarning turns a timed-out drain into a warning.
func (d DrainStatus) TimeoutWarning() Warning {
	return Warning{
		Kind: KindDrainTimeout,
		Message: fmt.Sprintf(
			"cycle budget of %d exhausted with %d/%d beats and %d/%d end-of-line markers",
			d.Budget, d.ObservedBeats, d.ExpectedBeats,
			d.ObservedLasts, d.ExpectedLasts),
		Details: map[string]interface{}{
			"expected_beats": d.ExpectedBeats,
			"observed_beats": d.ObservedBeats,
			"expected_lasts": d.ExpectedLasts,
			"observed_lasts": d.ObservedLasts,
			"budget":         d.Budget,
		},
	}
}

// dumpSamples returns up to n reference samples starting at from and the
// captured samples they are compared with at the given offset.
func dumpSamples(
	reference []int,
	captured []axis.Logic,
	offset, from, n int,
) ([]int, []axis.Logic) {
	var (
		expected []int
		actual   []axis.Logic
	)

	for i := from; i < len(reference) && len(expected) < n; i++ {
		expected = append(expected, reference[i])

		if j := i + offset; j >= 0 && j < len(captured) {
			actual = append(actual, captured[j])
		} else {
			actual = append(actual, axis.X)
		}
	}

	return expected, actual
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
