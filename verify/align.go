package verify

import (
	"log/slog"
	"math"

	"github.com/sarchlab/pixelverify/axis"
)

// AlignOptions controls the offset search.
type AlignOptions struct {
	MaxOffset  int     // Largest lag searched
	MaxLead    int     // Largest lead searched
	SampleLen  int     // Samples per window
	Windows    int     // Number of windows spread across the overlap
	MinOverlap int     // Smallest overlap that makes an offset a candidate (0: a quarter of the shorter stream)
	Tolerance  float64 // Largest acceptable mean absolute error
	DumpLen    int     // Samples included in a failure dump
}

// DefaultAlignOptions returns the search settings used for a frame of the
// given width: up to two lines plus 256 beats in either direction.
func DefaultAlignOptions(width int) AlignOptions {
	return AlignOptions{
		MaxOffset: 2*width + 256,
		MaxLead:   2*width + 256,
		SampleLen: 2048,
		Windows:   4,
		Tolerance: 1,
		DumpLen:   16,
	}
}

func (o AlignOptions) withDefaults(refLen, capLen int) AlignOptions {
	if o.SampleLen <= 0 {
		o.SampleLen = 2048
	}

	if o.Windows <= 0 {
		o.Windows = 4
	}

	if o.MaxOffset < 0 {
		o.MaxOffset = 0
	}

	if o.MaxLead < 0 {
		o.MaxLead = 0
	}

	if o.MinOverlap <= 0 {
		o.MinOverlap = max((min(refLen, capLen)+3)/4, 1)
	}

	if o.MinOverlap > refLen {
		o.MinOverlap = refLen
	}

	if o.DumpLen <= 0 {
		o.DumpLen = 16
	}

	return o
}

// AlignmentResult is the offset chosen by Align and its residual error. At
// most one of Offset and Lead is non-zero.
type AlignmentResult struct {
	Offset     int     // Captured beats that precede reference sample 0
	Lead       int     // Reference samples missing before captured beat 0
	Error      float64 // Mean absolute error over the scored windows
	Overlap    int     // Reference samples that have a captured counterpart
	WindowLen  int     // Samples per window
	Windows    []int   // Window starts (reference index) at the chosen offset
	Candidates int     // Offsets that were scored
}

// Shift is the signed distance from a reference index to its captured
// counterpart: captured[i+Shift] pairs with reference[i].
func (r AlignmentResult) Shift() int {
	return r.Offset - r.Lead
}

func (r *AlignmentResult) setShift(shift int) {
	r.Offset, r.Lead = 0, 0
	if shift >= 0 {
		r.Offset = shift
	} else {
		r.Lead = -shift
	}
}

// Align searches for the offset at which captured best matches reference.
// Offsets are tried in order of magnitude, the lag before the lead.
func Align(
	reference []int,
	captured []axis.Logic,
	opts AlignOptions,
) (AlignmentResult, error) {
	if len(reference) == 0 {
		return AlignmentResult{}, NewFailure(KindAlignmentFailure,
			"empty reference stream")
	}

	opts = opts.withDefaults(len(reference), len(captured))
	windowLen := min(opts.SampleLen, opts.MinOverlap)

	best := AlignmentResult{Error: math.Inf(1), WindowLen: windowLen}
	candidates := 0

	for k := 0; k <= max(opts.MaxOffset, opts.MaxLead); k++ {
		for _, shift := range opts.shiftsAt(k) {
			lo, hi := overlapRange(len(reference), len(captured), shift)
			if hi-lo < opts.MinOverlap {
				continue
			}

			starts := spreadWindows(hi-lo, windowLen, opts.Windows)
			for i := range starts {
				starts[i] += lo
			}

			score, ok := scoreShift(reference, captured, shift, starts, windowLen)
			if !ok {
				continue
			}

			candidates++

			if score < best.Error {
				best.setShift(shift)
				best.Error = score
				best.Overlap = hi - lo
				best.Windows = starts
			}
		}

		if best.Error == 0 {
			break
		}
	}

	best.Candidates = candidates

	if candidates == 0 {
		best.Error = 0
		f := NewFailure(KindAlignmentFailure,
			"no candidate offset in [-%d, %d]: captured %d beats, reference %d, minimum overlap %d",
			opts.MaxLead, opts.MaxOffset, len(captured), len(reference), opts.MinOverlap)
		f.Details["captured_beats"] = len(captured)
		f.Details["reference_len"] = len(reference)
		f.Details["min_overlap"] = opts.MinOverlap
		f.Expected, f.Actual = dumpSamples(reference, captured, 0, 0, opts.DumpLen)

		return best, f
	}

	slog.Debug("Alignment",
		"Offset", best.Offset, "Lead", best.Lead,
		"Error", best.Error, "Candidates", candidates)

	if best.Error > opts.Tolerance {
		f := NewFailure(KindAlignmentFailure,
			"best offset %d (lead %d) has mean error %.3f above tolerance %.3f",
			best.Offset, best.Lead, best.Error, opts.Tolerance)
		f.Details["best_offset"] = best.Offset
		f.Details["best_lead"] = best.Lead
		f.Details["best_error"] = best.Error
		f.Details["candidates"] = candidates
		lo, _ := overlapRange(len(reference), len(captured), best.Shift())
		f.Expected, f.Actual = dumpSamples(
			reference, captured, best.Shift(), lo, opts.DumpLen)

		return best, f
	}

	return best, nil
}

func (o AlignOptions) shiftsAt(k int) []int {
	if k == 0 {
		return []int{0}
	}

	var shifts []int
	if k <= o.MaxOffset {
		shifts = append(shifts, k)
	}
	if k <= o.MaxLead {
		shifts = append(shifts, -k)
	}

	return shifts
}

// overlapRange returns the reference indices [lo, hi) that have a captured
// counterpart at the given shift.
func overlapRange(refLen, capLen, shift int) (lo, hi int) {
	lo = max(0, -shift)
	hi = min(refLen, capLen-shift)
	if hi < lo {
		hi = lo
	}

	return lo, hi
}

// spreadWindows places up to n windows of length l at the start, interior
// points and end of a span, dropping duplicates.
func spreadWindows(span, l, n int) []int {
	last := span - l
	if last < 0 {
		last = 0
	}

	if n == 1 {
		return []int{0}
	}

	var starts []int
	for i := 0; i < n; i++ {
		s := last * i / (n - 1)
		if len(starts) > 0 && starts[len(starts)-1] == s {
			continue
		}
		starts = append(starts, s)
	}

	return starts
}

func scoreShift(
	reference []int,
	captured []axis.Logic,
	shift int,
	starts []int,
	l int,
) (float64, bool) {
	total := 0.0
	scored := 0

	for _, s := range starts {
		sum, n := 0, 0
		for i := s; i < s+l && i < len(reference); i++ {
			j := i + shift
			if j < 0 || j >= len(captured) {
				continue
			}

			v, ok := captured[j].Int()
			if !ok {
				continue
			}

			sum += absInt(v - reference[i])
			n++
		}

		if n == 0 {
			continue
		}

		total += float64(sum) / float64(n)
		scored++
	}

	if scored == 0 {
		return 0, false
	}

	return total / float64(scored), true
}
