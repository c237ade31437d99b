package verify

import (
	"sort"

	"github.com/sarchlab/pixelverify/axis"
)

// CompareOptions describes the frame geometry behind a stream and the
// tolerance it is held to.
type CompareOptions struct {
	Width     int
	Height    int
	Border    int // Rows and columns excluded at each frame edge
	Tolerance int // Largest acceptable absolute difference
	WorstN    int // Mismatches kept for the report
	DumpLen   int
}

// Mismatch is a compared sample whose value differs from the reference.
type Mismatch struct {
	Index    int // Reference index
	Frame    int
	Row      int
	Col      int
	Expected int
	Actual   int
	Diff     int
}

// Comparison summarizes a sample-by-sample comparison.
type Comparison struct {
	Offset     int // Lag of the capture, as in AlignmentResult
	Lead       int
	Overlap    int
	Compared   int
	Unresolved int
	Masked     int
	Mismatches int
	MaxDiff    int
	MeanDiff   float64
	Worst      []Mismatch
}

// Compare checks captured against reference at the given shift, where
// captured[i+shift] pairs with reference[i]. A negative shift means the
// capture is missing leading samples; those reference samples are not
// compared.
func Compare(
	reference []int,
	captured []axis.Logic,
	shift int,
	opts CompareOptions,
) (Comparison, error) {
	if opts.WorstN <= 0 {
		opts.WorstN = 8
	}

	if opts.DumpLen <= 0 {
		opts.DumpLen = 16
	}

	c := Comparison{}
	if shift >= 0 {
		c.Offset = shift
	} else {
		c.Lead = -shift
	}

	lo, hi := overlapRange(len(reference), len(captured), shift)
	c.Overlap = hi - lo

	var (
		sum        int
		mismatches []Mismatch
	)

	for i := lo; i < hi; i++ {
		frameIdx, row, col := opts.locate(i)

		if opts.inBorder(row, col) {
			c.Masked++
			continue
		}

		v, ok := captured[i+shift].Int()
		if !ok {
			c.Unresolved++
			continue
		}

		d := absInt(v - reference[i])
		c.Compared++
		sum += d

		if d > c.MaxDiff {
			c.MaxDiff = d
		}

		if d > 0 {
			mismatches = append(mismatches, Mismatch{
				Index:    i,
				Frame:    frameIdx,
				Row:      row,
				Col:      col,
				Expected: reference[i],
				Actual:   v,
				Diff:     d,
			})
		}
	}

	c.Mismatches = len(mismatches)
	c.Worst = worst(mismatches, opts.WorstN)

	if c.Compared == 0 {
		f := NewFailure(KindDegenerateComparison,
			"no comparable samples: overlap %d, masked %d, unresolved %d",
			c.Overlap, c.Masked, c.Unresolved)
		f.Details["overlap"] = c.Overlap
		f.Details["masked"] = c.Masked
		f.Details["unresolved"] = c.Unresolved

		return c, f
	}

	c.MeanDiff = float64(sum) / float64(c.Compared)

	if c.MaxDiff > opts.Tolerance {
		f := NewFailure(KindToleranceViolation,
			"max difference %d exceeds tolerance %d over %d compared samples (mean %.4f)",
			c.MaxDiff, opts.Tolerance, c.Compared, c.MeanDiff)
		f.Details["compared"] = c.Compared
		f.Details["max_diff"] = c.MaxDiff
		f.Details["mean_diff"] = c.MeanDiff
		f.Details["mismatches"] = c.Mismatches
		f.Details["worst"] = c.Worst
		from := lo
		if len(c.Worst) > 0 {
			from = c.Worst[0].Index
		}
		f.Expected, f.Actual = dumpSamples(
			reference, captured, shift, from, opts.DumpLen)

		return c, f
	}

	return c, nil
}

func (o CompareOptions) locate(i int) (frameIdx, row, col int) {
	if o.Width <= 0 || o.Height <= 0 {
		return 0, 0, i
	}

	size := o.Width * o.Height
	pos := i % size

	return i / size, pos / o.Width, pos % o.Width
}

func (o CompareOptions) inBorder(row, col int) bool {
	if o.Border <= 0 || o.Width <= 0 || o.Height <= 0 {
		return false
	}

	return row < o.Border || row >= o.Height-o.Border ||
		col < o.Border || col >= o.Width-o.Border
}

func worst(ms []Mismatch, n int) []Mismatch {
	sorted := make([]Mismatch, len(ms))
	copy(sorted, ms)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Diff > sorted[j].Diff
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return sorted
}
