package golden

// DelayLine returns what a registered delay of the given depth shows for the
// input stream: the first depth outputs come from the zeroed register chain
// and the rest repeat the input.
func DelayLine(in []int, depth int) []int {
	out := make([]int, len(in))
	for i := range in {
		if i >= depth {
			out[i] = in[i-depth]
		}
	}

	return out
}

// RowTaps models a multi-row line buffer. Tap k of n shows the input delayed
// by (n-1-k) rows, so the last tap is the current row.
func RowTaps(in []int, width, taps int) [][]int {
	out := make([][]int, taps)
	for k := 0; k < taps; k++ {
		out[k] = DelayLine(in, (taps-1-k)*width)
	}

	return out
}
