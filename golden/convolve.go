package golden

import (
	"fmt"

	"github.com/sarchlab/pixelverify/frame"
)

// Window is a square neighbourhood of samples centred on one pixel.
type Window struct {
	Row     int
	Col     int
	Samples [][]int
}

// Size is the side length of the window.
func (w Window) Size() int {
	return len(w.Samples)
}

// WindowAt extracts a size x size window centred on (row, col). Positions
// outside the frame take the value of the nearest edge sample.
func WindowAt(f frame.Frame, row, col, size int) Window {
	half := size / 2
	w := Window{Row: row, Col: col, Samples: make([][]int, size)}

	for dr := 0; dr < size; dr++ {
		w.Samples[dr] = make([]int, size)
		for dc := 0; dc < size; dc++ {
			w.Samples[dr][dc] = f.Clamped(row+dr-half, col+dc-half)
		}
	}

	return w
}

// Dot multiplies the window by the kernel element-wise and adds the
// products.
func Dot(w Window, k Kernel) (int64, error) {
	if w.Size() != k.Size() {
		return 0, fmt.Errorf("window size %d does not match kernel size %d",
			w.Size(), k.Size())
	}

	var sum int64
	for r, row := range k.Coeffs {
		if len(w.Samples[r]) != len(row) {
			return 0, fmt.Errorf("window row %d has %d samples, expected %d",
				r, len(w.Samples[r]), len(row))
		}

		for c, coeff := range row {
			sum = MACStep(int64(w.Samples[r][c]), int64(coeff), sum)
		}
	}

	return sum, nil
}

// SingleWindow computes one output pixel from an explicit window.
func SingleWindow(w Window, k Kernel, rounding bool) (int, error) {
	sum, err := Dot(w, k)
	if err != nil {
		return 0, err
	}

	return k.Normalize(sum, rounding), nil
}

// Convolve filters a whole frame with replicate-edge borders. The output has
// the same size as the input.
func Convolve(f frame.Frame, k Kernel, rounding bool) frame.Frame {
	out := frame.MustNew(f.Width, f.Height)

	for r := 0; r < f.Height; r++ {
		for c := 0; c < f.Width; c++ {
			v, err := SingleWindow(WindowAt(f, r, c, k.Size()), k, rounding)
			if err != nil {
				panic(err)
			}
			out.Set(r, c, v)
		}
	}

	return out
}

// ConvolveAll filters each frame of a sequence.
func ConvolveAll(frames []frame.Frame, k Kernel, rounding bool) []frame.Frame {
	out := make([]frame.Frame, len(frames))
	for i, f := range frames {
		out[i] = Convolve(f, k, rounding)
	}

	return out
}
