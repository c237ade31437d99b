// Package frame defines the pixel grids that are streamed through a
// pipeline and the test patterns used to fill them.
package frame

import (
	"fmt"
	"strings"
)

// Frame is a Width x Height grid of unsigned samples stored in row-major
// order.
type Frame struct {
	Width  int
	Height int
	Pix    []uint16
}

// New creates a zero-filled frame.
func New(width, height int) (Frame, error) {
	if width < 1 || height < 1 {
		return Frame{}, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	return Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint16, width*height),
	}, nil
}

// MustNew is New that panics on an invalid size.
func MustNew(width, height int) Frame {
	f, err := New(width, height)
	if err != nil {
		panic(err)
	}

	return f
}

// FromRows builds a frame from a slice of equal-length rows.
func FromRows(rows [][]int) (Frame, error) {
	if len(rows) == 0 {
		return Frame{}, fmt.Errorf("no rows")
	}

	f, err := New(len(rows[0]), len(rows))
	if err != nil {
		return Frame{}, err
	}

	for r, row := range rows {
		if len(row) != f.Width {
			return Frame{}, fmt.Errorf(
				"row %d has %d samples, expected %d", r, len(row), f.Width)
		}

		for c, v := range row {
			f.Set(r, c, v)
		}
	}

	return f, nil
}

// RequireKernel checks that the frame is wide and tall enough for a square
// kernel of the given size.
func (f Frame) RequireKernel(size int) error {
	if f.Width < size || f.Height < size {
		return fmt.Errorf("frame %dx%d is smaller than kernel size %d",
			f.Width, f.Height, size)
	}

	return nil
}

// Len is the number of samples in the frame.
func (f Frame) Len() int {
	return f.Width * f.Height
}

// At returns the sample at the given position.
func (f Frame) At(row, col int) int {
	return int(f.Pix[row*f.Width+col])
}

// Set writes a sample. Values outside the uint16 range are clipped.
func (f Frame) Set(row, col, v int) {
	if v < 0 {
		v = 0
	} else if v > 0xffff {
		v = 0xffff
	}

	f.Pix[row*f.Width+col] = uint16(v)
}

// Clamped reads with replicate-edge semantics: coordinates outside the frame
// are clamped to the nearest edge sample.
func (f Frame) Clamped(row, col int) int {
	return f.At(clamp(row, 0, f.Height-1), clamp(col, 0, f.Width-1))
}

// InBounds tells whether the position lies inside the frame.
func (f Frame) InBounds(row, col int) bool {
	return row >= 0 && row < f.Height && col >= 0 && col < f.Width
}

// Flat returns the samples in row-major order.
func (f Frame) Flat() []int {
	out := make([]int, len(f.Pix))
	for i, v := range f.Pix {
		out[i] = int(v)
	}

	return out
}

// Clone returns a deep copy.
func (f Frame) Clone() Frame {
	pix := make([]uint16, len(f.Pix))
	copy(pix, f.Pix)

	return Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

// Equal tells whether two frames have the same size and samples.
func (f Frame) Equal(o Frame) bool {
	if f.Width != o.Width || f.Height != o.Height || len(f.Pix) != len(o.Pix) {
		return false
	}

	for i := range f.Pix {
		if f.Pix[i] != o.Pix[i] {
			return false
		}
	}

	return true
}

func (f Frame) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Frame %dx%d\n", f.Width, f.Height)
	for r := 0; r < f.Height; r++ {
		for c := 0; c < f.Width; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%3d", f.At(r, c))
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// Flatten concatenates the samples of several frames in stream order.
func Flatten(frames ...Frame) []int {
	var out []int
	for _, f := range frames {
		out = append(out, f.Flat()...)
	}

	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
