package golden

import (
	"fmt"

	"github.com/sarchlab/pixelverify/frame"
)

// Direction is a quantised gradient direction.
type Direction int

const (
	DirEW Direction = iota
	DirNESW
	DirNS
	DirNWSE
)

func (d Direction) String() string {
	switch d {
	case DirEW:
		return "E-W"
	case DirNESW:
		return "NE-SW"
	case DirNS:
		return "N-S"
	case DirNWSE:
		return "NW-SE"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Neighbors returns the (row, col) offsets of the two neighbours compared
// along the direction. Rows grow downwards.
func (d Direction) Neighbors() (a, b [2]int) {
	switch d {
	case DirEW:
		return [2]int{0, -1}, [2]int{0, 1}
	case DirNESW:
		return [2]int{-1, 1}, [2]int{1, -1}
	case DirNS:
		return [2]int{-1, 0}, [2]int{1, 0}
	case DirNWSE:
		return [2]int{-1, -1}, [2]int{1, 1}
	default:
		panic(fmt.Sprintf("invalid direction %d", int(d)))
	}
}

// DirectionGrid holds one direction per pixel in row-major order.
type DirectionGrid struct {
	Width  int
	Height int
	Dirs   []Direction
}

// UniformDirections creates a grid where every pixel has the same direction.
func UniformDirections(width, height int, d Direction) DirectionGrid {
	g := DirectionGrid{Width: width, Height: height, Dirs: make([]Direction, width*height)}
	for i := range g.Dirs {
		g.Dirs[i] = d
	}

	return g
}

// At returns the direction at a position.
func (g DirectionGrid) At(row, col int) Direction {
	return g.Dirs[row*g.Width+col]
}

// Set writes the direction at a position.
func (g DirectionGrid) Set(row, col int, d Direction) {
	g.Dirs[row*g.Width+col] = d
}

// NonMaxSuppress keeps an interior pixel's magnitude when it is at least as
// large as both neighbours along its direction and zeroes it otherwise.
// Border pixels are always zero. Equal neighbours do not suppress, so a flat
// ridge survives.
func NonMaxSuppress(mag frame.Frame, dir DirectionGrid) (frame.Frame, error) {
	if dir.Width != mag.Width || dir.Height != mag.Height {
		return frame.Frame{}, fmt.Errorf(
			"direction grid %dx%d does not match magnitude %dx%d",
			dir.Width, dir.Height, mag.Width, mag.Height)
	}

	out := frame.MustNew(mag.Width, mag.Height)

	for r := 1; r < mag.Height-1; r++ {
		for c := 1; c < mag.Width-1; c++ {
			a, b := dir.At(r, c).Neighbors()
			m := mag.At(r, c)

			if m >= mag.At(r+a[0], c+a[1]) && m >= mag.At(r+b[0], c+b[1]) {
				out.Set(r, c, m)
			}
		}
	}

	return out, nil
}

// MagBits is the width of the magnitude field in a packed NMS sample.
const MagBits = 12

// PackNMS encodes a magnitude and direction the way an NMS stage receives
// them on its input stream: (dir << 12) | mag.
func PackNMS(mag int, dir Direction) uint16 {
	return uint16(int(dir)<<MagBits | (mag & (1<<MagBits - 1)))
}

// UnpackNMS splits a packed NMS sample.
func UnpackNMS(v uint16) (mag int, dir Direction) {
	return int(v) & (1<<MagBits - 1), Direction(int(v)>>MagBits) & 3
}

// PackFrame encodes a magnitude frame and direction grid into one stream
// frame.
func PackFrame(mag frame.Frame, dir DirectionGrid) frame.Frame {
	out := frame.MustNew(mag.Width, mag.Height)
	for i := range mag.Pix {
		out.Pix[i] = PackNMS(int(mag.Pix[i]), dir.Dirs[i])
	}

	return out
}

// UnpackFrame is the inverse of PackFrame.
func UnpackFrame(packed frame.Frame) (frame.Frame, DirectionGrid) {
	mag := frame.MustNew(packed.Width, packed.Height)
	dir := DirectionGrid{
		Width:  packed.Width,
		Height: packed.Height,
		Dirs:   make([]Direction, len(packed.Pix)),
	}

	for i, v := range packed.Pix {
		m, d := UnpackNMS(v)
		mag.Pix[i] = uint16(m)
		dir.Dirs[i] = d
	}

	return mag, dir
}
