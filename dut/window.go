package dut

import (
	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/frame"
)

// windowCore buffers one frame and emits output (r, c) as soon as every
// input sample within reach rows and columns of it has arrived. Near the
// bottom of the frame several output rows become ready at once, which is
// how the end-of-frame flush appears at the output.
type windowCore struct {
	width, height int
	reach         int
	compute       func(f frame.Frame, row, col int) axis.Logic

	buf      frame.Frame
	received int
	emitted  int
}

func newWindowCore(
	width, height, reach int,
	compute func(f frame.Frame, row, col int) axis.Logic,
) *windowCore {
	return &windowCore{
		width:   width,
		height:  height,
		reach:   reach,
		compute: compute,
		buf:     frame.MustNew(width, height),
	}
}

func (c *windowCore) Reset() {
	c.received = 0
	c.emitted = 0
}

func (c *windowCore) total() int {
	return c.width * c.height
}

func (c *windowCore) Accept(b axis.Beat) []axis.Beat {
	if b.User || c.received == c.total() {
		c.Reset()
	}

	v, ok := b.Data.Int()
	if !ok {
		v = 0
	}
	c.buf.Pix[c.received] = uint16(v)
	c.received++

	var out []axis.Beat
	for c.emitted < c.total() && c.dependency(c.emitted) < c.received {
		out = append(out, c.produce(c.emitted))
		c.emitted++
	}

	return out
}

// dependency is the index of the last input sample output i needs.
func (c *windowCore) dependency(i int) int {
	row, col := i/c.width, i%c.width

	return min(row+c.reach, c.height-1)*c.width + min(col+c.reach, c.width-1)
}

func (c *windowCore) produce(i int) axis.Beat {
	row, col := i/c.width, i%c.width

	return axis.Beat{
		Data: c.compute(c.buf, row, col),
		Last: col == c.width-1,
		User: i == 0,
	}
}
