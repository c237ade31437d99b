package dut

import (
	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/frame"
	"github.com/sarchlab/pixelverify/golden"
)

// NMSConfig describes a streaming non-maximum suppression stage. Input
// samples are packed as (direction << 12) | magnitude.
type NMSConfig struct {
	Width   int
	Height  int
	Latency int
}

// NewNMS creates a non-maximum suppression stage.
func NewNMS(name string, cfg NMSConfig) *Stage {
	compute := func(f frame.Frame, row, col int) axis.Logic {
		if row == 0 || col == 0 || row == f.Height-1 || col == f.Width-1 {
			return axis.Val(0)
		}

		mag, dir := golden.UnpackNMS(uint16(f.At(row, col)))
		a, b := dir.Neighbors()
		ma, _ := golden.UnpackNMS(uint16(f.At(row+a[0], col+a[1])))
		mb, _ := golden.UnpackNMS(uint16(f.At(row+b[0], col+b[1])))

		if mag < ma || mag < mb {
			return axis.Val(0)
		}

		return axis.Val(uint64(mag))
	}

	params := map[string]int{
		ParamWidth:  cfg.Width,
		ParamHeight: cfg.Height,
	}

	return NewStage(name, params,
		newWindowCore(cfg.Width, cfg.Height, 1, compute),
		max(cfg.Latency, 1), 2*cfg.Width+16)
}
