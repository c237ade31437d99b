package dut

import (
	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/frame"
)

// EdgePolicy selects how a convolution reads outside the frame.
type EdgePolicy int

const (
	EdgeReplicate EdgePolicy = iota
	EdgeZero
)

// GaussianConfig describes a streaming 5x5 Gaussian blur stage.
type GaussianConfig struct {
	Width    int
	Height   int
	Latency  int
	Rounding bool
	Edge     EdgePolicy
}

var gaussianTaps = [5]int64{1, 4, 6, 4, 1}

// NewGaussian creates a 5x5 Gaussian blur stage. It evaluates the kernel as
// a vertical pass of the 1-4-6-4-1 taps over horizontal passes, which gives
// the same integer sum as the full 5x5 matrix.
func NewGaussian(name string, cfg GaussianConfig) *Stage {
	rounding := 0
	if cfg.Rounding {
		rounding = 1
	}

	read := func(f frame.Frame, row, col int) int64 {
		if cfg.Edge == EdgeZero && !f.InBounds(row, col) {
			return 0
		}

		return int64(f.Clamped(row, col))
	}

	compute := func(f frame.Frame, row, col int) axis.Logic {
		var sum int64
		for i, wr := range gaussianTaps {
			var h int64
			for j, wc := range gaussianTaps {
				h += wc * read(f, row+i-2, col+j-2)
			}
			sum += wr * h
		}

		if cfg.Rounding {
			sum += 128
		}

		v := sum >> 8
		if v > 255 {
			v = 255
		}

		return axis.Val(uint64(v))
	}

	params := map[string]int{
		ParamWidth:    cfg.Width,
		ParamHeight:   cfg.Height,
		ParamRounding: rounding,
	}

	return NewStage(name, params,
		newWindowCore(cfg.Width, cfg.Height, 2, compute),
		max(cfg.Latency, 1), 4*cfg.Width+16)
}
