package axis

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/pixelverify/frame"
)

// Encode turns frames into the sequence of input buses a driver presents,
// one per pixel in row-major order. User marks the first pixel of each frame
// and Last marks the final pixel of each row. Ready is left unresolved since
// the sink drives it.
func Encode(frames ...frame.Frame) []Bus {
	var out []Bus

	for _, f := range frames {
		for r := 0; r < f.Height; r++ {
			for c := 0; c < f.Width; c++ {
				out = append(out, Bus{
					Data:  Val(uint64(f.At(r, c))),
					Valid: High,
					Ready: X,
					Last:  Bit(c == f.Width-1),
					User:  Bit(r == 0 && c == 0),
				})
			}
		}
	}

	return out
}

// Decode rebuilds frames of the given size from transferred beats. It uses
// the start-of-frame marker to find frame boundaries and the end-of-line
// marker to close rows.
func Decode(beats []Beat, width, height int) ([]frame.Frame, error) {
	if width < 1 || height < 1 {
		return nil, errors.Errorf("invalid frame size %dx%d", width, height)
	}

	var (
		frames []frame.Frame
		cur    frame.Frame
		row    int
		col    int
		open   bool
	)

	for i, b := range beats {
		if b.User {
			if open {
				return nil, errors.Errorf(
					"beat %d: start of frame inside frame %d at row %d",
					i, len(frames), row)
			}

			cur = frame.MustNew(width, height)
			row, col, open = 0, 0, true
		}

		if !open {
			return nil, errors.Errorf("beat %d: data before start of frame", i)
		}

		v, ok := b.Data.Int()
		if !ok {
			return nil, errors.Errorf("beat %d: unresolved data", i)
		}

		if col >= width {
			return nil, errors.Errorf(
				"beat %d: row %d longer than %d samples", i, row, width)
		}

		cur.Set(row, col, v)
		col++

		if !b.Last {
			continue
		}

		if col != width {
			return nil, errors.Errorf(
				"beat %d: row %d closed after %d of %d samples",
				i, row, col, width)
		}

		row++
		col = 0

		if row == height {
			frames = append(frames, cur)
			open = false
		}
	}

	if open {
		return frames, errors.Errorf(
			"partial frame %d: %d complete rows of %d", len(frames), row, height)
	}

	return frames, nil
}

// Expected returns the number of beats and end-of-line markers a run of the
// given frames produces.
func Expected(width, height, frames int) (beats, lasts int) {
	return width * height * frames, height * frames
}
