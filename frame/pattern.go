package frame

import (
	"fmt"

	"github.com/sarchlab/pixelverify/util/valgen"
)

// Pattern names a test image generator.
type Pattern string

const (
	PatternRandom       Pattern = "random"
	PatternGradient     Pattern = "gradient"
	PatternCheckerboard Pattern = "checkerboard"
	PatternUniform      Pattern = "uniform"
	PatternImpulse      Pattern = "impulse"
	PatternRamp         Pattern = "ramp"
)

// Patterns lists every known pattern.
var Patterns = []Pattern{
	PatternRandom,
	PatternGradient,
	PatternCheckerboard,
	PatternUniform,
	PatternImpulse,
	PatternRamp,
}

// UniformLevel is the sample value of the uniform pattern.
const UniformLevel = 128

// ParsePattern converts a name into a Pattern.
func ParsePattern(name string) (Pattern, error) {
	for _, p := range Patterns {
		if string(p) == name {
			return p, nil
		}
	}

	return "", fmt.Errorf("unknown pattern %q", name)
}

// Generate creates an 8-bit test image. Only the random pattern depends on
// the seed.
func Generate(width, height int, p Pattern, seed int64) (Frame, error) {
	f, err := New(width, height)
	if err != nil {
		return Frame{}, err
	}

	switch p {
	case PatternRandom:
		fill(f, valgen.MakeRandomGen(seed, 256))
	case PatternGradient:
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				f.Set(r, c, gradientAt(c, width))
			}
		}
	case PatternCheckerboard:
		for r := 0; r < height; r++ {
			g := valgen.MakeCycleGen(255, 0)
			if r%2 == 1 {
				g = valgen.MakeCycleGen(0, 255)
			}
			for c := 0; c < width; c++ {
				f.Set(r, c, g())
			}
		}
	case PatternUniform:
		fill(f, valgen.MakeConstGen(UniformLevel))
	case PatternImpulse:
		f.Set(height/2, width/2, 255)
	case PatternRamp:
		fill(f, valgen.MakeWrappingGen(0, 256))
	default:
		return Frame{}, fmt.Errorf("unknown pattern %q", p)
	}

	return f, nil
}

// GenerateSequence creates n frames. Frame i of a random sequence uses
// seed+i so that consecutive frames differ.
func GenerateSequence(
	width, height int,
	p Pattern,
	seed int64,
	n int,
) ([]Frame, error) {
	if n < 1 {
		return nil, fmt.Errorf("frame count must be positive, got %d", n)
	}

	frames := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		f, err := Generate(width, height, p, seed+int64(i))
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frames, nil
}

func gradientAt(col, width int) int {
	if width == 1 {
		return 0
	}

	return col * 255 / (width - 1)
}

func fill(f Frame, gen func() int) {
	for r := 0; r < f.Height; r++ {
		for c := 0; c < f.Width; c++ {
			f.Set(r, c, gen())
		}
	}
}
