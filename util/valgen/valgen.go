// Some helpers using closures to generate values
package valgen

import "math/rand"

func MakeConstGen(constant int) func() int {
	return func() int {
		return constant
	}
}

// MakeWrappingGen counts start, start+1, ... and wraps back to zero at
// modulus.
func MakeWrappingGen(start, modulus int) func() int {
	if modulus <= 0 {
		panic("modulus must be positive")
	}

	current := start - 1
	return func() int {
		current = (current + 1) % modulus
		return current
	}
}

// MakeRandomGen returns values in [0, limit) from a generator seeded with
// seed, so the same seed always yields the same sequence.
func MakeRandomGen(seed int64, limit int) func() int {
	rng := rand.New(rand.NewSource(seed))
	return func() int {
		return rng.Intn(limit)
	}
}

// MakeBernoulliGen returns true with probability p on each call.
func MakeBernoulliGen(seed int64, p float64) func() bool {
	rng := rand.New(rand.NewSource(seed))
	return func() bool {
		return rng.Float64() < p
	}
}

// MakeCycleGen repeats the given values forever.
func MakeCycleGen(values ...int) func() int {
	if len(values) == 0 {
		panic("at least one value is required")
	}

	i := -1
	return func() int {
		i = (i + 1) % len(values)
		return values[i]
	}
}
