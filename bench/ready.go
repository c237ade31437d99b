package bench

import "github.com/sarchlab/pixelverify/util/valgen"

// ReadyPattern decides, once per cycle, whether a party is willing to take
// part in a transfer. It drives the consumer's ready on the output port and
// the driver's throttle on the input port.
type ReadyPattern interface {
	Ready(cycle uint64) bool
}

// AlwaysReady never stalls.
type AlwaysReady struct{}

func (AlwaysReady) Ready(uint64) bool {
	return true
}

type randomReady struct {
	gen func() bool
}

func (r *randomReady) Ready(uint64) bool {
	return r.gen()
}

// RandomReady is ready with the given probability in each cycle. The same
// seed reproduces the same sequence.
func RandomReady(probability float64, seed int64) ReadyPattern {
	return &randomReady{gen: valgen.MakeBernoulliGen(seed, probability)}
}

// PeriodicStall is not ready for the first Stall cycles of every Period.
type PeriodicStall struct {
	Period uint64
	Stall  uint64
}

func (p PeriodicStall) Ready(cycle uint64) bool {
	if p.Period == 0 {
		return true
	}

	return cycle%p.Period >= p.Stall
}

// Scripted follows a fixed list, one entry per cycle, and stays at the
// final entry once the list runs out.
type Scripted []bool

func (s Scripted) Ready(cycle uint64) bool {
	if len(s) == 0 {
		return true
	}

	if cycle >= uint64(len(s)) {
		return s[len(s)-1]
	}

	return s[cycle]
}
