package bench

import (
	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/verify"
)

// Watchdog ends a run once the expected output has been observed, or once
// the cycle budget is spent.
type Watchdog struct {
	ExpectedBeats int
	ExpectedLasts int
	Budget        uint64
}

// NewWatchdog sizes the budget as factor cycles per expected beat plus a
// fixed floor.
func NewWatchdog(expectedBeats, expectedLasts int, factor, floor uint64) *Watchdog {
	return &Watchdog{
		ExpectedBeats: expectedBeats,
		ExpectedLasts: expectedLasts,
		Budget:        factor*uint64(expectedBeats) + floor,
	}
}

// Check reports whether the run should stop. Cycles counts from the start
// of streaming. Completion only counts once the stimulus is exhausted; the
// budget applies throughout.
func (w *Watchdog) Check(
	s *axis.Stream,
	cycles uint64,
	flushing bool,
) (bool, verify.DrainStatus) {
	status := w.Status(s, cycles)

	switch {
	case flushing && s.Len() >= w.ExpectedBeats:
		status.Reason = "beats"
	case flushing && w.ExpectedLasts > 0 && s.Lasts() >= w.ExpectedLasts:
		status.Reason = "lasts"
	case cycles >= w.Budget:
		status.Reason = "budget"
		status.TimedOut = true
	default:
		return false, status
	}

	return true, status
}

// Status snapshots the drain counters.
func (w *Watchdog) Status(s *axis.Stream, cycles uint64) verify.DrainStatus {
	return verify.DrainStatus{
		ExpectedBeats: w.ExpectedBeats,
		ObservedBeats: s.Len(),
		ExpectedLasts: w.ExpectedLasts,
		ObservedLasts: s.Lasts(),
		ObservedUsers: s.Users(),
		Cycles:        cycles,
		Budget:        w.Budget,
	}
}
