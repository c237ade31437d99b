package bench

import (
	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/verify"
)

// Monitor watches the output port. It is the only writer of the captured
// stream.
type Monitor struct {
	stream         *axis.Stream
	checkStability bool

	prev        axis.Bus
	prevStalled bool

	stalls          int
	unresolvedValid int
}

// NewMonitor creates a monitor. With checkStability set, an output that
// changes while the consumer stalls it is a protocol violation.
func NewMonitor(checkStability bool) *Monitor {
	return &Monitor{
		stream:         &axis.Stream{},
		checkStability: checkStability,
	}
}

// Stream returns the captured stream.
func (m *Monitor) Stream() *axis.Stream {
	return m.stream
}

// Stalls is the number of cycles with valid high and ready low.
func (m *Monitor) Stalls() int {
	return m.stalls
}

// UnresolvedValid is the number of cycles in which valid was unresolved.
func (m *Monitor) UnresolvedValid() int {
	return m.unresolvedValid
}

// Sample inspects the output port before the clock edge of the given
// cycle.
func (m *Monitor) Sample(out axis.Bus, cycle uint64) error {
	if out.SidebandWithoutValid() {
		f := verify.NewFailure(verify.KindProtocolViolation,
			"cycle %d: m_tlast=%s m_tuser=%s while m_tvalid is low",
			cycle, out.Last, out.User)
		f.Details["cycle"] = cycle
		f.Details["beats_captured"] = m.stream.Len()

		return f
	}

	if m.checkStability && m.prevStalled {
		if !out.Valid.IsHigh() || !out.SamePayload(m.prev) {
			f := verify.NewFailure(verify.KindProtocolViolation,
				"cycle %d: output changed while stalled (data %s->%s, valid %s)",
				cycle, m.prev.Data, out.Data, out.Valid)
			f.Details["cycle"] = cycle
			f.Details["beats_captured"] = m.stream.Len()

			return f
		}
	}

	if out.Valid.IsX() {
		m.unresolvedValid++
	}

	if out.Fires() {
		m.stream.Append(axis.BeatFrom(out, cycle))
	} else if out.Valid.IsHigh() {
		m.stalls++
	}

	m.prev = out
	m.prevStalled = out.Valid.IsHigh() && !out.Ready.IsHigh()

	return nil
}
