// Package axis models the valid/ready streaming handshake that pixel
// pipelines use on their input and output boundaries.
//
// A cycle of the interface is a Bus: five sampled wires, each of which may
// be unresolved. A transfer happens when valid and ready are both high in
// the same cycle; the transferred data forms a Beat, and the ordered list of
// beats seen by a monitor forms a Stream.
package axis

import "fmt"

// Logic is the sampled value of a wire. A wire that carries an unknown or
// high-impedance value is not Known.
type Logic struct {
	V     uint64
	Known bool
}

// X is the unresolved sample.
var X = Logic{}

// High and Low are the resolved single-bit values.
var (
	High = Logic{V: 1, Known: true}
	Low  = Logic{V: 0, Known: true}
)

// Val creates a resolved sample.
func Val(v uint64) Logic {
	return Logic{V: v, Known: true}
}

// Bit creates a resolved single-bit sample.
func Bit(b bool) Logic {
	if b {
		return High
	}

	return Low
}

// IsHigh is true only for a resolved non-zero value.
func (l Logic) IsHigh() bool {
	return l.Known && l.V != 0
}

// IsX tells whether the sample is unresolved.
func (l Logic) IsX() bool {
	return !l.Known
}

// Int returns the value as an int. Unresolved samples yield ok == false.
func (l Logic) Int() (v int, ok bool) {
	return int(l.V), l.Known
}

func (l Logic) String() string {
	if !l.Known {
		return "X"
	}

	return fmt.Sprintf("%d", l.V)
}

// Bus is one cycle of the handshake wires on one side of a pipeline.
type Bus struct {
	Data  Logic
	Valid Logic
	Ready Logic
	Last  Logic
	User  Logic
}

// Idle is a bus with valid and the markers low and data at zero.
var Idle = Bus{Data: Low, Valid: Low, Last: Low, User: Low}

// Unknown is the state of an output bus before reset.
var Unknown = Bus{Data: X, Valid: X, Ready: X, Last: X, User: X}

// Fires tells whether a transfer happens on this bus in this cycle.
func (b Bus) Fires() bool {
	return b.Valid.IsHigh() && b.Ready.IsHigh()
}

// SidebandWithoutValid reports the protocol error of asserting last or user
// while valid is low.
func (b Bus) SidebandWithoutValid() bool {
	if b.Valid.IsHigh() || b.Valid.IsX() {
		return false
	}

	return b.Last.IsHigh() || b.User.IsHigh()
}

// SamePayload tells whether data and both markers match.
func (b Bus) SamePayload(o Bus) bool {
	return b.Data == o.Data && b.Last == o.Last && b.User == o.User
}

// Beat is one transferred transaction.
type Beat struct {
	Data  Logic
	Last  bool
	User  bool
	Cycle uint64
}

// BeatFrom extracts the payload of a bus that fired in the given cycle.
func BeatFrom(b Bus, cycle uint64) Beat {
	return Beat{
		Data:  b.Data,
		Last:  b.Last.IsHigh(),
		User:  b.User.IsHigh(),
		Cycle: cycle,
	}
}
