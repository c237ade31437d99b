package axis

// Stream is the ordered list of beats that were transferred on a bus. It
// only grows.
type Stream struct {
	beats []Beat
	lasts int
	users int
	xs    int
}

// Append records a transferred beat.
func (s *Stream) Append(b Beat) {
	s.beats = append(s.beats, b)

	if b.Last {
		s.lasts++
	}

	if b.User {
		s.users++
	}

	if b.Data.IsX() {
		s.xs++
	}
}

// Len is the number of transferred beats.
func (s *Stream) Len() int {
	return len(s.beats)
}

// Lasts is the number of beats that carried an end-of-line marker.
func (s *Stream) Lasts() int {
	return s.lasts
}

// Users is the number of beats that carried a start-of-frame marker.
func (s *Stream) Users() int {
	return s.users
}

// Unresolved is the number of beats whose data was not resolved.
func (s *Stream) Unresolved() int {
	return s.xs
}

// Beats returns a copy of the transferred beats.
func (s *Stream) Beats() []Beat {
	out := make([]Beat, len(s.beats))
	copy(out, s.beats)

	return out
}

// Data returns the data samples in transfer order.
func (s *Stream) Data() []Logic {
	out := make([]Logic, len(s.beats))
	for i, b := range s.beats {
		out[i] = b.Data
	}

	return out
}
