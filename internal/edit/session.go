package edit

import (
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/menu"
)

// Session is one armed edit. It exists from ENTER on the owning row until the
// value is committed or the parent screen is redrawn.
type Session struct {
	Field  Field
	Value  int
	Last   int
	Parent menu.ID
	Row    int
	// Index selects the axis, extruder, or preset the field belongs to.
	Index int

	done bool
}

// Begin snapshots real into a new session.
func Begin(f Field, real float64, parent menu.ID, row, index int) *Session {
	v := f.Clamp(f.Scaled(real))
	return &Session{
		Field:  f,
		Value:  v,
		Last:   v,
		Parent: parent,
		Row:    row,
		Index:  index,
	}
}

// Adjust applies one rotation. mult is the encoder rate multiplier. It
// reports whether the value moved.
func (s *Session) Adjust(ev input.Event, mult int) bool {
	if s.done {
		return false
	}
	if mult < 1 {
		mult = 1
	}
	step := s.Field.step() * mult
	next := s.Value
	switch ev {
	case input.CW:
		next += step
	case input.CCW:
		next -= step
	default:
		return false
	}
	next = s.Field.Clamp(next)
	if d := s.Field.MaxDelta; d > 0 {
		if next-s.Last > d {
			next = s.Last + d
		} else if s.Last-next > d {
			next = s.Last - d
		}
	}
	if next == s.Value {
		return false
	}
	s.Value = next
	return true
}

// Commit closes the session and returns the value to write. The second
// result is false when the session was already closed.
func (s *Session) Commit() (int, bool) {
	if s.done {
		return 0, false
	}
	s.done = true
	return s.Value, true
}

// Revert closes the session without a write and returns the committed value.
func (s *Session) Revert() int {
	s.done = true
	return s.Last
}

// Done reports whether the session has been committed or reverted.
func (s *Session) Done() bool {
	return s.done
}

// Real returns the current value in real units.
func (s *Session) Real() float64 {
	return s.Field.Real(s.Value)
}

// Delta returns Value-Last in real units, used for relative moves.
func (s *Session) Delta() float64 {
	return s.Field.Real(s.Value - s.Last)
}
