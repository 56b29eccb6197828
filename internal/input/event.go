package input

// Event is one debounced encoder gesture.
type Event byte

const (
	None Event = iota
	CW
	CCW
	Press
)

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case CW:
		return "cw"
	case CCW:
		return "ccw"
	case Press:
		return "press"
	default:
		return "unknown"
	}
}

// Source yields at most one event per poll.
type Source interface {
	Poll() Event
}
