package testutil

import "github.com/atomicstack/dwin-panel/internal/input"

// Script returns a source that replays events in order, then reports None.
func Script(evs ...input.Event) *input.Queue {
	q := input.NewQueue(len(evs) + 64)
	for _, ev := range evs {
		q.Push(ev)
	}
	return q
}

// Repeat returns n copies of ev.
func Repeat(ev input.Event, n int) []input.Event {
	out := make([]input.Event, n)
	for i := range out {
		out[i] = ev
	}
	return out
}
