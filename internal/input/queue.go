package input

import "sync"

const defaultQueueDepth = 32

// Queue buffers events produced by key handlers or GPIO edges until the
// dispatcher polls them. Events beyond the depth are dropped.
type Queue struct {
	mu     sync.Mutex
	events []Event
	depth  int
}

// NewQueue returns an empty queue holding at most depth events.
func NewQueue(depth int) *Queue {
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	return &Queue{depth: depth}
}

// Push appends an event. It reports false when the event was dropped.
func (q *Queue) Push(ev Event) bool {
	if ev == None {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) >= q.depth {
		return false
	}
	q.events = append(q.events, ev)
	return true
}

// Poll pops the oldest event, or None.
func (q *Queue) Poll() Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return None
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
