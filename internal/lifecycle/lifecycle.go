package lifecycle

// State is the print lifecycle as seen by the panel.
type State uint8

const (
	Start State = iota
	Idle
	Printing
	Pausing
	Paused
	Resuming
	Stopped
	RunoutWaiting
	RunoutDone
)

var stateNames = [...]string{
	Start:         "start",
	Idle:          "idle",
	Printing:      "printing",
	Pausing:       "pausing",
	Paused:        "paused",
	Resuming:      "resuming",
	Stopped:       "stopped",
	RunoutWaiting: "runout-waiting",
	RunoutDone:    "runout-done",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// States lists every state.
func States() []State {
	return []State{Start, Idle, Printing, Pausing, Paused, Resuming, Stopped, RunoutWaiting, RunoutDone}
}

// Event drives a transition.
type Event uint8

const (
	Boot Event = iota
	StartPrint
	Pause
	PauseDone
	Resume
	Resumed
	Stop
	Abort
	Cleanup
	Reprint
	Runout
	RunoutResume
)

var eventNames = [...]string{
	Boot:         "boot",
	StartPrint:   "start-print",
	Pause:        "pause",
	PauseDone:    "pause-done",
	Resume:       "resume",
	Resumed:      "resumed",
	Stop:         "stop",
	Abort:        "abort",
	Cleanup:      "cleanup",
	Reprint:      "reprint",
	Runout:       "runout",
	RunoutResume: "runout-resume",
}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// Events lists every event.
func Events() []Event {
	return []Event{Boot, StartPrint, Pause, PauseDone, Resume, Resumed, Stop, Abort, Cleanup, Reprint, Runout, RunoutResume}
}

type edge struct {
	from State
	on   Event
}

var transitions = map[edge]State{
	{Start, Boot}:                 Idle,
	{Idle, StartPrint}:            Printing,
	{Printing, Pause}:             Pausing,
	{Printing, Stop}:              Stopped,
	{Printing, Runout}:            RunoutWaiting,
	{Pausing, PauseDone}:          Paused,
	{Pausing, Abort}:              Stopped,
	{Paused, Resume}:              Resuming,
	{Paused, Stop}:                Stopped,
	{Resuming, Resumed}:           Printing,
	{Resuming, Abort}:             Stopped,
	{Stopped, Cleanup}:            Idle,
	{Stopped, Reprint}:            Printing,
	{RunoutWaiting, RunoutResume}: RunoutDone,
	{RunoutWaiting, Stop}:         Stopped,
	{RunoutDone, Resumed}:         Printing,
}

// Next returns the target of the transition table without side effects.
func Next(s State, e Event) (State, bool) {
	to, ok := transitions[edge{s, e}]
	if !ok {
		return s, false
	}
	return to, true
}
