package lifecycle

import "github.com/atomicstack/dwin-panel/internal/logging/events"

// KillPresses is the number of impatient presses in Pausing or Resuming that
// force an abort.
const KillPresses = 3

// CleanStatusTicks is how many status ticks a warning stays up before the
// press counter clears.
const CleanStatusTicks = 3

// Warning is the escalation step reached by an impatient press.
type Warning uint8

const (
	WarnNone Warning = iota
	WarnWait
	WarnKill
	WarnKilled
)

// Message returns the text shown in the status area.
func (w Warning) Message() string {
	switch w {
	case WarnWait:
		return "Is processing, please wait!"
	case WarnKill:
		return "Press again to kill"
	case WarnKilled:
		return "killed printing!!"
	default:
		return ""
	}
}

// Signals are the polled command sink flags that complete transitions.
type Signals struct {
	Active        bool
	Paused        bool
	QueueEmpty    bool
	WaitingHeatup bool
}

// Machine owns the lifecycle state and the impatience counter.
type Machine struct {
	state      State
	killTimes  int
	cleanDelay int
	aborted    bool
}

// NewMachine returns a machine in Start.
func NewMachine() *Machine {
	return &Machine{state: Start}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Aborted reports whether the current job was force-aborted.
func (m *Machine) Aborted() bool {
	return m.aborted
}

// Fire applies e. Events with no entry in the table leave the state as is.
// After a forced abort, Pause and Resume are refused until the next print.
func (m *Machine) Fire(e Event) bool {
	if m.aborted && (e == Pause || e == Resume) {
		events.Lifecycle.Ignored(m.state.String(), e.String())
		return false
	}
	to, ok := Next(m.state, e)
	if !ok {
		events.Lifecycle.Ignored(m.state.String(), e.String())
		return false
	}
	events.Lifecycle.Transition(m.state.String(), e.String(), to.String())
	m.state = to
	switch e {
	case StartPrint, Reprint:
		m.aborted = false
		m.killTimes = 0
	}
	return true
}

// Poll derives the completion event implied by the sink flags for the
// current state and fires it.
func (m *Machine) Poll(sig Signals) bool {
	switch m.state {
	case Pausing:
		if !sig.Active && sig.QueueEmpty && !sig.WaitingHeatup {
			return m.Fire(PauseDone)
		}
	case Resuming:
		if sig.Active && !sig.WaitingHeatup {
			return m.Fire(Resumed)
		}
	case RunoutDone:
		return m.Fire(Resumed)
	}
	return false
}

// Busy reports whether the machine is waiting on an asynchronous completion.
func (m *Machine) Busy() bool {
	return m.state == Pausing || m.state == Resuming
}

// Impatient records a press made while Busy and returns the warning to show.
// The third press fires Abort.
func (m *Machine) Impatient() Warning {
	if !m.Busy() {
		return WarnNone
	}
	m.killTimes++
	m.cleanDelay = CleanStatusTicks
	events.Lifecycle.Escalate(m.state.String(), m.killTimes)
	switch {
	case m.killTimes >= KillPresses:
		m.killTimes = 0
		m.aborted = true
		m.Fire(Abort)
		return WarnKilled
	case m.killTimes == KillPresses-1:
		return WarnKill
	default:
		return WarnWait
	}
}

// Presses returns the pending impatient press count.
func (m *Machine) Presses() int {
	return m.killTimes
}

// StatusTick counts down the warning; it reports true when the warning
// should be cleared from the screen.
func (m *Machine) StatusTick() bool {
	if m.cleanDelay == 0 {
		return false
	}
	m.cleanDelay--
	if m.cleanDelay > 0 {
		return false
	}
	m.killTimes = 0
	return true
}
