package printer

import (
	"context"
	"errors"
	"time"

	"github.com/atomicstack/dwin-panel/internal/state"
)

var (
	// ErrClosed is returned once the link has been shut down.
	ErrClosed = errors.New("printer link closed")
	// ErrQueueFull is returned by blocking helpers when the queue stays full.
	ErrQueueFull = errors.New("command queue full")
)

// Status is what the panel may poll from the machine.
type Status struct {
	Hotends       []state.Thermal
	Bed           state.Thermal
	Fan           int
	Position      state.Position
	Feedrate      int
	Active        bool
	Paused        bool
	QueueEmpty    bool
	WaitingHeatup bool
	Percent       int
	Elapsed       time.Duration
	Recovery      bool
}

// Hotend returns heater i or a zero reading.
func (s Status) Hotend(i int) state.Thermal {
	if i < 0 || i >= len(s.Hotends) {
		return state.Thermal{}
	}
	return s.Hotends[i]
}

// Sink accepts G-code text for asynchronous execution. Enqueue never
// blocks; multi-line text is accepted or rejected as a whole.
type Sink interface {
	Enqueue(text string) bool
	QueueFull() bool
	Synchronize(ctx context.Context) error
	Status() Status
	// Abort drops queued commands and requests a hard stop of the job.
	Abort()
}

// PauseMessage is the filament-change step announced by the firmware.
type PauseMessage uint8

const (
	PauseParking PauseMessage = iota
	PauseChanging
	PauseWaiting
	PauseUnload
	PauseInsert
	PauseLoad
	PausePurge
	PauseOption
	PauseResume
	PauseStatus
	PauseHeating
	PauseHeat
)

var pauseNames = [...]string{
	PauseParking:  "parking",
	PauseChanging: "changing",
	PauseWaiting:  "waiting",
	PauseUnload:   "unload",
	PauseInsert:   "insert",
	PauseLoad:     "load",
	PausePurge:    "purge",
	PauseOption:   "option",
	PauseResume:   "resume",
	PauseStatus:   "status",
	PauseHeating:  "heating",
	PauseHeat:     "heat",
}

func (p PauseMessage) String() string {
	if int(p) < len(pauseNames) {
		return pauseNames[p]
	}
	return "unknown"
}

// NoticeKind classifies unsolicited firmware messages.
type NoticeKind uint8

const (
	NoticePause NoticeKind = iota
	NoticeMessage
	NoticeLeveling
	NoticePrintDone
	NoticeRecovery
)

// LevelingStep reports probing progress.
type LevelingStep uint8

const (
	LevelingStart LevelingStep = iota
	LevelingPoint
	LevelingDone
)

// Notice is an unsolicited message the panel reacts to.
type Notice struct {
	Kind     NoticeKind
	Pause    PauseMessage
	Text     string
	Leveling LevelingStep
	Point    int
	Total    int
	Value    float64
}

// Notifier is implemented by sinks that collect unsolicited messages.
type Notifier interface {
	Notices() []Notice
}
