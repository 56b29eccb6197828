package input

import "time"

const (
	rateWindow     = 60 * time.Millisecond
	rateMediumRuns = 4
	rateFastRuns   = 10
	rateMedium     = 5
	rateFast       = 10
)

// Rate multiplies value steps while the knob is spun quickly. It is only
// enabled while a field is armed.
type Rate struct {
	Enabled bool

	now  func() time.Time
	last time.Time
	dir  Event
	run  int
}

// NewRate returns a disabled rate tracker using the wall clock.
func NewRate() *Rate {
	return &Rate{now: time.Now}
}

// SetClock overrides the time source.
func (r *Rate) SetClock(now func() time.Time) {
	r.now = now
}

// Enable switches fast-rate on and forgets the previous run.
func (r *Rate) Enable() {
	r.Enabled = true
	r.run = 0
	r.dir = None
}

// Disable switches fast-rate off.
func (r *Rate) Disable() {
	r.Enabled = false
	r.run = 0
	r.dir = None
}

// Step returns the multiplier for a rotation event.
func (r *Rate) Step(ev Event) int {
	if !r.Enabled || (ev != CW && ev != CCW) {
		return 1
	}
	now := r.now()
	if ev == r.dir && now.Sub(r.last) <= rateWindow {
		r.run++
	} else {
		r.run = 0
	}
	r.dir = ev
	r.last = now
	switch {
	case r.run >= rateFastRuns:
		return rateFast
	case r.run >= rateMediumRuns:
		return rateMedium
	default:
		return 1
	}
}
