package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/state"
)

// FakeSink records accepted command text and serves a status the test
// controls.
type FakeSink struct {
	mu       sync.Mutex
	sent     []string
	rejected []string
	status   printer.Status
	notices  []printer.Notice

	full    bool
	reject  bool
	syncErr error
	aborts  int
	syncs   int
}

// NewFakeSink returns an idle sink with hotends heaters.
func NewFakeSink(hotends int) *FakeSink {
	if hotends < 1 {
		hotends = 1
	}
	return &FakeSink{
		status: printer.Status{
			Hotends:    make([]state.Thermal, hotends),
			QueueEmpty: true,
			Feedrate:   100,
		},
	}
}

func (f *FakeSink) Enqueue(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full || f.reject {
		f.rejected = append(f.rejected, text)
		return false
	}
	f.sent = append(f.sent, text)
	return true
}

func (f *FakeSink) QueueFull() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.full
}

// Synchronize drains the fake queue unless an error was configured.
func (f *FakeSink) Synchronize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	if f.syncErr != nil {
		return f.syncErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.full = false
	return nil
}

func (f *FakeSink) Status() printer.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.status
	out.Hotends = append([]state.Thermal(nil), f.status.Hotends...)
	return out
}

func (f *FakeSink) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborts++
	f.status.Active = false
}

// Notices drains pushed notices.
func (f *FakeSink) Notices() []printer.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	return out
}

// Push queues a notice for the next Notices call.
func (f *FakeSink) Push(n printer.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
}

// Update mutates the served status.
func (f *FakeSink) Update(fn func(*printer.Status)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.status)
}

// SetFull makes QueueFull report full until Synchronize runs.
func (f *FakeSink) SetFull(full bool) {
	f.mu.Lock()
	f.full = full
	f.mu.Unlock()
}

// SetReject makes every Enqueue fail.
func (f *FakeSink) SetReject(reject bool) {
	f.mu.Lock()
	f.reject = reject
	f.mu.Unlock()
}

// SetSyncErr makes Synchronize fail with err.
func (f *FakeSink) SetSyncErr(err error) {
	f.mu.Lock()
	f.syncErr = err
	f.mu.Unlock()
}

// Sent returns every accepted command text in order.
func (f *FakeSink) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// Rejected returns every refused command text in order.
func (f *FakeSink) Rejected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.rejected...)
}

// Lines returns accepted commands split into single G-code lines.
func (f *FakeSink) Lines() []string {
	var out []string
	for _, text := range f.Sent() {
		out = append(out, printer.Lines(text)...)
	}
	return out
}

// Count returns how many accepted lines equal line.
func (f *FakeSink) Count(line string) int {
	n := 0
	for _, l := range f.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

// HasPrefix reports whether any accepted line starts with prefix.
func (f *FakeSink) HasPrefix(prefix string) bool {
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// Last returns the most recently accepted text.
func (f *FakeSink) Last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

// Aborts counts Abort calls.
func (f *FakeSink) Aborts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aborts
}

// Syncs counts Synchronize calls.
func (f *FakeSink) Syncs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

// Clear forgets recorded commands.
func (f *FakeSink) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.rejected = nil
}
