package hmi

import (
	"context"
	"testing"
	"time"

	"github.com/atomicstack/dwin-panel/internal/config"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/settings"
	"github.com/atomicstack/dwin-panel/internal/surface"
	"github.com/atomicstack/dwin-panel/internal/testutil"
)

// rig is a booted session wired to fakes. Each event is fed through its own
// Tick, the way the dispatcher does it.
type rig struct {
	t     *testing.T
	s     *Session
	sink  *testutil.FakeSink
	rec   *surface.Recorder
	in    *input.Queue
	media *testutil.FakeMedia
	store *settings.Memory
}

func newRig(t *testing.T, caps config.Capabilities) *rig {
	return newRigWith(t, caps, settings.Defaults(caps.Extruders), nil)
}

func newRigWith(t *testing.T, caps config.Capabilities, cfg settings.Settings, before func(*rig)) *rig {
	t.Helper()
	if caps.Extruders < 1 {
		caps.Extruders = 1
	}
	r := &rig{
		t:     t,
		sink:  testutil.NewFakeSink(caps.Hotends()),
		rec:   &surface.Recorder{},
		in:    input.NewQueue(256),
		media: testutil.NewFakeMedia("benchy.gcode", "cube.gcode"),
		store: &settings.Memory{Initial: cfg},
	}
	r.s = New(Deps{
		Sink:     r.sink,
		Surface:  r.rec,
		Input:    r.in,
		Media:    r.media,
		Settings: r.store,
	}, Options{Caps: caps, StatusTicks: 1})
	// A slow clock keeps the encoder at single steps.
	clock := time.Unix(0, 0)
	r.s.rate.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	if before != nil {
		before(r)
	}
	r.tick(1)
	return r
}

func (r *rig) tick(n int) {
	for i := 0; i < n; i++ {
		r.s.Tick(context.Background())
	}
}

func (r *rig) send(evs ...input.Event) {
	for _, ev := range evs {
		r.in.Push(ev)
		r.tick(1)
	}
}

func (r *rig) cw(n int) { r.send(testutil.Repeat(input.CW, n)...) }
func (r *rig) ccw(n int) { r.send(testutil.Repeat(input.CCW, n)...) }
func (r *rig) press() { r.send(input.Press) }

func (r *rig) expectActive(want menu.ID) {
	r.t.Helper()
	if got := r.s.Active(); got != want {
		r.t.Fatalf("expected active %s, got %s", want, got)
	}
}

// startJob starts a print from Idle and clears the recorded commands.
func (r *rig) startJob(name string) {
	r.t.Helper()
	if !r.s.StartPrint(name) {
		r.t.Fatalf("start print %s refused in %s", name, r.s.State())
	}
	r.sink.Clear()
}
