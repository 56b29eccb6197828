package backend

import (
	"context"
	"testing"
	"time"

	"github.com/atomicstack/dwin-panel/internal/state"
)

type cannedQuerier map[string][]string

func (c cannedQuerier) Query(_ context.Context, line string) ([]string, error) {
	return c[line], nil
}

type fakeMedia struct{ files []string }

func (f fakeMedia) Mounted() bool { return f.files != nil }
func (f fakeMedia) List() ([]string, error) { return f.files, nil }

func TestWatcherEmitsEveryKind(t *testing.T) {
	q := cannedQuerier{
		"M105": {"ok T:200.0 /200.0 B:60.0 /60.0"},
		"M27":  {"SD printing byte 10/100"},
		"M114": {"X:1.00 Y:2.00 Z:3.00 E:0.00 Count X:0 Y:0 Z:0"},
	}
	w := NewWatcher(q, fakeMedia{files: []string{"a.gcode"}}, 10*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	seen := map[Kind]Event{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 4 {
		select {
		case evt := <-w.Events():
			if evt.Err != nil {
				t.Fatalf("%s poll failed: %v", evt.Kind, evt.Err)
			}
			seen[evt.Kind] = evt
		case <-timeout:
			t.Fatalf("only saw %d kinds", len(seen))
		}
	}

	if th := seen[KindThermal].Data.(ThermalReport); th.Bed.Target != 60 || th.Hotends[0].Current != 200 {
		t.Fatalf("unexpected thermal %+v", th)
	}
	if job := seen[KindJob].Data.(JobReport); !job.Printing || job.Done != 10 || job.Size != 100 {
		t.Fatalf("unexpected job %+v", job)
	}
	if pos := seen[KindPosition].Data.(state.Position); pos.Z != 3 {
		t.Fatalf("unexpected position %+v", pos)
	}
	if m := seen[KindMedia].Data.(MediaReport); !m.Mounted || len(m.Files) != 1 {
		t.Fatalf("unexpected media %+v", m)
	}
}

func TestWatcherReportsMissingReply(t *testing.T) {
	w := NewWatcher(cannedQuerier{}, nil, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()
	select {
	case evt := <-w.Events():
		if evt.Err == nil {
			t.Fatalf("expected an error for an empty reply, got %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no event")
	}
}

func TestWatcherClosesEventsAfterStop(t *testing.T) {
	w := NewWatcher(nil, fakeMedia{}, time.Hour)
	w.Stop()
	w.Wait()
	for range w.Events() {
	}
}

func TestPacerSpacesSlots(t *testing.T) {
	p := newPacer(20 * time.Millisecond)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("three slots took only %s", elapsed)
	}
}

func TestPacerStopsOnCancel(t *testing.T) {
	p := newPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	if err := p.wait(ctx); err != nil {
		t.Fatalf("first slot should be free: %v", err)
	}
	cancel()
	if err := p.wait(ctx); err == nil {
		t.Fatalf("expected the cancelled wait to fail")
	}
}
