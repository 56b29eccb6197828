package ui

import (
	"testing"
	"time"

	"github.com/atomicstack/dwin-panel/internal/config"
	"github.com/atomicstack/dwin-panel/internal/hmi"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/settings"
	"github.com/atomicstack/dwin-panel/internal/state"
	"github.com/atomicstack/dwin-panel/internal/surface"
	"github.com/atomicstack/dwin-panel/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

type testPanel struct {
	model  *Model
	h      *Harness
	sink   *testutil.FakeSink
	queue  *input.Queue
	status state.StatusStore
	media  state.MediaStore
}

func newTestPanel(t *testing.T, cfg Config) *testPanel {
	t.Helper()
	p := &testPanel{
		sink:   testutil.NewFakeSink(1),
		queue:  input.NewQueue(8),
		status: state.NewStatusStore(1),
		media:  state.NewMediaStore(),
	}
	canvas := surface.NewCanvas()
	session := hmi.New(hmi.Deps{
		Sink:     p.sink,
		Surface:  canvas,
		Input:    p.queue,
		Media:    StoreMedia{Store: p.media},
		Settings: &settings.Memory{Initial: settings.Defaults(1)},
	}, hmi.Options{Caps: config.Capabilities{Extruders: 1}, StatusTicks: 1})
	cfg.Session = session
	cfg.Input = p.queue
	cfg.Canvas = canvas
	cfg.Status = p.status
	cfg.Media = p.media
	p.model = NewModel(cfg)
	p.h = NewHarness(p.model)
	return p
}

func TestKeysQueueUntilTick(t *testing.T) {
	p := newTestPanel(t, Config{})
	p.h.Tick(1)
	if got := p.model.Session().Active(); got != menu.Main {
		t.Fatalf("expected main after boot, got %s", got)
	}
	p.h.Key("down")
	if p.queue.Len() != 1 {
		t.Fatalf("expected the key queued, got %d", p.queue.Len())
	}
	if now := p.model.Session().Cursor(menu.Main).Now; now != 0 {
		t.Fatalf("cursor moved before the tick: %d", now)
	}
	p.h.Tick(1)
	if now := p.model.Session().Cursor(menu.Main).Now; now != 1 {
		t.Fatalf("expected cursor on row 1, got %d", now)
	}
}

func TestEnterOpensListAndEscReturns(t *testing.T) {
	p := newTestPanel(t, Config{})
	p.h.Tick(1)
	p.h.Key("j")
	p.h.Tick(1)
	p.h.Key("enter")
	p.h.Tick(1)
	if got := p.model.Session().Active(); got != menu.Prepare {
		t.Fatalf("expected prepare, got %s", got)
	}
	p.h.Key("esc")
	if got := p.model.Session().Active(); got != menu.Main {
		t.Fatalf("expected esc to go back to main, got %s", got)
	}
	if now := p.model.Session().Cursor(menu.Main).Now; now != 1 {
		t.Fatalf("expected parent cursor kept, got %d", now)
	}
}

func TestQuitKeyQuits(t *testing.T) {
	p := newTestPanel(t, Config{})
	for _, name := range []string{"q", "ctrl+c"} {
		cmd := p.model.handleKeyMsg(keyMsg(name))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", name)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", name)
		}
	}
}

func TestFullQueueDropsKeys(t *testing.T) {
	p := newTestPanel(t, Config{})
	for i := 0; i < 10; i++ {
		p.h.Key("right")
	}
	if p.queue.Len() != 8 {
		t.Fatalf("expected queue capped at 8, got %d", p.queue.Len())
	}
	if p.model.dropped != 2 {
		t.Fatalf("expected 2 dropped keys, got %d", p.model.dropped)
	}
}

func TestInitSchedulesTickOnlyWhenPeriodic(t *testing.T) {
	p := newTestPanel(t, Config{})
	if cmd := p.model.Init(); cmd != nil {
		t.Fatalf("expected no init command without a watcher or period")
	}
	p = newTestPanel(t, Config{Tick: 10 * time.Millisecond})
	cmd := p.model.Init()
	if cmd == nil {
		t.Fatalf("expected a tick command")
	}
	switch msg := cmd().(type) {
	case tickMsg, tea.BatchMsg:
	default:
		t.Fatalf("unexpected init message %T", msg)
	}
}

func TestWindowSizeRespectsFixedDimensions(t *testing.T) {
	p := newTestPanel(t, Config{Width: 40})
	p.h.Send(tea.WindowSizeMsg{Width: 100, Height: 50})
	if p.model.width != 40 {
		t.Fatalf("fixed width overridden: %d", p.model.width)
	}
	if p.model.height != 50 {
		t.Fatalf("expected height 50, got %d", p.model.height)
	}
}

func TestHandlerForAcceptsPointers(t *testing.T) {
	p := newTestPanel(t, Config{})
	if p.model.handlerFor(&tickMsg{}) == nil {
		t.Fatalf("expected pointer messages to resolve")
	}
	if p.model.handlerFor(struct{}{}) != nil {
		t.Fatalf("unexpected handler for an unknown message")
	}
}
