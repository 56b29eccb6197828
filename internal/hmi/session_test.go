package hmi

import (
	"testing"

	"github.com/atomicstack/dwin-panel/internal/config"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/lifecycle"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/state"
	uistate "github.com/atomicstack/dwin-panel/internal/ui/state"
)

func TestBootShowsMain(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.expectActive(menu.Main)
	if r.s.State() != lifecycle.Idle {
		t.Fatalf("expected idle after boot, got %s", r.s.State())
	}
	if !r.rec.Has("Print") || !r.rec.Has("Info") {
		t.Fatalf("main menu rows not drawn")
	}
	if r.rec.Has("Leveling") {
		t.Fatalf("leveling row drawn without a probe")
	}
	if r.rec.Flushes == 0 {
		t.Fatalf("expected a flush after boot")
	}
}

func TestHotendFieldClampsToBounds(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.Temperature)
	r.cw(1)
	r.press()
	r.expectActive(menu.EditHotendTemp)
	r.ccw(3)
	if v := r.s.Edit().Value; v != 0 {
		t.Fatalf("expected value pinned at 0, got %d", v)
	}
	r.press()
	if r.sink.Count("M104 T0 S0") != 1 {
		t.Fatalf("expected the pinned value written once, got %v", r.sink.Lines())
	}

	r.sink.Update(func(st *printer.Status) { st.Hotends[0].Target = maxHotend - 1 })
	r.s.enter(menu.Temperature)
	r.cw(1)
	r.press()
	r.cw(5)
	if v := r.s.Edit().Value; v != maxHotend {
		t.Fatalf("expected value pinned at %d, got %d", maxHotend, v)
	}
	r.press()
	if r.sink.Count("M104 T0 S275") != 1 {
		t.Fatalf("expected one clamped write, got %v", r.sink.Lines())
	}
}

func TestMoveAxisReachesTravelLimit(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.MoveAxis)
	r.cw(1)
	r.press()
	r.expectActive(menu.EditMoveX)
	upper := r.s.Edit().Field.Max
	r.cw(upper + 500)
	if v := r.s.Edit().Value; v != upper {
		t.Fatalf("expected value pinned at %d, got %d", upper, v)
	}
	r.press()
	if r.sink.Count("G1 X235.0 F3000") != 1 {
		t.Fatalf("expected one move to the limit, got %v", r.sink.Lines())
	}
}

func TestListScrollKeepsCursorVisible(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.Prepare)
	rows := len(r.s.lists[menu.Prepare].rows)
	c := r.s.Cursor(menu.Prepare)
	check := func() {
		t.Helper()
		if c.Offset < c.Rows() || c.Now < c.Offset-c.Rows() || c.Now > c.Offset {
			t.Fatalf("cursor %d outside window offset=%d rows=%d", c.Now, c.Offset, c.Rows())
		}
	}
	r.rec.Reset()
	for i := 0; i < rows+2; i++ {
		r.cw(1)
		check()
	}
	if c.Now != rows-1 {
		t.Fatalf("expected cursor pinned at %d, got %d", rows-1, c.Now)
	}
	scrolls := r.rec.Count("scroll")
	if want := rows - 1 - uistate.VisibleRows; scrolls != want {
		t.Fatalf("expected %d scrolls, got %d", want, scrolls)
	}
	for i := 0; i < rows+2; i++ {
		r.ccw(1)
		check()
	}
	if c.Now != 0 || !c.BackVisible() {
		t.Fatalf("expected back row visible at top, got now=%d offset=%d", c.Now, c.Offset)
	}
}

func TestBackRevertsArmedEdit(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.Temperature)
	r.cw(2)
	r.press()
	r.expectActive(menu.EditBedTemp)
	r.cw(2)
	r.sink.Clear()
	r.s.Back()
	r.expectActive(menu.Temperature)
	if r.s.Edit() != nil {
		t.Fatalf("edit still armed after back")
	}
	if r.sink.HasPrefix("M140") {
		t.Fatalf("reverted edit wrote %v", r.sink.Lines())
	}
}

func TestScreenChangeDiscardsArmedEdit(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.Temperature)
	r.cw(3)
	r.press()
	r.expectActive(menu.EditFanSpeed)
	r.cw(4)
	r.sink.Push(printer.Notice{Kind: printer.NoticePause, Pause: printer.PauseParking})
	r.tick(1)
	r.expectActive(menu.PopWaiting)
	if r.s.Edit() != nil || r.sink.HasPrefix("M106") {
		t.Fatalf("edit survived a popup: %v", r.sink.Lines())
	}
}

func TestCommitWritesExactlyOnce(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.Temperature)
	r.cw(2)
	r.press()
	r.cw(2)
	r.press()
	r.expectActive(menu.Temperature)
	if n := r.sink.Count("M140 S2"); n != 1 {
		t.Fatalf("expected one bed write, got %d in %v", n, r.sink.Lines())
	}
	r.press()
	r.expectActive(menu.EditBedTemp)
	if v := r.s.Edit().Value; v != 2 {
		t.Fatalf("re-armed field should read the committed value, got %d", v)
	}
	r.press()
	if n := r.sink.Count("M140 S2"); n != 2 {
		t.Fatalf("expected second commit to write again, got %d", n)
	}
}

func TestReenteringListHomesCursor(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.cw(1)
	r.press()
	r.expectActive(menu.Prepare)
	r.cw(8)
	r.s.Back()
	r.expectActive(menu.Main)
	if c := r.s.Cursor(menu.Main); c.Now != 1 {
		t.Fatalf("parent cursor lost its row, got %d", c.Now)
	}
	r.press()
	c := r.s.Cursor(menu.Prepare)
	if c.Now != 0 || c.Offset != c.Rows() {
		t.Fatalf("expected a fresh cursor, got now=%d offset=%d", c.Now, c.Offset)
	}
	r.press()
	r.expectActive(menu.Main)
}

func TestUnknownScreenIsIgnored(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.rec.Reset()
	r.s.show(menu.ID(250))
	r.s.show(menu.PopWiFi)
	r.s.enter(menu.PowerLossResume)
	if len(r.rec.Ops) != 0 {
		t.Fatalf("unregistered screens drew %d ops", len(r.rec.Ops))
	}
	r.expectActive(menu.Main)
	if r.s.Registry().Dispatch(menu.ID(250), input.Press) {
		t.Fatalf("dispatch to an unknown id ran a handler")
	}
}

func TestFullCapabilitiesRegisterEveryScreen(t *testing.T) {
	r := newRig(t, config.Full())
	for _, id := range menu.All() {
		if _, ok := r.s.Registry().Find(id); !ok {
			t.Fatalf("%s not registered", id)
		}
	}
	for _, id := range menu.All() {
		r.s.show(id)
		if r.s.Active() != id {
			t.Fatalf("could not show %s", id)
		}
	}
}

func TestPlainCapabilitiesSkipOptionalScreens(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	for _, id := range []menu.ID{menu.Mixer, menu.Retract, menu.Reprint, menu.PopWiFi, menu.PowerLossResume, menu.PopLeveling, menu.EditProbeOffset} {
		if _, ok := r.s.Registry().Find(id); ok {
			t.Fatalf("%s registered without its capability", id)
		}
	}
}

func TestStoreAndLoadSettings(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.PreheatPLA)
	r.cw(1)
	r.press()
	r.cw(3)
	r.press()
	if got := r.s.Settings().PLA.Hotend; got != 203 {
		t.Fatalf("expected preset 203, got %d", got)
	}
	r.s.storeSettings()
	if r.store.Saved == nil || r.store.Saved.PLA.Hotend != 203 {
		t.Fatalf("settings not saved: %+v", r.store.Saved)
	}
	if r.sink.Count(printer.CmdSaveSettings) != 1 || !r.sink.HasPrefix("M300 S659") {
		t.Fatalf("expected M500 and a beep, got %v", r.sink.Lines())
	}
	r.s.resetSettings()
	if got := r.s.Settings().PLA.Hotend; got != 200 {
		t.Fatalf("reset should restore defaults, got %d", got)
	}
	r.s.loadSettings()
	if got := r.s.Settings().PLA.Hotend; got != 203 {
		t.Fatalf("load should restore the saved preset, got %d", got)
	}
}

func TestMoveWaitsForFullQueue(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.MoveAxis)
	r.cw(1)
	r.press()
	r.cw(1)
	r.sink.SetFull(true)
	r.press()
	if r.sink.Syncs() != 1 {
		t.Fatalf("expected one synchronize, got %d", r.sink.Syncs())
	}
	if r.sink.Count("G1 X0.1 F3000") != 1 {
		t.Fatalf("move not sent after drain: %v", r.sink.Lines())
	}
}

func TestMoveReportsBusyWhenDrainFails(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.MoveAxis)
	r.cw(2)
	r.press()
	r.cw(1)
	r.sink.SetFull(true)
	r.sink.SetSyncErr(printer.ErrQueueFull)
	r.press()
	if r.sink.HasPrefix("G1 Y") {
		t.Fatalf("move sent into a full queue")
	}
	if r.s.Message() != "Printer busy, try again" {
		t.Fatalf("expected busy message, got %q", r.s.Message())
	}
}

func TestColdExtrusionIsRefused(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.MoveAxis)
	r.cw(4)
	r.press()
	r.expectActive(menu.PopETempTooLow)
	if r.s.Edit() != nil {
		t.Fatalf("extruder armed while cold")
	}
	r.press()
	r.expectActive(menu.MoveAxis)

	r.sink.Update(func(st *printer.Status) { st.Hotends[0] = stateThermal(MinExtrudeTemp+10, 200) })
	r.press()
	r.expectActive(menu.EditMoveE)
	r.cw(2)
	r.press()
	if r.sink.Count("G1 E0.2 F100") != 1 {
		t.Fatalf("expected a 0.2 mm extrude, got %v", r.sink.Lines())
	}
}

func stateThermal(current, target float64) state.Thermal {
	return state.Thermal{Current: current, Target: target}
}
