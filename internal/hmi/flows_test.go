package hmi

import (
	"testing"
	"time"

	"github.com/atomicstack/dwin-panel/internal/config"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/lifecycle"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/settings"
	"github.com/atomicstack/dwin-panel/internal/testutil"
)

func TestStartPrintFromFileList(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.press()
	r.expectActive(menu.File)
	r.cw(1)
	r.press()
	r.expectActive(menu.Printing)
	if r.s.State() != lifecycle.Printing || r.s.File() != "benchy.gcode" {
		t.Fatalf("expected printing benchy.gcode, got %s %q", r.s.State(), r.s.File())
	}
	if r.sink.Count("M23 benchy.gcode") != 1 || r.sink.Count("M24") != 1 {
		t.Fatalf("expected select and start, got %v", r.sink.Lines())
	}
	if r.s.StartPrint("cube.gcode") {
		t.Fatalf("second start accepted while printing")
	}
}

func TestFileListWithoutCard(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.media.SetMounted(false)
	r.tick(1)
	r.press()
	r.expectActive(menu.File)
	if n := len(r.s.lists[menu.File].rows); n != 1 {
		t.Fatalf("expected only the back row, got %d rows", n)
	}
	if r.s.Message() != "No SD card" {
		t.Fatalf("expected no-card message, got %q", r.s.Message())
	}
}

func TestPauseAndResume(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.sink.Update(func(st *printer.Status) { st.Active = true })
	r.tick(1)

	r.cw(1)
	r.press()
	r.expectActive(menu.PopPauseOrStop)
	r.press()
	if r.s.State() != lifecycle.Pausing || r.sink.Count(printer.CmdPause) != 1 {
		t.Fatalf("expected pausing after M25, got %s %v", r.s.State(), r.sink.Lines())
	}
	r.expectActive(menu.Printing)
	if !r.rec.Has("Pausing...") {
		t.Fatalf("expected a pausing banner on the print screen")
	}

	r.sink.Update(func(st *printer.Status) { st.Active = false; st.Paused = true })
	r.tick(1)
	if r.s.State() != lifecycle.Paused {
		t.Fatalf("expected paused once the queue drained, got %s", r.s.State())
	}
	if r.s.lists[menu.Printing].rows[1].label != "Resume" {
		t.Fatalf("pause row not relabelled")
	}

	r.press()
	if r.s.State() != lifecycle.Resuming || r.sink.Count(printer.CmdResume) != 1 {
		t.Fatalf("expected resuming after M24, got %s", r.s.State())
	}
	if !r.rec.Has("Resuming...") {
		t.Fatalf("expected a resuming banner on the print screen")
	}
	r.sink.Update(func(st *printer.Status) { st.Active = true; st.Paused = false })
	r.tick(1)
	if r.s.State() != lifecycle.Printing {
		t.Fatalf("expected printing, got %s", r.s.State())
	}
}

func TestCancelPauseKeepsPrinting(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.cw(1)
	r.press()
	r.cw(1)
	r.press()
	r.expectActive(menu.Printing)
	if r.s.State() != lifecycle.Printing || len(r.sink.Sent()) != 0 {
		t.Fatalf("cancel sent %v in %s", r.sink.Lines(), r.s.State())
	}
}

func TestStopReturnsToIdle(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.cw(2)
	r.press()
	r.expectActive(menu.PopPauseOrStop)
	r.press()
	if r.sink.Count(printer.CmdAbortSD) != 1 {
		t.Fatalf("expected M524, got %v", r.sink.Lines())
	}
	if r.s.State() != lifecycle.Idle {
		t.Fatalf("expected idle after stop, got %s", r.s.State())
	}
	r.expectActive(menu.Main)
}

func TestImpatientPressesKillThePause(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.sink.Update(func(st *printer.Status) { st.Active = true })
	r.cw(1)
	r.press()
	r.press()
	if r.s.State() != lifecycle.Pausing {
		t.Fatalf("expected pausing, got %s", r.s.State())
	}
	wants := []string{"Is processing, please wait!", "Press again to kill"}
	for _, want := range wants {
		r.press()
		if r.s.Message() != want {
			t.Fatalf("expected %q, got %q", want, r.s.Message())
		}
	}
	r.press()
	if r.sink.Aborts() != 1 {
		t.Fatalf("expected one abort, got %d", r.sink.Aborts())
	}
	if r.s.State() != lifecycle.Idle {
		t.Fatalf("expected idle after a kill, got %s", r.s.State())
	}
	r.expectActive(menu.Main)
	if r.s.Message() != "killed printing!!" {
		t.Fatalf("expected kill message, got %q", r.s.Message())
	}
	r.tick(lifecycle.CleanStatusTicks)
	if r.s.Message() != "" {
		t.Fatalf("warning not cleared, got %q", r.s.Message())
	}
}

func TestPrintDoneShowsPopup(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.sink.Update(func(st *printer.Status) { st.Active = true; st.Percent = 40 })
	r.tick(1)
	r.sink.Update(func(st *printer.Status) { st.Active = false; st.Percent = 100 })
	r.tick(1)
	r.expectActive(menu.PopPrintDone)
	if r.s.State() != lifecycle.Stopped {
		t.Fatalf("expected stopped, got %s", r.s.State())
	}
	r.press()
	r.expectActive(menu.Main)
	if r.s.State() != lifecycle.Idle {
		t.Fatalf("expected idle, got %s", r.s.State())
	}
}

func TestPrintDoneNotice(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.sink.Push(printer.Notice{Kind: printer.NoticePrintDone})
	r.tick(1)
	r.expectActive(menu.PopPrintDone)
}

func TestReprintRunsConfiguredTimes(t *testing.T) {
	cfg := settings.Defaults(1)
	cfg.Reprint = settings.Reprint{Enabled: true, Times: 2, Length: 300}
	r := newRigWith(t, config.Capabilities{Extruders: 1, Reprint: true}, cfg, nil)
	r.startJob("vase.gcode")
	for i := 0; i < 3; i++ {
		r.sink.Update(func(st *printer.Status) { st.Active = true; st.Percent = 10 })
		r.tick(1)
		r.sink.Update(func(st *printer.Status) { st.Active = false; st.Percent = 100 })
		r.tick(1)
	}
	if n := r.sink.Count("M23 vase.gcode"); n != 2 {
		t.Fatalf("expected two reprints, got %d", n)
	}
	r.expectActive(menu.PopPrintDone)
}

func TestRunoutFlow(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1, Runout: true})
	r.startJob("cube.gcode")
	notify := func(p printer.PauseMessage) {
		r.sink.Push(printer.Notice{Kind: printer.NoticePause, Pause: p})
		r.tick(1)
	}

	notify(printer.PauseChanging)
	if r.s.State() != lifecycle.RunoutWaiting {
		t.Fatalf("expected runout-waiting, got %s", r.s.State())
	}
	r.expectActive(menu.PopWaiting)

	notify(printer.PauseInsert)
	r.expectActive(menu.PopRunoutConfirm)
	r.press()
	if r.sink.Count(printer.CmdContinue) != 1 {
		t.Fatalf("expected M108, got %v", r.sink.Lines())
	}
	r.expectActive(menu.PopWaiting)

	notify(printer.PauseOption)
	r.expectActive(menu.PopRunoutOption)
	r.press()
	if r.sink.Count(printer.CmdPurgeMore) != 1 {
		t.Fatalf("expected purge more, got %v", r.sink.Lines())
	}
	notify(printer.PauseOption)
	r.cw(1)
	r.press()
	if r.sink.Count(printer.CmdPurgeDone) != 1 {
		t.Fatalf("expected purge done, got %v", r.sink.Lines())
	}

	notify(printer.PauseResume)
	r.expectActive(menu.Printing)
	r.tick(1)
	if r.s.State() != lifecycle.Printing {
		t.Fatalf("expected printing after runout, got %s", r.s.State())
	}
}

func TestParkingNoticeFollowsFirmwarePause(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.sink.Push(printer.Notice{Kind: printer.NoticePause, Pause: printer.PauseParking})
	r.tick(1)
	if r.s.State() != lifecycle.RunoutWaiting {
		t.Fatalf("expected runout-waiting, got %s", r.s.State())
	}
	r.expectActive(menu.PopWaiting)

	r.sink.Push(printer.Notice{Kind: printer.NoticePause, Pause: printer.PauseResume})
	r.tick(2)
	if r.s.State() != lifecycle.Printing {
		t.Fatalf("expected printing after the firmware resumed, got %s", r.s.State())
	}
	r.expectActive(menu.Printing)
}

func TestResumeNoticeRestoresListAfterArmedEdit(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1, Runout: true})
	r.s.enter(menu.Temperature)
	r.cw(1)
	r.press()
	r.expectActive(menu.EditHotendTemp)

	r.sink.Push(printer.Notice{Kind: printer.NoticePause, Pause: printer.PauseChanging})
	r.tick(1)
	r.expectActive(menu.PopWaiting)
	if r.s.Edit() != nil {
		t.Fatalf("expected the armed edit abandoned by the popup")
	}

	r.sink.Push(printer.Notice{Kind: printer.NoticePause, Pause: printer.PauseResume})
	r.tick(1)
	r.expectActive(menu.Temperature)
	r.s.Back()
	if r.s.Active() == menu.Temperature {
		t.Fatalf("expected back to leave the temperature list")
	}
}

func TestMediaRemovalStopsPrint(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.startJob("cube.gcode")
	r.sink.Update(func(st *printer.Status) { st.Active = true })
	r.tick(1)
	r.media.SetMounted(false)
	r.tick(1)
	if r.sink.Aborts() != 1 {
		t.Fatalf("expected an abort, got %d", r.sink.Aborts())
	}
	if r.s.State() != lifecycle.Idle {
		t.Fatalf("expected idle, got %s", r.s.State())
	}
	r.expectActive(menu.Main)
	if r.s.Message() != "SD card removed, print stopped" {
		t.Fatalf("unexpected message %q", r.s.Message())
	}
}

func TestMediaInsertRefreshesFileList(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.press()
	r.media.SetMounted(false)
	r.tick(1)
	if n := len(r.s.lists[menu.File].rows); n != 1 {
		t.Fatalf("expected an empty list after removal, got %d", n)
	}
	r.media.SetFiles("a.gcode", "b.gcode", "c.gcode")
	r.media.SetMounted(true)
	r.tick(1)
	if n := len(r.s.lists[menu.File].rows); n != 4 {
		t.Fatalf("expected three files and back, got %d", n)
	}
}

func TestPowerLossRecoveryResume(t *testing.T) {
	r := newRigWith(t, config.Capabilities{Extruders: 1, PowerLoss: true}, settings.Defaults(1), func(r *rig) {
		r.sink.Update(func(st *printer.Status) { st.Recovery = true })
	})
	r.expectActive(menu.PowerLossResume)
	if r.s.State() != lifecycle.Start {
		t.Fatalf("recovery offer must precede boot, got %s", r.s.State())
	}
	r.press()
	if r.sink.Count(printer.CmdRecoverResume) != 1 {
		t.Fatalf("expected M1000, got %v", r.sink.Lines())
	}
	if r.s.State() != lifecycle.Printing {
		t.Fatalf("expected printing, got %s", r.s.State())
	}
	r.expectActive(menu.Printing)
}

func TestPowerLossRecoveryCancel(t *testing.T) {
	r := newRigWith(t, config.Capabilities{Extruders: 1, PowerLoss: true}, settings.Defaults(1), func(r *rig) {
		r.sink.Push(printer.Notice{Kind: printer.NoticeRecovery, Text: "part.gcode"})
	})
	r.expectActive(menu.PowerLossResume)
	if r.s.recovery != "part.gcode" {
		t.Fatalf("expected recovery file, got %q", r.s.recovery)
	}
	r.cw(1)
	r.press()
	if r.sink.Count(printer.CmdRecoverCancel) != 1 {
		t.Fatalf("expected M1000C, got %v", r.sink.Lines())
	}
	if r.s.State() != lifecycle.Idle {
		t.Fatalf("expected idle, got %s", r.s.State())
	}
	r.expectActive(menu.Main)
}

func TestAutoShutdownAfterIdle(t *testing.T) {
	cfg := settings.Defaults(1)
	cfg.AutoShutdown = true
	r := newRigWith(t, config.Capabilities{Extruders: 1, AutoShutdown: true}, cfg, nil)
	r.tick(AutoShutdownSeconds - 2)
	if r.sink.Count(printer.CmdPowerOff) != 0 {
		t.Fatalf("powered off early")
	}
	r.tick(1)
	if r.sink.Count(printer.CmdPowerOff) != 1 {
		t.Fatalf("expected M81 after %d idle seconds", AutoShutdownSeconds)
	}
}

func TestAutoShutdownWaitsForHeaters(t *testing.T) {
	cfg := settings.Defaults(1)
	cfg.AutoShutdown = true
	r := newRigWith(t, config.Capabilities{Extruders: 1, AutoShutdown: true}, cfg, nil)
	r.sink.Update(func(st *printer.Status) { st.Bed.Target = 60 })
	r.tick(AutoShutdownSeconds + 5)
	if r.sink.Count(printer.CmdPowerOff) != 0 {
		t.Fatalf("powered off with a hot bed")
	}
}

func TestWiFiTimesOut(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1, WiFi: true})
	r.s.enter(menu.Config)
	r.cw(1)
	r.press()
	r.expectActive(menu.PopWiFi)
	r.tick(wifiTimeoutSecs + 1)
	if r.s.wifi != wifiFailed || r.s.Settings().WiFi {
		t.Fatalf("expected failed wifi, got state %d", r.s.wifi)
	}
	r.tick(wifiFailHoldSecs + 1)
	r.expectActive(menu.Config)
}

func TestWiFiConnects(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1, WiFi: true})
	r.s.toggleWiFi()
	r.sink.Push(printer.Notice{Kind: printer.NoticeMessage, Text: "WIFI OK"})
	r.tick(1)
	if r.s.wifi != wifiConnected {
		t.Fatalf("expected connected, got %d", r.s.wifi)
	}
	r.press()
	r.expectActive(menu.Main)
	if !r.s.Settings().WiFi {
		t.Fatalf("wifi setting should stay on")
	}
}

func TestAutoLevelProgress(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1, Probe: true})
	r.s.autoLevel()
	r.expectActive(menu.PopLeveling)
	r.sink.Push(printer.Notice{Kind: printer.NoticeLeveling, Leveling: printer.LevelingPoint, Point: 3, Total: 16})
	r.tick(1)
	if !r.rec.Has("Point 3/16") {
		t.Fatalf("leveling progress not drawn")
	}
	r.sink.Push(printer.Notice{Kind: printer.NoticeLeveling, Leveling: printer.LevelingDone})
	r.tick(1)
	r.expectActive(menu.PopLevelingDone)
	r.press()
	r.expectActive(menu.Leveling)
	if r.sink.Count(printer.CmdSaveSettings) != 1 {
		t.Fatalf("expected mesh saved, got %v", r.sink.Lines())
	}
}

func TestHomingPopupReturnsWhenQueueDrains(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.enter(menu.Home)
	r.sink.Update(func(st *printer.Status) { st.QueueEmpty = false })
	r.cw(1)
	r.press()
	r.expectActive(menu.PopHome)
	r.tick(1)
	r.expectActive(menu.PopHome)
	r.sink.Update(func(st *printer.Status) { st.QueueEmpty = true })
	r.tick(1)
	r.expectActive(menu.Home)
	if r.sink.Count("G28") != 1 {
		t.Fatalf("expected G28, got %v", r.sink.Lines())
	}
}

func TestMixMustTotalHundred(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 3, Mixing: true})
	r.s.enter(menu.MixManual)
	r.cw(1)
	r.press()
	r.cw(1)
	r.press()
	r.s.applyMix()
	if r.sink.HasPrefix("M163") {
		t.Fatalf("applied a mix that does not total 100")
	}
	r.s.mix = []int{50, 25, 25}
	r.s.applyMix()
	if r.sink.Count("M163 S0 P50") != 1 || r.sink.Count("M164 S0") != 1 {
		t.Fatalf("expected mix factors, got %v", r.sink.Lines())
	}
}

func TestRemainingExcludesHeatup(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 1})
	r.s.heatSecs = 60
	st := printer.Status{Percent: 25, Elapsed: 160 * time.Second}
	if got := r.s.remaining(st); got != 300*time.Second {
		t.Fatalf("expected 5m remaining, got %s", got)
	}
	if got := r.s.remaining(printer.Status{}); got != 0 {
		t.Fatalf("expected zero without progress, got %s", got)
	}
}

func TestSelfTestWalksEveryCheck(t *testing.T) {
	r := newRig(t, config.Capabilities{Extruders: 2})
	r.s.EnterSelfTest()
	r.expectActive(menu.SelfTest)
	r.tick(1)
	r.sink.Update(func(st *printer.Status) { st.Hotends[0].Current = 30 })
	r.tick(1)
	r.sink.Update(func(st *printer.Status) { st.Bed.Current = 30 })
	r.tick(1)
	r.tick(fanSeconds + 2*jogMoves + 1)
	if r.s.selfTest.step != testKnob {
		t.Fatalf("expected the knob check, got step %d", r.s.selfTest.step)
	}
	r.cw(knobTurns + 1)
	r.send(testutil.Repeat(input.Press, knobPresses+1)...)
	if r.s.selfTest.step != testDone {
		t.Fatalf("expected done, got step %d", r.s.selfTest.step)
	}
	for _, res := range r.s.selfTest.results {
		if !res.ok {
			t.Fatalf("%s failed", testNames[res.step])
		}
	}
	if r.sink.Count(printer.CmdColdExtrudeOn) != 1 || r.sink.Count("T1") != 1 {
		t.Fatalf("extruder check incomplete: %v", r.sink.Lines())
	}
	r.press()
	if r.s.SelfTestRunning() {
		t.Fatalf("self-test still running")
	}
	r.expectActive(menu.Main)
}
