package hmi

import (
	"fmt"

	"github.com/atomicstack/dwin-panel/internal/lifecycle"
	"github.com/atomicstack/dwin-panel/internal/logging"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/surface"
)

// AutoShutdownSeconds is the idle time on Main or PrintDone before M81.
const AutoShutdownSeconds = 900

const (
	wifiTimeoutSecs  = 12
	wifiFailHoldSecs = 3
)

type wifiState uint8

const (
	wifiIdle wifiState = iota
	wifiConnecting
	wifiFailed
	wifiConnected
)

// background runs before input is read on every tick. The status part runs
// once per StatusTicks.
func (s *Session) background() {
	if n, ok := s.sink.(printer.Notifier); ok {
		for _, notice := range n.Notices() {
			s.Notify(notice)
		}
	}
	if !s.booted {
		s.boot()
	}
	st := s.status()
	s.followJob(st)
	s.settleStop()
	if s.active == menu.PopHome && st.QueueEmpty {
		s.show(s.popupReturn)
	}
	if s.ticks%s.opts.StatusTicks == 0 {
		s.statusTick(st)
	}
	s.ticks++
}

func (s *Session) boot() {
	s.booted = true
	s.refreshFiles()
	if s.opts.Caps.PowerLoss && s.status().Recovery {
		s.offerRecovery("")
		return
	}
	s.machine.Fire(lifecycle.Boot)
	s.enter(menu.Main)
}

func (s *Session) statusTick(st printer.Status) {
	if s.machine.StatusTick() && s.warning {
		s.clearMessage()
	}
	if s.messageSecs > 0 {
		s.messageSecs--
		if s.messageSecs == 0 && !s.warning && s.message != "" {
			s.clearMessage()
		}
	}
	if st.WaitingHeatup && s.printing() {
		s.heatSecs++
	}
	s.autoShutdown(st)
	s.wifiTick()
	s.pollMedia()
	if s.lists[s.active] != nil || s.active.IsEdit() {
		s.drawStatus()
	}
	if s.active == menu.Printing {
		s.drawProgress()
	}
}

// followJob completes asynchronous lifecycle transitions from the polled
// sink flags and detects the end of the job.
func (s *Session) followJob(st printer.Status) {
	if st.Active {
		s.seenActive = true
	}
	if s.machine.State() == lifecycle.Printing && s.seenActive && !st.Active && !st.Paused && st.Percent >= 100 {
		s.finishJob()
		return
	}
	sig := lifecycle.Signals{
		Active:        st.Active,
		Paused:        st.Paused,
		QueueEmpty:    st.QueueEmpty,
		WaitingHeatup: st.WaitingHeatup,
	}
	if !s.machine.Poll(sig) {
		return
	}
	switch {
	case s.active == menu.Printing:
		s.show(menu.Printing)
	case s.machine.State() == lifecycle.Printing && s.active.IsPopup() && isPausePopup(s.active):
		s.enter(menu.Printing)
	}
}

func (s *Session) finishJob() {
	if s.machine.State() != lifecycle.Printing {
		return
	}
	s.stopReason = stopDone
	s.machine.Fire(lifecycle.Stop)
	events.Lifecycle.Flow("print-done", s.file)
	s.settleStop()
}

// settleStop moves a stopped machine on: reprint, the done popup, or back
// to idle.
func (s *Session) settleStop() {
	if s.machine.State() != lifecycle.Stopped {
		return
	}
	switch {
	case s.stopReason == stopDone && s.reprintPending():
		if !s.sink.Enqueue(printer.StartPrint(s.file)) {
			return
		}
		s.reprintLeft--
		s.seenActive = false
		s.heatSecs = 0
		s.machine.Fire(lifecycle.Reprint)
		events.Lifecycle.Flow("reprint", fmt.Sprintf("%s (%d left)", s.file, s.reprintLeft))
		s.enter(menu.Printing)
	case s.stopReason == stopDone:
		if s.active != menu.PopPrintDone {
			s.show(menu.PopPrintDone)
		}
	default:
		s.machine.Fire(lifecycle.Cleanup)
		s.enter(menu.Main)
	}
}

func (s *Session) reprintPending() bool {
	return s.opts.Caps.Reprint && s.cfg.Reprint.Enabled && s.reprintLeft > 0
}

// printing reports whether a job is loaded in any state.
func (s *Session) printing() bool {
	switch s.machine.State() {
	case lifecycle.Printing, lifecycle.Pausing, lifecycle.Paused, lifecycle.Resuming,
		lifecycle.RunoutWaiting, lifecycle.RunoutDone:
		return true
	}
	return false
}

// Notify reacts to an unsolicited firmware message.
func (s *Session) Notify(n printer.Notice) {
	switch n.Kind {
	case printer.NoticePause:
		s.pauseNotice(n.Pause)
	case printer.NoticeMessage:
		if s.wifi == wifiConnecting {
			s.wifi = wifiConnected
			events.Lifecycle.Flow("wifi", "connected")
			if s.active == menu.PopWiFi {
				s.reg.Draw(menu.PopWiFi)
			}
			return
		}
		s.setMessage(n.Text, surface.White)
	case printer.NoticeLeveling:
		s.levelingNotice(n)
	case printer.NoticePrintDone:
		s.finishJob()
	case printer.NoticeRecovery:
		if !s.opts.Caps.PowerLoss || s.active == menu.PowerLossResume {
			return
		}
		if st := s.machine.State(); st == lifecycle.Start || st == lifecycle.Idle {
			s.offerRecovery(n.Text)
		}
	}
}

func (s *Session) levelingNotice(n printer.Notice) {
	if !s.opts.Caps.Probe {
		return
	}
	switch n.Leveling {
	case printer.LevelingStart:
		s.levelPoint, s.levelTotal = 0, 0
		if s.active != menu.PopLeveling {
			s.show(menu.PopLeveling)
		}
	case printer.LevelingPoint:
		s.levelPoint, s.levelTotal = n.Point, n.Total
		if s.active == menu.PopLeveling {
			s.reg.Draw(menu.PopLeveling)
		}
	case printer.LevelingDone:
		if s.active == menu.PopLeveling {
			s.show(menu.PopLevelingDone)
		}
	}
}

func (s *Session) autoShutdown(st printer.Status) {
	if !s.opts.Caps.AutoShutdown || !s.cfg.AutoShutdown || (s.active != menu.Main && s.active != menu.PopPrintDone) {
		s.shutdownSecs = 0
		return
	}
	hot := st.Bed.Target > 25
	for _, h := range st.Hotends {
		if h.Target > 50 {
			hot = true
		}
	}
	if hot {
		s.shutdownSecs = 0
		return
	}
	s.shutdownSecs++
	if s.shutdownSecs < AutoShutdownSeconds {
		return
	}
	s.shutdownSecs = 0
	if s.send(printer.CmdPowerOff) {
		events.Lifecycle.Flow("auto-shutdown", "idle")
		s.setMessage("Idle, powering off", surface.Yellow)
	}
}

func (s *Session) toggleWiFi() {
	if s.cfg.WiFi {
		s.cfg.WiFi = false
		s.wifi = wifiIdle
		return
	}
	s.cfg.WiFi = true
	s.wifi = wifiConnecting
	s.wifiSecs = 0
	s.show(menu.PopWiFi)
}

func (s *Session) wifiTick() {
	switch s.wifi {
	case wifiConnecting:
		s.wifiSecs++
		if s.wifiSecs <= wifiTimeoutSecs {
			return
		}
		s.wifi = wifiFailed
		s.wifiSecs = 0
		s.cfg.WiFi = false
		events.Lifecycle.Flow("wifi", "timeout")
		if s.active == menu.PopWiFi {
			s.reg.Draw(menu.PopWiFi)
		}
	case wifiFailed:
		s.wifiSecs++
		if s.wifiSecs <= wifiFailHoldSecs {
			return
		}
		s.wifi = wifiIdle
		if s.active == menu.PopWiFi {
			s.show(menu.Config)
		}
	}
}

func (s *Session) pollMedia() {
	if s.media == nil {
		return
	}
	mounted := s.media.Mounted()
	if mounted == s.mounted {
		return
	}
	var files []string
	if mounted {
		files = s.listFiles()
	}
	s.MediaChanged(mounted, files)
}

func (s *Session) refreshFiles() {
	if s.media == nil {
		return
	}
	s.mounted = s.media.Mounted()
	s.files = nil
	if s.mounted {
		s.files = s.listFiles()
	}
}

func (s *Session) listFiles() []string {
	files, err := s.media.List()
	if err != nil {
		logging.Error(fmt.Errorf("list media: %w", err))
	}
	return files
}

// MediaChanged applies a new card state. Pulling the card during a job
// stops it.
func (s *Session) MediaChanged(mounted bool, files []string) {
	changed := mounted != s.mounted
	s.mounted = mounted
	s.files = append([]string(nil), files...)
	events.Backend.Media(mounted, len(files))
	if !changed {
		if s.active == menu.File {
			s.show(menu.File)
		}
		return
	}
	if !mounted && s.printing() {
		s.sink.Abort()
		s.stopReason = stopMedia
		if s.machine.Busy() {
			s.machine.Fire(lifecycle.Abort)
		} else {
			s.machine.Fire(lifecycle.Stop)
		}
		events.Lifecycle.Flow("media-removed", s.file)
		s.settleStop()
		s.setMessage("SD card removed, print stopped", surface.Red)
		return
	}
	if s.active == menu.File {
		s.cursors[menu.File].Home()
		s.show(menu.File)
	}
	if mounted {
		s.setMessage("SD card inserted", surface.White)
	} else {
		s.setMessage("No SD card", surface.Red)
	}
}
