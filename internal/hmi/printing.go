package hmi

import (
	"fmt"
	"time"

	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/lifecycle"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/surface"
)

// StartPrint starts name from the card. It only works from Idle.
func (s *Session) StartPrint(name string) bool {
	if s.machine.State() != lifecycle.Idle {
		s.setMessage("Printer is busy", surface.Red)
		return false
	}
	if !s.send(printer.StartPrint(name)) {
		return false
	}
	s.beginJob(name)
	s.machine.Fire(lifecycle.StartPrint)
	s.enter(menu.Printing)
	return true
}

func (s *Session) beginJob(name string) {
	s.file = name
	s.seenActive = false
	s.heatSecs = 0
	s.stopReason = stopUser
	s.reprintLeft = 0
	if s.opts.Caps.Reprint && s.cfg.Reprint.Enabled {
		s.reprintLeft = s.cfg.Reprint.Times
	}
	s.zOffset = 0
	events.Lifecycle.Flow("start", name)
}

func (s *Session) pressPause() {
	switch s.machine.State() {
	case lifecycle.Printing:
		s.pending = pendingPause
		s.openChoice(menu.PopPauseOrStop)
	case lifecycle.Paused:
		if s.machine.Aborted() || !s.send(printer.CmdResume) {
			return
		}
		s.machine.Fire(lifecycle.Resume)
		s.show(menu.Printing)
	}
}

func (s *Session) pressStop() {
	switch s.machine.State() {
	case lifecycle.Printing, lifecycle.Paused, lifecycle.RunoutWaiting:
		s.pending = pendingStop
		s.openChoice(menu.PopPauseOrStop)
	}
}

func (s *Session) confirmPauseOrStop() {
	switch s.pending {
	case pendingPause:
		if s.machine.State() == lifecycle.Printing && s.send(printer.CmdPause) {
			s.machine.Fire(lifecycle.Pause)
		}
	case pendingStop:
		if s.send(printer.CmdAbortSD) {
			s.stopReason = stopUser
			s.machine.Fire(lifecycle.Stop)
		}
	}
	s.show(menu.Printing)
	s.settleStop()
}

// printingGuard swallows presses while a pause or resume is settling and
// escalates towards a forced abort.
func (s *Session) printingGuard(ev input.Event) bool {
	if ev != input.Press || !s.machine.Busy() {
		return false
	}
	s.impatient()
	return true
}

func (s *Session) impatient() {
	w := s.machine.Impatient()
	if w == lifecycle.WarnNone {
		return
	}
	s.setMessage(w.Message(), surface.Red)
	s.warning = true
	if w != lifecycle.WarnKilled {
		return
	}
	s.sink.Abort()
	s.stopReason = stopAbort
	events.Lifecycle.Flow("killed", s.file)
	s.settleStop()
}

func (s *Session) drawProgress() {
	if s.active != menu.Printing {
		return
	}
	st := s.status()
	// Progress sits below the three action rows.
	top := rowY(3)
	s.surf.FillRect(surface.BgBlack, surface.Rect{X0: 8, Y0: top, X1: surface.Width - 1, Y1: listArea.Y1})
	s.surf.Text(surface.White, surface.BgBlack, 16, top+8, s.file)
	if banner := stateBanner(s.machine.State()); banner != "" {
		s.surf.Text(surface.Yellow, surface.BgBlack, 16, top+24, banner)
	}
	pct := st.Percent
	if pct > 100 {
		pct = 100
	}
	s.surf.Text(surface.Percent, surface.BgBlack, 16, top+40, fmt.Sprintf("Progress %3d%%", pct))
	bar := surface.Rect{X0: 16, Y0: top + 64, X1: surface.Width - 17, Y1: top + 75}
	s.surf.FillRect(surface.BgWindow, bar)
	if pct > 0 {
		fill := bar
		fill.X1 = bar.X0 + (bar.X1-bar.X0)*pct/100
		s.surf.FillRect(surface.BarFill, fill)
	}
	s.surf.Text(surface.White, surface.BgBlack, 16, top+88,
		fmt.Sprintf("%s  left %s", clock(st.Elapsed), clock(s.remaining(st))))
}

// stateBanner names the in-between lifecycle states on the print screen.
func stateBanner(st lifecycle.State) string {
	switch st {
	case lifecycle.Pausing:
		return "Pausing..."
	case lifecycle.Paused:
		return "Paused"
	case lifecycle.Resuming:
		return "Resuming..."
	case lifecycle.RunoutWaiting:
		return "Filament runout"
	case lifecycle.Stopped:
		return "Stopping..."
	}
	return ""
}

// remaining estimates the time left from print time excluding heat-up.
func (s *Session) remaining(st printer.Status) time.Duration {
	if st.Percent <= 0 {
		return 0
	}
	working := st.Elapsed - time.Duration(s.heatSecs)*time.Second
	if working <= 0 {
		return 0
	}
	total := working * 100 / time.Duration(st.Percent)
	return total - working
}
