package hmi

import (
	"fmt"

	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/lifecycle"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/surface"
)

var waitTexts = map[printer.PauseMessage][2]string{
	printer.PauseParking:  {"Parking", "Please wait"},
	printer.PauseChanging: {"Filament change", "Please wait"},
	printer.PauseWaiting:  {"Waiting", "Please wait"},
	printer.PauseUnload:   {"Unloading", "Please wait"},
	printer.PauseLoad:     {"Loading", "Please wait"},
	printer.PausePurge:    {"Purging", "Please wait"},
	printer.PauseHeating:  {"Heating nozzle", "Please wait"},
	printer.PauseHeat:     {"Nozzle timed out", "Press to reheat"},
	printer.PauseResume:   {"Resuming", "Please wait"},
}

func (s *Session) addPopup(id menu.ID, draw func(), handle func(input.Event)) {
	s.reg.Register(id, draw, handle)
}

func (s *Session) registerPopups() {
	caps := s.opts.Caps

	s.addPopup(menu.PopPauseOrStop, func() {
		if s.pending == pendingStop {
			s.drawPopup("Stop print?", s.file)
		} else {
			s.drawPopup("Pause print?", s.file)
		}
		s.drawButtons("Confirm", "Cancel")
	}, s.choiceHandler(s.confirmPauseOrStop, func() { s.show(menu.Printing) }))

	s.addPopup(menu.PopPrintDone, func() {
		s.drawPopup("Print finished", s.file)
		s.drawButtons("OK")
	}, func(ev input.Event) {
		if ev != input.Press {
			return
		}
		s.machine.Fire(lifecycle.Cleanup)
		s.enter(menu.Main)
	})

	s.addPopup(menu.PopPowerdown, func() {
		s.drawPopup("Power down?", "The printer will", "switch off")
		s.drawButtons("Confirm", "Cancel")
	}, s.choiceHandler(func() {
		if s.send(printer.CmdPowerOff) {
			events.Lifecycle.Flow("power-down", "user")
		}
		s.enter(menu.Main)
	}, func() { s.show(menu.Prepare) }))

	s.addPopup(menu.PopHome, func() {
		s.drawPopup("Homing", "Please wait")
	}, nil)

	s.addPopup(menu.PopETempTooLow, func() {
		s.drawPopup("Nozzle too cold", fmt.Sprintf("Heat above %d C", MinExtrudeTemp), "before extruding")
		s.drawButtons("OK")
	}, func(ev input.Event) {
		if ev == input.Press {
			s.show(s.popupReturn)
		}
	})

	s.addPopup(menu.PopRunoutOption, func() {
		s.drawPopup("Purge more?", "Check the extruded", "filament color")
		s.drawButtons("Purge", "Continue")
	}, s.choiceHandler(func() {
		if s.send(printer.CmdPurgeMore) {
			s.wait(printer.PausePurge)
		}
	}, func() {
		if s.send(printer.CmdPurgeDone) {
			s.wait(printer.PauseResume)
		}
	}))

	s.addPopup(menu.PopRunoutConfirm, func() {
		s.drawPopup("Insert filament", "then press to", "continue")
		s.drawButtons("Continue")
	}, func(ev input.Event) {
		if ev == input.Press && s.send(printer.CmdContinue) {
			s.wait(printer.PauseLoad)
		}
	})

	s.addPopup(menu.PopWaiting, func() {
		t := waitTexts[s.waitFor]
		s.drawPopup(t[0], t[1])
		if s.waitFor == printer.PauseHeat {
			s.drawButtons("Reheat")
		}
	}, func(ev input.Event) {
		if ev == input.Press && s.waitFor == printer.PauseHeat && s.send(printer.CmdContinue) {
			s.wait(printer.PauseHeating)
		}
	})

	s.addPopup(menu.SelfTest, s.drawSelfTest, nil)

	if caps.Probe {
		s.addPopup(menu.PopLeveling, func() {
			if s.levelTotal > 0 {
				s.drawPopup("Auto leveling", fmt.Sprintf("Point %d/%d", s.levelPoint, s.levelTotal))
				return
			}
			s.drawPopup("Auto leveling", "Please wait")
		}, nil)
		s.addPopup(menu.PopLevelingDone, func() {
			s.drawPopup("Leveling done", "Save the mesh?")
			s.drawButtons("Save")
		}, func(ev input.Event) {
			if ev != input.Press {
				return
			}
			if s.send(printer.CmdSaveSettings) {
				s.setMessage("Mesh saved", surface.Green)
			}
			s.enter(menu.Leveling)
		})
	}

	if caps.WiFi {
		s.addPopup(menu.PopWiFi, func() {
			switch s.wifi {
			case wifiConnected:
				s.drawPopup("Wi-Fi", "Connected")
				s.drawButtons("OK")
			case wifiFailed:
				s.drawPopup("Wi-Fi", "Connection failed")
			default:
				s.drawPopup("Wi-Fi", "Connecting...")
			}
		}, func(ev input.Event) {
			if ev != input.Press || s.wifi != wifiConnected {
				return
			}
			s.wifi = wifiIdle
			s.enter(menu.Main)
		})
	}

	if caps.PowerLoss {
		s.addPopup(menu.PowerLossResume, func() {
			name := s.recovery
			if name == "" {
				name = "last job"
			}
			s.drawPopup("Power loss", "Resume "+name+"?")
			s.drawButtons("Resume", "Cancel")
		}, s.choiceHandler(func() { s.resumeRecovery(true) }, func() { s.resumeRecovery(false) }))
	}
}

// openChoice shows a two-button popup with the first button selected.
func (s *Session) openChoice(id menu.ID) {
	s.choice.Home()
	s.show(id)
}

func (s *Session) choiceHandler(confirm, cancel func()) func(input.Event) {
	return func(ev input.Event) {
		switch ev {
		case input.CW:
			if s.choice.Inc(2) {
				s.reg.Draw(s.active)
			}
		case input.CCW:
			if s.choice.Dec() {
				s.reg.Draw(s.active)
			}
		case input.Press:
			if s.choice.Now == 0 {
				confirm()
			} else {
				cancel()
			}
		}
	}
}

func (s *Session) offerRecovery(file string) {
	if !s.booted {
		s.booted = true
		s.refreshFiles()
	}
	s.recovery = file
	s.openChoice(menu.PowerLossResume)
}

func (s *Session) resumeRecovery(resume bool) {
	if s.machine.State() == lifecycle.Start {
		s.machine.Fire(lifecycle.Boot)
	}
	if !resume {
		s.send(printer.CmdRecoverCancel)
		events.Lifecycle.Flow("recovery", "cancelled")
		s.enter(menu.Main)
		return
	}
	if !s.send(printer.CmdRecoverResume) {
		return
	}
	s.beginJob(s.recovery)
	s.machine.Fire(lifecycle.StartPrint)
	events.Lifecycle.Flow("recovery", "resumed")
	s.enter(menu.Printing)
}

// wait shows the filament-change progress popup for p.
func (s *Session) wait(p printer.PauseMessage) {
	s.rememberPauseReturn()
	s.waitFor = p
	s.show(menu.PopWaiting)
}

// rememberPauseReturn records the screen to restore once the firmware
// resumes. An armed edit is abandoned by the popup, so its list is kept.
func (s *Session) rememberPauseReturn() {
	switch {
	case isPausePopup(s.active):
	case s.active.IsEdit() && s.edit != nil:
		s.pauseReturn = s.edit.Parent
	case s.active.IsEdit():
		s.pauseReturn = menu.Main
	default:
		s.pauseReturn = s.active
	}
}

func isPausePopup(id menu.ID) bool {
	switch id {
	case menu.PopWaiting, menu.PopRunoutOption, menu.PopRunoutConfirm:
		return true
	}
	return false
}

// pauseNotice follows the firmware through a pause or filament change.
func (s *Session) pauseNotice(p printer.PauseMessage) {
	switch p {
	case printer.PauseParking, printer.PauseHeating, printer.PauseHeat,
		printer.PauseChanging, printer.PauseWaiting, printer.PauseUnload, printer.PauseLoad, printer.PausePurge:
		s.runout()
		s.wait(p)
	case printer.PauseInsert:
		s.runout()
		s.rememberPauseReturn()
		s.show(menu.PopRunoutConfirm)
	case printer.PauseOption:
		s.runout()
		s.rememberPauseReturn()
		s.openChoice(menu.PopRunoutOption)
	case printer.PauseResume:
		if s.machine.State() == lifecycle.RunoutWaiting {
			s.machine.Fire(lifecycle.RunoutResume)
		}
		if s.printing() {
			s.enter(menu.Printing)
			return
		}
		back := s.pauseReturn
		if back == menu.None || back.IsEdit() || isPausePopup(back) {
			back = menu.Main
		}
		s.show(back)
	}
}

// runout hands a running job to the firmware's own pause sequence. A pause
// the user already asked for keeps its own states.
func (s *Session) runout() {
	if s.machine.State() == lifecycle.Printing {
		s.machine.Fire(lifecycle.Runout)
	}
}
