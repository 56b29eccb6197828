package hmi

import (
	"fmt"
	"strconv"

	"github.com/atomicstack/dwin-panel/internal/format/table"
	"github.com/atomicstack/dwin-panel/internal/lifecycle"
	"github.com/atomicstack/dwin-panel/internal/logging"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/settings"
	"github.com/atomicstack/dwin-panel/internal/surface"
)

// Bed corners visited by manual leveling, in millimetres.
var corners = [4][2]int{{30, 30}, {205, 30}, {205, 205}, {30, 205}}

var axisLabels = [4]string{"X", "Y", "Z", "E"}

func (s *Session) registerLists() {
	caps := s.opts.Caps

	s.addList(&list{id: menu.Main, title: "Main", build: func() []row {
		rows := []row{
			submenu("Print", surface.IconPrint, menu.File),
			submenu("Prepare", surface.IconPrepare, menu.Prepare),
			submenu("Control", surface.IconControl, menu.Control),
		}
		if caps.Probe {
			return append(rows, submenu("Leveling", surface.IconLeveling, menu.Leveling))
		}
		return append(rows, submenu("Info", surface.IconInfo, menu.Info))
	}})

	s.addList(&list{id: menu.File, title: "Select file", parent: menu.Main,
		open: func() {
			s.refreshFiles()
			if !s.mounted {
				s.setMessage("No SD card", surface.Red)
			}
		},
		build: func() []row {
			rows := []row{backRow()}
			if !s.mounted {
				return rows
			}
			for _, name := range s.files {
				name := name
				rows = append(rows, action(name, surface.IconFile, func() { s.StartPrint(name) }))
			}
			return rows
		},
	})

	s.addList(&list{id: menu.Printing, title: "Printing",
		build: func() []row {
			pause := action("Pause", surface.IconPause, s.pressPause)
			if s.machine.State() == lifecycle.Paused {
				pause = action("Resume", surface.IconResume, s.pressPause)
			}
			return []row{
				submenu("Tune", surface.IconSpeed, menu.Tune),
				pause,
				action("Stop", surface.IconStop, s.pressStop),
			}
		},
		guard: s.printingGuard,
		extra: s.drawProgress,
	})

	s.addList(&list{id: menu.Tune, title: "Tune", parent: menu.Printing, build: func() []row {
		rows := []row{backRow(), s.fieldRow("Speed", surface.IconSpeed, menu.EditPrintSpeed, 0)}
		rows = append(rows, s.hotendRows()...)
		rows = append(rows,
			s.fieldRow("Bed", surface.IconBed, menu.EditBedTemp, 0),
			s.fieldRow("Fan", surface.IconFan, menu.EditFanSpeed, 0),
			s.fieldRow("Z offset", surface.IconZ, menu.EditBabystep, 0),
		)
		if caps.Mixing {
			rows = append(rows, submenu("Mixer", surface.IconMore, menu.Mixer))
		}
		return rows
	}})

	s.addList(&list{id: menu.Prepare, title: "Prepare", parent: menu.Main, build: func() []row {
		return []row{
			backRow(),
			submenu("Move", surface.IconMove, menu.MoveAxis),
			submenu("Home", surface.IconHome, menu.Home),
			submenu("Temperature", surface.IconHotend, menu.Temperature),
			submenu("Leveling", surface.IconLeveling, menu.Leveling),
			action("Disable steppers", surface.IconMove, func() { s.send(printer.CmdDisableMotors) }),
			action("Preheat PLA", surface.IconHotend, func() { s.preheat(0) }),
			action("Preheat ABS", surface.IconHotend, func() { s.preheat(1) }),
			action("Cooldown", surface.IconFan, s.cooldown),
			action("Change filament", surface.IconMore, func() { s.send(printer.CmdFilamentChange) }),
			action("Power down", surface.IconWarning, func() { s.openChoice(menu.PopPowerdown) }),
		}
	}})

	s.addList(&list{id: menu.Home, title: "Home", parent: menu.Prepare, build: func() []row {
		return []row{
			backRow(),
			action("Home all", surface.IconHome, func() { s.home(printer.CmdHomeAll, menu.Home) }),
			action("Home X", surface.IconHome, func() { s.home(printer.CmdHomeX, menu.Home) }),
			action("Home Y", surface.IconHome, func() { s.home(printer.CmdHomeY, menu.Home) }),
			action("Home Z", surface.IconHome, func() { s.home(printer.CmdHomeZ, menu.Home) }),
		}
	}})

	s.addList(&list{id: menu.Temperature, title: "Temperature", parent: menu.Control, build: func() []row {
		rows := append([]row{backRow()}, s.hotendRows()...)
		return append(rows,
			s.fieldRow("Bed", surface.IconBed, menu.EditBedTemp, 0),
			s.fieldRow("Fan", surface.IconFan, menu.EditFanSpeed, 0),
			submenu("PLA preset", surface.IconMore, menu.PreheatPLA),
			submenu("ABS preset", surface.IconMore, menu.PreheatABS),
		)
	}})

	for i, id := range [2]menu.ID{menu.PreheatPLA, menu.PreheatABS} {
		i := i
		name := [2]string{"PLA", "ABS"}[i]
		s.addList(&list{id: id, title: name + " preset", parent: menu.Temperature, build: func() []row {
			return []row{
				backRow(),
				s.fieldRow("Hotend", surface.IconHotend, menu.EditPresetHotend, i),
				s.fieldRow("Bed", surface.IconBed, menu.EditPresetBed, i),
				s.fieldRow("Fan", surface.IconFan, menu.EditPresetFan, i),
				action("Preheat now", surface.IconHotend, func() { s.preheat(i) }),
			}
		}})
	}

	s.addList(&list{id: menu.MoveAxis, title: "Move", parent: menu.Prepare,
		open: func() {
			p := s.status().Position
			s.pos = [3]float64{p.X, p.Y, p.Z}
		},
		build: func() []row {
			rows := []row{
				backRow(),
				s.fieldRow("Move X", surface.IconMove, menu.EditMoveX, 0),
				s.fieldRow("Move Y", surface.IconMove, menu.EditMoveY, 1),
				s.fieldRow("Move Z", surface.IconMove, menu.EditMoveZ, 2),
			}
			if caps.Extruders == 1 {
				return append(rows, s.fieldRow("Extruder", surface.IconHotend, menu.EditMoveE, 0))
			}
			for i := 0; i < caps.Extruders; i++ {
				rows = append(rows, s.fieldRow("Extruder "+strconv.Itoa(i+1), surface.IconHotend, menu.EditMoveE, i))
			}
			if caps.Mixing {
				rows = append(rows, s.fieldRow("All extruders", surface.IconHotend, menu.EditMoveE, -1))
			}
			return rows
		},
	})

	s.addList(&list{id: menu.Control, title: "Control", parent: menu.Main, build: func() []row {
		rows := []row{
			backRow(),
			submenu("Temperature", surface.IconHotend, menu.Temperature),
			submenu("Motion", surface.IconMove, menu.Motion),
		}
		if caps.Mixing {
			rows = append(rows, submenu("Mixer", surface.IconMore, menu.Mixer))
		}
		return append(rows,
			submenu("Config", surface.IconControl, menu.Config),
			action("Store settings", surface.IconMore, s.storeSettings),
			action("Load settings", surface.IconMore, s.loadSettings),
			action("Reset settings", surface.IconMore, s.resetSettings),
			submenu("Info", surface.IconInfo, menu.Info),
		)
	}})

	s.addList(&list{id: menu.Motion, title: "Motion", parent: menu.Control, build: func() []row {
		return []row{
			backRow(),
			submenu("Max feedrate", surface.IconSpeed, menu.MaxFeedrate),
			submenu("Max accel", surface.IconSpeed, menu.MaxAccel),
			submenu("Max jerk", surface.IconSpeed, menu.MaxJerk),
			submenu("Steps/mm", surface.IconMore, menu.StepsPerMM),
		}
	}})
	motion := []struct {
		id    menu.ID
		title string
		field menu.ID
	}{
		{menu.MaxFeedrate, "Max feedrate", menu.EditMaxFeedrate},
		{menu.MaxAccel, "Max accel", menu.EditMaxAccel},
		{menu.MaxJerk, "Max jerk", menu.EditMaxJerk},
		{menu.StepsPerMM, "Steps/mm", menu.EditStepsPerMM},
	}
	for _, m := range motion {
		m := m
		s.addList(&list{id: m.id, title: m.title, parent: menu.Motion, build: func() []row {
			rows := []row{backRow()}
			for axis, label := range axisLabels {
				rows = append(rows, s.fieldRow(label, surface.IconMove, m.field, axis))
			}
			return rows
		}})
	}

	s.addList(&list{id: menu.Config, title: "Config", parent: menu.Control, build: func() []row {
		rows := []row{backRow()}
		if caps.FWRetract {
			rows = append(rows, submenu("Retract", surface.IconMore, menu.Retract))
		}
		if caps.Runout {
			rows = append(rows, toggle("Runout sensor", func() bool { return s.cfg.Runout }, func() {
				if s.send(printer.RunoutSensor(!s.cfg.Runout)) {
					s.cfg.Runout = !s.cfg.Runout
				}
			}))
		}
		if caps.PowerLoss {
			rows = append(rows, toggle("Power-loss recovery", func() bool { return s.cfg.PowerLoss }, func() {
				if s.send(printer.PowerLoss(!s.cfg.PowerLoss)) {
					s.cfg.PowerLoss = !s.cfg.PowerLoss
				}
			}))
		}
		if caps.AutoShutdown {
			rows = append(rows, toggle("Auto shutdown", func() bool { return s.cfg.AutoShutdown }, func() {
				s.cfg.AutoShutdown = !s.cfg.AutoShutdown
				s.shutdownSecs = 0
			}))
		}
		if caps.WiFi {
			rows = append(rows, toggle("Wi-Fi", func() bool { return s.cfg.WiFi }, s.toggleWiFi))
		}
		if caps.Reprint {
			rows = append(rows, submenu("Reprint", surface.IconPrint, menu.Reprint))
		}
		return rows
	}})

	if caps.FWRetract {
		s.addList(&list{id: menu.Retract, title: "Retract", parent: menu.Config, build: func() []row {
			return []row{
				backRow(),
				toggle("Auto retract", func() bool { return s.cfg.Retract.Auto }, func() {
					if s.send(printer.AutoRetract(!s.cfg.Retract.Auto)) {
						s.cfg.Retract.Auto = !s.cfg.Retract.Auto
					}
				}),
				s.fieldRow("Length", surface.IconMore, menu.EditRetractLength, 0),
				s.fieldRow("Speed", surface.IconSpeed, menu.EditRetractSpeed, 0),
				s.fieldRow("Z hop", surface.IconZ, menu.EditRetractZHop, 0),
				s.fieldRow("Recover length", surface.IconMore, menu.EditRecoverLength, 0),
				s.fieldRow("Recover speed", surface.IconSpeed, menu.EditRecoverSpeed, 0),
			}
		}})
	}

	if caps.Reprint {
		s.addList(&list{id: menu.Reprint, title: "Reprint", parent: menu.Config, build: func() []row {
			return []row{
				backRow(),
				toggle("Reprint", func() bool { return s.cfg.Reprint.Enabled }, func() {
					if s.send(printer.Reprint(!s.cfg.Reprint.Enabled)) {
						s.cfg.Reprint.Enabled = !s.cfg.Reprint.Enabled
					}
				}),
				s.fieldRow("Times", surface.IconMore, menu.EditReprintTimes, 0),
				s.fieldRow("Forward length", surface.IconMore, menu.EditReprintLength, 0),
			}
		}})
	}

	if caps.Mixing {
		s.registerMixLists()
	}

	s.addList(&list{id: menu.Leveling, title: "Leveling", parent: menu.Main, build: func() []row {
		rows := []row{backRow()}
		for i, c := range corners {
			c := c
			rows = append(rows, action("Corner "+strconv.Itoa(i+1), surface.IconLeveling, func() {
				homed := s.homed
				s.home(printer.CornerMove(c[0], c[1], homed), menu.Leveling)
			}))
		}
		if caps.Probe {
			rows = append(rows,
				s.fieldRow("Probe Z offset", surface.IconZ, menu.EditProbeOffset, 0),
				action("Auto Z offset", surface.IconZ, func() { s.home(printer.CmdCatchOffset, menu.Leveling) }),
				action("Auto level", surface.IconLeveling, s.autoLevel),
			)
		}
		return rows
	}})

	s.addList(&list{id: menu.Info, title: "Info", parent: menu.Control, build: func() []row {
		rows := []row{backRow()}
		for _, line := range s.infoLines() {
			rows = append(rows, info(line))
		}
		return rows
	}})
}

func (s *Session) registerMixLists() {
	steppers := s.opts.Caps.Extruders
	s.addList(&list{id: menu.Mixer, title: "Mixer", parent: menu.Control, build: func() []row {
		return []row{
			backRow(),
			submenu("Manual mix", surface.IconMore, menu.MixManual),
			submenu("Gradient mix", surface.IconMore, menu.MixGradient),
			submenu("Random mix", surface.IconMore, menu.MixRandom),
			s.fieldRow("Virtual tool", surface.IconMore, menu.EditMixVTool, 0),
		}
	}})

	s.addList(&list{id: menu.MixManual, title: "Manual mix", parent: menu.Mixer,
		open: func() { s.mix = append([]int(nil), s.cfg.MixPercents...) },
		build: func() []row {
			rows := []row{backRow()}
			for i := 0; i < steppers; i++ {
				rows = append(rows, s.fieldRow("Stepper "+strconv.Itoa(i+1), surface.IconMore, menu.EditMixPercent, i))
			}
			return append(rows, action("Apply", surface.IconMore, s.applyMix))
		},
	})

	s.addList(&list{id: menu.MixGradient, title: "Gradient mix", parent: menu.Mixer, build: func() []row {
		return []row{
			backRow(),
			toggle("Gradient", func() bool { return s.cfg.Gradient.Enabled }, func() {
				s.cfg.Gradient.Enabled = !s.cfg.Gradient.Enabled
				if !s.send(s.gradientCmd()) {
					s.cfg.Gradient.Enabled = !s.cfg.Gradient.Enabled
				}
			}),
			s.fieldRow("Start Z", surface.IconZ, menu.EditGradientZStart, 0),
			s.fieldRow("End Z", surface.IconZ, menu.EditGradientZEnd, 0),
			s.fieldRow("Start tool", surface.IconMore, menu.EditGradientStart, 0),
			s.fieldRow("End tool", surface.IconMore, menu.EditGradientEnd, 0),
		}
	}})

	s.addList(&list{id: menu.MixRandom, title: "Random mix", parent: menu.Mixer, build: func() []row {
		return []row{
			backRow(),
			toggle("Random", func() bool { return s.cfg.Random.Enabled }, func() {
				s.cfg.Random.Enabled = !s.cfg.Random.Enabled
			}),
			s.fieldRow("Start Z", surface.IconZ, menu.EditRandomZStart, 0),
			s.fieldRow("End Z", surface.IconZ, menu.EditRandomZEnd, 0),
			s.fieldRow("Height", surface.IconZ, menu.EditRandomHeight, 0),
			s.fieldRow("Extruders", surface.IconMore, menu.EditRandomExtruders, 0),
		}
	}})
}

func (s *Session) hotendRows() []row {
	n := s.opts.Caps.Hotends()
	if n == 1 {
		return []row{s.fieldRow("Hotend", surface.IconHotend, menu.EditHotendTemp, 0)}
	}
	rows := make([]row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, s.fieldRow("Hotend "+strconv.Itoa(i+1), surface.IconHotend, menu.EditHotendTemp, i))
	}
	return rows
}

func (s *Session) infoLines() []string {
	caps := s.opts.Caps
	yesNo := func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	}
	media := "none"
	if s.mounted {
		media = fmt.Sprintf("%d files", len(s.files))
	}
	return table.Fit([][]string{
		{"Bed size", "235x235"},
		{"Extruders", strconv.Itoa(caps.Extruders)},
		{"Hotends", strconv.Itoa(caps.Hotends())},
		{"Mixing", yesNo(caps.Mixing)},
		{"Probe", yesNo(caps.Probe)},
		{"SD card", media},
	}, []table.Alignment{table.AlignLeft, table.AlignRight}, infoWidth)
}

// infoWidth is the label column budget in panel cells.
const infoWidth = (surface.Width-labelX)/surface.CellWidth - 1

// preheat applies preset i (0 PLA, 1 ABS) to every heater and the fan.
func (s *Session) preheat(i int) {
	p := s.preset(i)
	cmds := ""
	for h := 0; h < s.opts.Caps.Hotends(); h++ {
		cmds += printer.SetHotend(h, p.Hotend) + "\n"
	}
	cmds += printer.SetBed(p.Bed) + "\n" + printer.SetFan(p.Fan)
	if s.send(cmds) {
		s.setMessage(fmt.Sprintf("Preheating %s", [2]string{"PLA", "ABS"}[i&1]), surface.White)
	}
}

func (s *Session) cooldown() {
	cmds := ""
	for h := 1; h < s.opts.Caps.Hotends(); h++ {
		cmds += printer.SetHotend(h, 0) + "\n"
	}
	s.send(cmds + printer.CmdCooldown)
}

// home sends a homing or parking command and holds the homing popup until
// the queue drains.
func (s *Session) home(cmd string, back menu.ID) {
	if !s.send(cmd) {
		return
	}
	s.homed = true
	s.popupReturn = back
	s.show(menu.PopHome)
}

func (s *Session) autoLevel() {
	if !s.send(printer.CmdAutoLevel) {
		return
	}
	s.homed = true
	s.levelPoint, s.levelTotal = 0, 0
	s.show(menu.PopLeveling)
}

func (s *Session) applyMix() {
	sum := 0
	for _, p := range s.mix {
		sum += p
	}
	if sum != 100 {
		s.setMessage(fmt.Sprintf("Mix totals %d%%, need 100%%", sum), surface.Red)
		return
	}
	if s.send(printer.MixFactors(s.cfg.VTool, s.mix)) {
		s.cfg.MixPercents = append([]int(nil), s.mix...)
		s.setMessage("Mix applied", surface.Green)
	}
}

func (s *Session) storeSettings() {
	s.send(printer.CmdSaveSettings)
	var err error
	if s.store != nil {
		err = s.store.Save(s.cfg)
	}
	s.feedback(err, "Settings stored")
}

func (s *Session) loadSettings() {
	s.send(printer.CmdLoadSettings)
	if s.store == nil {
		s.feedback(nil, "Settings loaded")
		return
	}
	cfg, err := s.store.Load()
	if err == nil {
		cfg.Normalize(s.opts.Caps.Extruders)
		s.cfg = cfg
	}
	s.feedback(err, "Settings loaded")
}

func (s *Session) resetSettings() {
	s.send(printer.CmdResetSettings)
	s.cfg = settings.Defaults(s.opts.Caps.Extruders)
	s.feedback(nil, "Settings reset")
}

// feedback beeps and reports the outcome of a settings operation.
func (s *Session) feedback(err error, ok string) {
	if err != nil {
		logging.Error(err)
		s.sink.Enqueue(printer.Beep(440, 200))
		s.setMessage("Settings error", surface.Red)
		return
	}
	s.sink.Enqueue(printer.Beep(659, 100) + "\n" + printer.Beep(698, 100))
	s.setMessage(ok, surface.Green)
}
