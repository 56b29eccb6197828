package hmi

import (
	"context"
	"fmt"

	"github.com/atomicstack/dwin-panel/internal/edit"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/logging"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/settings"
	"github.com/atomicstack/dwin-panel/internal/surface"
)

const (
	// MinExtrudeTemp is the hotend temperature below which extruder jogs
	// are refused.
	MinExtrudeTemp = 170

	maxHotend       = 275
	maxBed          = 120
	maxFan          = 255
	mixVirtualTools = 16
)

var moveFeed = [3]int{3000, 3000, 600}

type fieldDef struct {
	field edit.Field
	read  func(index int) float64
	// write applies a committed value; delta is the change since arming.
	write func(index int, v, delta float64)
	// guard may refuse to arm, showing its own feedback.
	guard func(index int) bool
}

// targets mirrors what the panel last commanded, refreshed from the sink
// whenever a list is shown.
type targets struct {
	hotend []float64
	bed    float64
	fan    float64
	speed  float64
}

func (s *Session) syncTargets() {
	st := s.status()
	n := s.opts.Caps.Hotends()
	if len(s.tg.hotend) != n {
		s.tg.hotend = make([]float64, n)
	}
	for i := range s.tg.hotend {
		s.tg.hotend[i] = st.Hotend(i).Target
	}
	s.tg.bed = st.Bed.Target
	s.tg.fan = float64(st.Fan)
	s.tg.speed = float64(st.Feedrate)
	if s.tg.speed == 0 {
		s.tg.speed = 100
	}
}

func (s *Session) addField(id menu.ID, f edit.Field, d fieldDef) {
	f.Menu = id
	d.field = f
	s.fields[id] = &d
	s.reg.Register(id, func() {
		if s.edit == nil {
			return
		}
		if l := s.lists[s.edit.Parent]; l != nil {
			s.drawList(l)
			s.drawArmed()
		}
	}, s.handleEdit)
}

func (s *Session) preset(i int) *settings.Preset {
	if i == 1 {
		return &s.cfg.ABS
	}
	return &s.cfg.PLA
}

func (s *Session) registerFields() {
	caps := s.opts.Caps

	s.addField(menu.EditHotendTemp, edit.Field{Name: "hotend", Max: maxHotend}, fieldDef{
		read: func(i int) float64 { return s.tg.hotendAt(i) },
		write: func(i int, v, _ float64) {
			if s.send(printer.SetHotend(i, int(v))) && i < len(s.tg.hotend) {
				s.tg.hotend[i] = v
			}
		},
	})
	s.addField(menu.EditBedTemp, edit.Field{Name: "bed", Max: maxBed}, fieldDef{
		read: func(int) float64 { return s.tg.bed },
		write: func(_ int, v, _ float64) {
			if s.send(printer.SetBed(int(v))) {
				s.tg.bed = v
			}
		},
	})
	s.addField(menu.EditFanSpeed, edit.Field{Name: "fan", Max: maxFan}, fieldDef{
		read: func(int) float64 { return s.tg.fan },
		write: func(_ int, v, _ float64) {
			if s.send(printer.SetFan(int(v))) {
				s.tg.fan = v
			}
		},
	})
	s.addField(menu.EditPrintSpeed, edit.Field{Name: "speed", Min: 10, Max: 999}, fieldDef{
		read: func(int) float64 { return s.tg.speed },
		write: func(_ int, v, _ float64) {
			if s.send(printer.SetFeedratePercent(int(v))) {
				s.tg.speed = v
			}
		},
	})
	s.addField(menu.EditBabystep, edit.Field{Name: "babystep", Scale: edit.MaxUnitMult, Min: -200, Max: 200, Frac: 2}, fieldDef{
		read: func(int) float64 { return s.zOffset },
		write: func(_ int, v, delta float64) {
			if delta == 0 {
				return
			}
			if s.send(printer.Babystep(delta)) {
				s.zOffset = v
			}
		},
	})

	moveDelta := edit.ExtrudeMaxLength * edit.MinUnitMult
	axisMax := [3]int{2350, 2350, 2500}
	for axis, id := range [3]menu.ID{menu.EditMoveX, menu.EditMoveY, menu.EditMoveZ} {
		axis := axis
		s.addField(id, edit.Field{
			Name:  "move-" + printer.Axes[axis],
			Scale: edit.MinUnitMult,
			Max:   axisMax[axis],
			Frac:  1,
		}, fieldDef{
			read: func(int) float64 { return s.pos[axis] },
			write: func(_ int, v, delta float64) {
				if delta == 0 {
					return
				}
				if s.enqueueMotion(printer.MoveAxis(axis, v, moveFeed[axis])) {
					s.pos[axis] = v
				}
			},
		})
	}
	s.addField(menu.EditMoveE, edit.Field{
		Name:     "move-E",
		Scale:    edit.MinUnitMult,
		Min:      -moveDelta,
		Max:      moveDelta,
		MaxDelta: moveDelta,
		Frac:     1,
	}, fieldDef{
		read: func(int) float64 { return 0 },
		write: func(i int, _, delta float64) {
			if delta == 0 {
				return
			}
			s.enqueueMotion(printer.ExtruderMove(s.tool(i), delta))
		},
		guard: func(i int) bool {
			heater := i
			if caps.Mixing || heater < 0 {
				heater = 0
			}
			if s.status().Hotend(heater).Current >= MinExtrudeTemp {
				return true
			}
			s.popupReturn = menu.MoveAxis
			s.show(menu.PopETempTooLow)
			return false
		},
	})

	s.addField(menu.EditPresetHotend, edit.Field{Name: "preset-hotend", Max: maxHotend}, fieldDef{
		read:  func(i int) float64 { return float64(s.preset(i).Hotend) },
		write: func(i int, v, _ float64) { s.preset(i).Hotend = int(v) },
	})
	s.addField(menu.EditPresetBed, edit.Field{Name: "preset-bed", Max: maxBed}, fieldDef{
		read:  func(i int) float64 { return float64(s.preset(i).Bed) },
		write: func(i int, v, _ float64) { s.preset(i).Bed = int(v) },
	})
	s.addField(menu.EditPresetFan, edit.Field{Name: "preset-fan", Max: maxFan}, fieldDef{
		read:  func(i int) float64 { return float64(s.preset(i).Fan) },
		write: func(i int, v, _ float64) { s.preset(i).Fan = int(v) },
	})

	m := &s.cfg.Motion
	s.addField(menu.EditMaxFeedrate, edit.Field{Name: "max-feedrate", Min: 1, Max: 999}, fieldDef{
		read: func(i int) float64 { return m.MaxFeedrate[i] },
		write: func(i int, v, _ float64) {
			if s.send(printer.MaxFeedrate(i, v)) {
				m.MaxFeedrate[i] = v
			}
		},
	})
	s.addField(menu.EditMaxAccel, edit.Field{Name: "max-accel", Min: 10, Max: 20000, Step: 10}, fieldDef{
		read: func(i int) float64 { return m.MaxAccel[i] },
		write: func(i int, v, _ float64) {
			if s.send(printer.MaxAccel(i, v)) {
				m.MaxAccel[i] = v
			}
		},
	})
	s.addField(menu.EditMaxJerk, edit.Field{Name: "max-jerk", Scale: edit.MinUnitMult, Min: 1, Max: 990, Frac: 1}, fieldDef{
		read: func(i int) float64 { return m.MaxJerk[i] },
		write: func(i int, v, _ float64) {
			if s.send(printer.MaxJerk(i, v)) {
				m.MaxJerk[i] = v
			}
		},
	})
	s.addField(menu.EditStepsPerMM, edit.Field{Name: "steps-per-mm", Scale: edit.MinUnitMult, Min: 10, Max: 99999, Frac: 1}, fieldDef{
		read: func(i int) float64 { return m.StepsPerMM[i] },
		write: func(i int, v, _ float64) {
			if s.send(printer.StepsPerMM(i, v)) {
				m.StepsPerMM[i] = v
			}
		},
	})

	if caps.FWRetract {
		r := &s.cfg.Retract
		retract := []struct {
			id    menu.ID
			f     edit.Field
			value *float64
			cmd   func(float64) string
		}{
			{menu.EditRetractLength, edit.Field{Name: "retract-length", Scale: edit.MaxUnitMult, Max: 1000, Frac: 2}, &r.Length, printer.RetractLength},
			{menu.EditRetractSpeed, edit.Field{Name: "retract-speed", Scale: edit.MinUnitMult, Min: 10, Max: 900, Frac: 1}, &r.Speed, printer.RetractSpeed},
			{menu.EditRetractZHop, edit.Field{Name: "retract-zhop", Scale: edit.MaxUnitMult, Max: 1000, Frac: 2}, &r.ZHop, printer.RetractZHop},
			{menu.EditRecoverLength, edit.Field{Name: "recover-length", Scale: edit.MaxUnitMult, Max: 1000, Frac: 2}, &r.RecoverLength, printer.RecoverLength},
			{menu.EditRecoverSpeed, edit.Field{Name: "recover-speed", Scale: edit.MinUnitMult, Min: 10, Max: 900, Frac: 1}, &r.RecoverSpeed, printer.RecoverSpeed},
		}
		for _, f := range retract {
			f := f
			s.addField(f.id, f.f, fieldDef{
				read: func(int) float64 { return *f.value },
				write: func(_ int, v, _ float64) {
					if s.send(f.cmd(v)) {
						*f.value = v
					}
				},
			})
		}
	}

	if caps.Reprint {
		s.addField(menu.EditReprintTimes, edit.Field{Name: "reprint-times", Min: 1, Max: 99}, fieldDef{
			read: func(int) float64 { return float64(s.cfg.Reprint.Times) },
			write: func(_ int, v, _ float64) {
				if s.send(printer.ReprintTimes(int(v))) {
					s.cfg.Reprint.Times = int(v)
				}
			},
		})
		s.addField(menu.EditReprintLength, edit.Field{Name: "reprint-length", Max: 1000, Step: 5}, fieldDef{
			read: func(int) float64 { return float64(s.cfg.Reprint.Length) },
			write: func(_ int, v, _ float64) {
				if s.send(printer.ReprintLength(int(v))) {
					s.cfg.Reprint.Length = int(v)
				}
			},
		})
	}

	if caps.Mixing {
		s.registerMixFields()
	}

	if caps.Probe {
		s.addField(menu.EditProbeOffset, edit.Field{Name: "probe-offset", Scale: edit.MaxUnitMult, Min: -500, Max: 500, Frac: 2}, fieldDef{
			read: func(int) float64 { return s.cfg.ProbeZOffset },
			write: func(_ int, v, _ float64) {
				if s.send(printer.ProbeOffsetZ(v)) {
					s.cfg.ProbeZOffset = v
				}
			},
		})
	}
}

func (s *Session) registerMixFields() {
	steppers := s.opts.Caps.Extruders
	g := &s.cfg.Gradient
	rnd := &s.cfg.Random

	s.addField(menu.EditMixPercent, edit.Field{Name: "mix-percent", Max: 100}, fieldDef{
		read: func(i int) float64 {
			if i < len(s.mix) {
				return float64(s.mix[i])
			}
			return 0
		},
		write: func(i int, v, _ float64) {
			if i < len(s.mix) {
				s.mix[i] = int(v)
			}
		},
	})
	s.addField(menu.EditMixVTool, edit.Field{Name: "mix-vtool", Max: mixVirtualTools - 1}, fieldDef{
		read: func(int) float64 { return float64(s.cfg.VTool) },
		write: func(_ int, v, _ float64) {
			if s.send(printer.SelectTool(int(v))) {
				s.cfg.VTool = int(v)
			}
		},
	})

	zField := func(name string) edit.Field {
		return edit.Field{Name: name, Scale: edit.MinUnitMult, Max: 2500, Frac: 1}
	}
	toolField := func(name string) edit.Field {
		return edit.Field{Name: name, Max: mixVirtualTools - 1}
	}
	gradient := []struct {
		id  menu.ID
		f   edit.Field
		get func() float64
		set func(float64)
	}{
		{menu.EditGradientZStart, zField("gradient-z-start"), func() float64 { return g.StartZ }, func(v float64) { g.StartZ = v }},
		{menu.EditGradientZEnd, zField("gradient-z-end"), func() float64 { return g.EndZ }, func(v float64) { g.EndZ = v }},
		{menu.EditGradientStart, toolField("gradient-start"), func() float64 { return float64(g.StartTool) }, func(v float64) { g.StartTool = int(v) }},
		{menu.EditGradientEnd, toolField("gradient-end"), func() float64 { return float64(g.EndTool) }, func(v float64) { g.EndTool = int(v) }},
	}
	for _, f := range gradient {
		f := f
		s.addField(f.id, f.f, fieldDef{
			read: func(int) float64 { return f.get() },
			write: func(_ int, v, _ float64) {
				f.set(v)
				if g.Enabled {
					s.send(s.gradientCmd())
				}
			},
		})
	}

	random := []struct {
		id  menu.ID
		f   edit.Field
		get func() float64
		set func(float64)
	}{
		{menu.EditRandomZStart, zField("random-z-start"), func() float64 { return rnd.StartZ }, func(v float64) { rnd.StartZ = v }},
		{menu.EditRandomZEnd, zField("random-z-end"), func() float64 { return rnd.EndZ }, func(v float64) { rnd.EndZ = v }},
		{menu.EditRandomHeight, edit.Field{Name: "random-height", Scale: edit.MaxUnitMult, Min: 10, Max: 1000, Frac: 2}, func() float64 { return rnd.Height }, func(v float64) { rnd.Height = v }},
		{menu.EditRandomExtruders, edit.Field{Name: "random-extruders", Min: 1, Max: steppers}, func() float64 { return float64(rnd.Extruders) }, func(v float64) { rnd.Extruders = int(v) }},
	}
	for _, f := range random {
		f := f
		s.addField(f.id, f.f, fieldDef{
			read:  func(int) float64 { return f.get() },
			write: func(_ int, v, _ float64) { f.set(v) },
		})
	}
}

func (t targets) hotendAt(i int) float64 {
	if i < 0 || i >= len(t.hotend) {
		return 0
	}
	return t.hotend[i]
}

// tool maps an extruder row to the tool number. Negative rows address the
// active virtual tool of a mixing head.
func (s *Session) tool(i int) int {
	if i < 0 {
		return s.cfg.VTool
	}
	return i
}

func (s *Session) gradientCmd() string {
	g := s.cfg.Gradient
	return printer.Gradient(g.StartZ, g.EndZ, g.StartTool, g.EndTool, g.Enabled)
}

func (s *Session) arm(l *list, i int) {
	r := l.rows[i]
	def := s.fields[r.field]
	if def == nil {
		return
	}
	if def.guard != nil && !def.guard(r.index) {
		return
	}
	s.edit = edit.Begin(def.field, def.read(r.index), l.id, i, r.index)
	s.rate.Enable()
	s.active = r.field
	events.Edit.Arm(def.field.Name, s.edit.Value)
	s.drawRow(l, i, true)
}

func (s *Session) handleEdit(ev input.Event) {
	if s.edit == nil {
		return
	}
	switch ev {
	case input.CW, input.CCW:
		if s.edit.Adjust(ev, s.rate.Step(ev)) {
			s.drawArmed()
		}
	case input.Press:
		s.commit()
	}
}

func (s *Session) commit() {
	e := s.edit
	def := s.fields[s.active]
	v, ok := e.Commit()
	s.edit = nil
	s.rate.Disable()
	s.active = e.Parent
	if !ok || def == nil {
		return
	}
	events.Edit.Commit(def.field.Name, v)
	def.write(e.Index, e.Field.Real(v), e.Delta())
	if l := s.lists[e.Parent]; l != nil && s.active == e.Parent {
		s.drawRow(l, e.Row, false)
	}
}

func (s *Session) discardEdit() {
	e := s.edit
	s.edit = nil
	s.rate.Disable()
	events.Edit.Revert(e.Field.Name, e.Revert())
}

func (s *Session) drawArmed() {
	if s.edit == nil {
		return
	}
	if l := s.lists[s.edit.Parent]; l != nil {
		s.drawRow(l, s.edit.Row, true)
	}
}

func (s *Session) drawFieldValue(r row, y int, armed bool) {
	def := s.fields[r.field]
	if def == nil {
		return
	}
	fg, bg := surface.White, surface.BgBlack
	var v int
	if armed && s.edit != nil {
		v = s.edit.Value
		fg, bg = surface.White, surface.Selected
	} else {
		v = def.field.Clamp(def.field.Scaled(def.read(r.index)))
	}
	s.surf.FillRect(bg, surface.Rect{X0: valueX, Y0: y + 16, X1: surface.Width - 17, Y1: y + 31})
	s.surf.Text(fg, bg, valueX, y+16, def.field.Text(v))
}

// send enqueues text and reports a busy queue on the status line.
func (s *Session) send(text string) bool {
	if s.sink.Enqueue(text) {
		return true
	}
	s.setMessage("Printer busy, try again", surface.Red)
	return false
}

// enqueueMotion waits, bounded, for a full queue to drain before sending.
func (s *Session) enqueueMotion(text string) bool {
	if s.sink.QueueFull() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.SyncTimeout)
		err := s.sink.Synchronize(ctx)
		cancel()
		events.Command.Synchronize(err)
		if err != nil {
			logging.Error(fmt.Errorf("synchronize before move: %w", err))
		}
	}
	return s.send(text)
}
