package hmi

import (
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/surface"
	"github.com/atomicstack/dwin-panel/internal/ui/state"
)

type rowKind uint8

const (
	rowBack rowKind = iota
	rowSubmenu
	rowField
	rowToggle
	rowAction
	rowInfo
)

type row struct {
	kind  rowKind
	label string
	icon  surface.Icon
	child menu.ID
	field menu.ID
	index int
	value func() string
	on    func() bool
	act   func()
}

// list is a scrollable menu. Rows are rebuilt every time the screen is
// shown because they depend on capabilities and live state.
type list struct {
	id     menu.ID
	title  string
	parent menu.ID
	build  func() []row
	open   func()
	extra  func()
	guard  func(input.Event) bool
	rows   []row
}

func backRow() row {
	return row{kind: rowBack, label: "Back", icon: surface.IconBack}
}

func submenu(label string, icon surface.Icon, child menu.ID) row {
	return row{kind: rowSubmenu, label: label, icon: icon, child: child}
}

func action(label string, icon surface.Icon, fn func()) row {
	return row{kind: rowAction, label: label, icon: icon, act: fn}
}

func toggle(label string, on func() bool, fn func()) row {
	return row{kind: rowToggle, label: label, on: on, act: fn}
}

func info(label string) row {
	return row{kind: rowInfo, label: label}
}

func (s *Session) fieldRow(label string, icon surface.Icon, id menu.ID, index int) row {
	return row{kind: rowField, label: label, icon: icon, field: id, index: index}
}

func (s *Session) addList(l *list) {
	s.lists[l.id] = l
	s.cursors[l.id] = state.NewCursor()
	s.reg.Register(l.id, func() { s.drawList(l) }, func(ev input.Event) { s.handleList(l, ev) })
}

// enter opens id as a fresh visit: its cursor goes back to the top.
func (s *Session) enter(id menu.ID) {
	if c, ok := s.cursors[id]; ok {
		c.Home()
	}
	if l := s.lists[id]; l != nil && l.open != nil {
		l.open()
	}
	s.show(id)
}

// show switches the active screen and redraws it. Any armed edit that is
// not the target is discarded without writing.
func (s *Session) show(id menu.ID) {
	if _, ok := s.reg.Find(id); !ok {
		events.Menu.Unhandled(id.String(), "show")
		return
	}
	if s.edit != nil && id != s.active {
		s.discardEdit()
	}
	from := s.active
	s.active = id
	if l := s.lists[id]; l != nil {
		s.syncTargets()
		l.rows = l.build()
		if c := s.cursors[id]; c.Now >= len(l.rows) {
			c.Home()
		}
	}
	events.Menu.Enter(from.String(), id.String())
	s.reg.Draw(id)
}

func (s *Session) back(l *list) {
	parent, ok := s.parents[l.id]
	if !ok {
		parent = l.parent
	}
	if parent == menu.None {
		return
	}
	s.show(parent)
}

func (s *Session) drawList(l *list) {
	s.drawTitle(l.title)
	c := s.cursors[l.id]
	for i := range l.rows {
		if c.Visible(i) {
			s.drawRow(l, i, false)
		}
	}
	s.drawCursor(l)
	if l.extra != nil {
		l.extra()
	}
	s.drawStatus()
	s.drawMessage()
}

func (s *Session) drawRow(l *list, i int, armed bool) {
	c := s.cursors[l.id]
	if i < 0 || i >= len(l.rows) || !c.Visible(i) {
		return
	}
	r := l.rows[i]
	y := rowY(c.Row(i))
	s.surf.FillRect(surface.BgBlack, surface.Rect{X0: 8, Y0: y, X1: surface.Width - 1, Y1: y + rowHeight - 1})
	if r.kind != rowInfo {
		s.surf.Icon(r.icon, iconX, y+16)
	}
	s.surf.Text(surface.White, surface.BgBlack, labelX, y+16, r.label)
	s.surf.Line(surface.Split, 16, y+rowHeight-1, surface.Width-17, y+rowHeight-1)
	switch r.kind {
	case rowField:
		s.drawFieldValue(r, y, armed)
	case rowToggle:
		icon := surface.IconToggleOff
		if r.on() {
			icon = surface.IconToggleOn
		}
		s.surf.Icon(icon, valueX+32, y+16)
	case rowInfo, rowAction, rowSubmenu:
		if r.value != nil {
			s.surf.Text(surface.White, surface.BgBlack, valueX, y+16, r.value())
		}
	}
}

func (s *Session) drawCursor(l *list) {
	c := s.cursors[l.id]
	s.surf.FillRect(surface.BgBlack, surface.Rect{X0: 0, Y0: listArea.Y0, X1: 5, Y1: listArea.Y1})
	if len(l.rows) == 0 {
		return
	}
	y := rowY(c.Row(c.Now))
	s.surf.FillRect(surface.Highlight, surface.Rect{X0: 0, Y0: y, X1: 5, Y1: y + rowHeight - 1})
}

func (s *Session) handleList(l *list, ev input.Event) {
	if l.guard != nil && l.guard(ev) {
		return
	}
	c := s.cursors[l.id]
	switch ev {
	case input.CW:
		if c.Inc(len(l.rows)) {
			s.moved(l, c)
		}
	case input.CCW:
		if c.Dec() {
			s.moved(l, c)
		}
	case input.Press:
		s.activate(l, c.Now)
	}
}

// moved repaints after a one-row cursor step. When the window scrolls only
// the revealed row is drawn.
func (s *Session) moved(l *list, c *state.Cursor) {
	switch c.Follow() {
	case state.ScrollUp:
		s.surf.Scroll(listArea, -rowHeight)
		s.drawRow(l, c.Now, false)
	case state.ScrollDown:
		s.surf.Scroll(listArea, rowHeight)
		// At the top of the window the revealed row is Back.
		s.drawRow(l, c.Now, false)
	}
	s.drawCursor(l)
	events.Menu.Cursor(l.id.String(), c.Now, c.Offset)
}

func (s *Session) activate(l *list, i int) {
	if i < 0 || i >= len(l.rows) {
		return
	}
	r := l.rows[i]
	switch r.kind {
	case rowBack:
		s.back(l)
	case rowSubmenu:
		if _, ok := s.reg.Find(r.child); !ok {
			return
		}
		s.parents[r.child] = l.id
		s.enter(r.child)
	case rowField:
		s.arm(l, i)
	case rowToggle:
		r.act()
		if s.active == l.id {
			s.drawRow(l, i, false)
		}
	case rowAction:
		r.act()
	case rowInfo:
	}
}

// redrawRows refreshes every visible row of the active list in place.
func (s *Session) redrawRows() {
	l := s.lists[s.active]
	if l == nil {
		return
	}
	c := s.cursors[l.id]
	for i := range l.rows {
		if c.Visible(i) {
			s.drawRow(l, i, false)
		}
	}
}
