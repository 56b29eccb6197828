// Package hmi owns the panel's menu tree, the armed-edit protocol, popups,
// and the print-lifecycle flows. One goroutine drives a Session by calling
// Tick; nothing in here is safe for concurrent use.
package hmi

import (
	"context"
	"time"

	"github.com/atomicstack/dwin-panel/internal/config"
	"github.com/atomicstack/dwin-panel/internal/edit"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/lifecycle"
	"github.com/atomicstack/dwin-panel/internal/logging"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/settings"
	"github.com/atomicstack/dwin-panel/internal/surface"
	"github.com/atomicstack/dwin-panel/internal/ui/state"
)

// Media is the SD card as the panel sees it.
type Media interface {
	Mounted() bool
	List() ([]string, error)
}

// Deps are the collaborators a Session drives.
type Deps struct {
	Sink     printer.Sink
	Surface  surface.Surface
	Input    input.Source
	Media    Media
	Settings settings.Store
}

// Options tune a Session.
type Options struct {
	Caps config.Capabilities
	// StatusTicks is the number of ticks per status refresh. Second-based
	// timers count status refreshes.
	StatusTicks int
	// SyncTimeout bounds the wait for a full motion queue to drain.
	SyncTimeout time.Duration
}

type stopReason uint8

const (
	stopUser stopReason = iota
	stopDone
	stopMedia
	stopAbort
)

type pendingAction uint8

const (
	pendingPause pendingAction = iota
	pendingStop
)

// Session is the whole mutable UI state.
type Session struct {
	sink  printer.Sink
	surf  *screen
	in    input.Source
	media Media
	store settings.Store
	opts  Options
	ctx   context.Context

	reg     *menu.Registry
	machine *lifecycle.Machine
	rate    *input.Rate
	active  menu.ID
	lists   map[menu.ID]*list
	cursors map[menu.ID]*state.Cursor
	parents map[menu.ID]menu.ID
	fields  map[menu.ID]*fieldDef
	edit    *edit.Session
	cfg     settings.Settings
	tg      targets

	ticks   int
	booted  bool
	mounted bool
	files   []string

	file        string
	seenActive  bool
	heatSecs    int
	stopReason  stopReason
	reprintLeft int
	pending     pendingAction
	recovery    string

	choice      *state.Cursor
	popupReturn menu.ID
	pauseReturn menu.ID
	waitFor     printer.PauseMessage
	levelPoint  int
	levelTotal  int

	pos     [3]float64
	homed   bool
	zOffset float64
	mix     []int

	shutdownSecs int
	wifi         wifiState
	wifiSecs     int

	message     string
	messageFg   surface.Color
	messageSecs int
	warning     bool

	selfTest *selfTest
}

// New builds a session and registers every screen the capabilities allow.
// Nothing is drawn until the first Tick.
func New(d Deps, opts Options) *Session {
	if opts.StatusTicks < 1 {
		opts.StatusTicks = 1
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = 5 * time.Second
	}
	if opts.Caps.Extruders < 1 {
		opts.Caps.Extruders = 1
	}
	s := &Session{
		sink:    d.Sink,
		surf:    &screen{Surface: d.Surface},
		in:      d.Input,
		media:   d.Media,
		store:   d.Settings,
		opts:    opts,
		ctx:     context.Background(),
		reg:     menu.NewRegistry(),
		machine: lifecycle.NewMachine(),
		rate:    input.NewRate(),
		lists:   make(map[menu.ID]*list),
		cursors: make(map[menu.ID]*state.Cursor),
		parents: make(map[menu.ID]menu.ID),
		fields:  make(map[menu.ID]*fieldDef),
		choice:  state.NewCursorRows(2),
	}
	s.cfg = settings.Defaults(opts.Caps.Extruders)
	if s.store != nil {
		cfg, err := s.store.Load()
		if err != nil {
			logging.Error(err)
		} else {
			s.cfg = cfg
		}
	}
	s.cfg.Normalize(opts.Caps.Extruders)
	s.registerLists()
	s.registerFields()
	s.registerPopups()
	return s
}

// Tick runs one dispatcher cycle.
func (s *Session) Tick(ctx context.Context) {
	s.ctx = ctx
	if s.selfTest != nil {
		s.stepSelfTest()
		s.flush()
		return
	}
	s.background()
	ev := input.None
	if s.in != nil {
		ev = s.in.Poll()
	}
	if ev == input.None {
		s.flush()
		return
	}
	events.Input.Event(ev.String())
	s.dispatch(ev)
	s.pollMedia()
	s.flush()
}

func (s *Session) dispatch(ev input.Event) {
	if !s.reg.Dispatch(s.active, ev) {
		events.Menu.Unhandled(s.active.String(), ev.String())
	}
}

// Back leaves the current screen without committing anything: an armed
// edit is reverted, a list returns to its parent.
func (s *Session) Back() {
	if s.edit != nil {
		parent := s.edit.Parent
		s.show(parent)
		s.flush()
		return
	}
	switch {
	case s.active == menu.PopETempTooLow:
		s.show(menu.MoveAxis)
	case s.lists[s.active] != nil:
		s.back(s.lists[s.active])
	}
	s.flush()
}

// Active returns the id currently on screen.
func (s *Session) Active() menu.ID {
	return s.active
}

// State returns the print lifecycle state.
func (s *Session) State() lifecycle.State {
	return s.machine.State()
}

// Registry exposes the screen table.
func (s *Session) Registry() *menu.Registry {
	return s.reg
}

// Settings returns a copy of the working settings.
func (s *Session) Settings() settings.Settings {
	out := s.cfg
	out.MixPercents = append([]int(nil), s.cfg.MixPercents...)
	return out
}

// Message returns the status line text.
func (s *Session) Message() string {
	return s.message
}

// Edit returns the armed edit, or nil.
func (s *Session) Edit() *edit.Session {
	return s.edit
}

// Cursor returns the cursor of a list screen, or nil.
func (s *Session) Cursor(id menu.ID) *state.Cursor {
	return s.cursors[id]
}

// File returns the name of the current or last job.
func (s *Session) File() string {
	return s.file
}

func (s *Session) flush() {
	if !s.surf.dirty {
		return
	}
	s.surf.dirty = false
	if err := s.surf.Flush(); err != nil {
		logging.Error(err)
	}
}

func (s *Session) setMessage(text string, fg surface.Color) {
	s.message = text
	s.messageFg = fg
	s.messageSecs = messageSeconds
	s.warning = false
	s.drawMessage()
}

func (s *Session) clearMessage() {
	s.message = ""
	s.warning = false
	s.drawMessage()
}

func (s *Session) status() printer.Status {
	return s.sink.Status()
}

// screen marks itself dirty on every draw call so the dispatcher only
// flushes frames that changed.
type screen struct {
	surface.Surface
	dirty bool
}

func (s *screen) Clear(bg surface.Color) {
	s.dirty = true
	s.Surface.Clear(bg)
}

func (s *screen) FillRect(c surface.Color, r surface.Rect) {
	s.dirty = true
	s.Surface.FillRect(c, r)
}

func (s *screen) Line(c surface.Color, x0, y0, x1, y1 int) {
	s.dirty = true
	s.Surface.Line(c, x0, y0, x1, y1)
}

func (s *screen) Text(fg, bg surface.Color, x, y int, text string) {
	s.dirty = true
	s.Surface.Text(fg, bg, x, y, text)
}

func (s *screen) Int(fg, bg surface.Color, x, y, width int, zeroFill bool, v int) {
	s.dirty = true
	s.Surface.Int(fg, bg, x, y, width, zeroFill, v)
}

func (s *screen) Float(fg, bg surface.Color, x, y, width, frac int, v float64) {
	s.dirty = true
	s.Surface.Float(fg, bg, x, y, width, frac, v)
}

func (s *screen) Icon(id surface.Icon, x, y int) {
	s.dirty = true
	s.Surface.Icon(id, x, y)
}

func (s *screen) Scroll(r surface.Rect, dy int) {
	s.dirty = true
	s.Surface.Scroll(r, dy)
}
