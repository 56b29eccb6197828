package ui

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/atomicstack/dwin-panel/internal/backend"
	"github.com/atomicstack/dwin-panel/internal/data/dispatcher"
	"github.com/atomicstack/dwin-panel/internal/hmi"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/state"
	"github.com/atomicstack/dwin-panel/internal/surface"
	"github.com/atomicstack/dwin-panel/internal/theme"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	menuHeaderSeparator = "→"
	defaultRootTitle    = "dwin panel"
)

var styles = theme.Default()

var headerSegmentCleaner = strings.NewReplacer("_", " ", "-", " ")

type msgHandler func(tea.Msg) tea.Cmd

type tickMsg struct{}

// Config wires a Model to the panel it shows.
type Config struct {
	Session *hmi.Session
	Input   *input.Queue

	// Canvas is rendered by View. It may be nil when the panel draws
	// elsewhere.
	Canvas  *surface.Canvas
	Watcher *backend.Watcher
	Status  state.StatusStore
	Media   state.MediaStore

	// Tick is the dispatcher period. Zero leaves ticking to the caller.
	Tick       time.Duration
	Width      int
	Height     int
	ShowFooter bool
}

// Model implements the Bubble Tea model for the terminal panel.
type Model struct {
	session        *hmi.Session
	queue          *input.Queue
	canvas         *surface.Canvas
	backend        *backend.Watcher
	backendState   map[backend.Kind]error
	backendLastErr string
	dispatcher     *dispatcher.Dispatcher
	media          state.MediaStore
	tick           time.Duration
	ctx            context.Context
	keys           keyMap
	help           help.Model
	width          int
	height         int
	fixedWidth     bool
	fixedHeight    bool
	showFooter     bool
	dropped        int

	handlers map[reflect.Type]msgHandler
}

// NewModel builds a model around a session. Missing stores are created so
// backend events always have somewhere to land.
func NewModel(cfg Config) *Model {
	status := cfg.Status
	if status == nil {
		status = state.NewStatusStore(1)
	}
	media := cfg.Media
	if media == nil {
		media = state.NewMediaStore()
	}
	queue := cfg.Input
	if queue == nil {
		queue = input.NewQueue(0)
	}
	m := &Model{
		session:      cfg.Session,
		queue:        queue,
		canvas:       cfg.Canvas,
		backend:      cfg.Watcher,
		backendState: map[backend.Kind]error{},
		dispatcher:   dispatcher.New(status, media),
		media:        media,
		tick:         cfg.Tick,
		ctx:          context.Background(),
		keys:         defaultKeyMap(),
		help:         help.New(),
		showFooter:   cfg.ShowFooter,
	}
	if styles.Footer != nil {
		m.help.Styles.ShortKey = *styles.Footer
		m.help.Styles.ShortDesc = *styles.Footer
	}
	if cfg.Width > 0 {
		m.width = cfg.Width
		m.fixedWidth = true
	}
	if cfg.Height > 0 {
		m.height = cfg.Height
		m.fixedHeight = true
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.tickCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

// Step runs one dispatcher cycle.
func (m *Model) Step() {
	if m.session == nil {
		return
	}
	m.session.Tick(m.ctx)
}

// Session exposes the driven session.
func (m *Model) Session() *hmi.Session {
	return m.session
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tickMsg{}):           m.handleTickMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleTickMsg(msg tea.Msg) tea.Cmd {
	m.Step()
	return m.tickCmd()
}

func (m *Model) tickCmd() tea.Cmd {
	if m.tick <= 0 {
		return nil
	}
	return tea.Tick(m.tick, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.help.Width = m.width
	return nil
}
