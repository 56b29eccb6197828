package ui

import (
	"github.com/atomicstack/dwin-panel/internal/backend"
	"github.com/atomicstack/dwin-panel/internal/media"
	"github.com/atomicstack/dwin-panel/internal/state"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.Apply(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// Apply folds one watcher event into the stores and tells the session about
// media changes.
func (m *Model) Apply(evt backend.Event) {
	if m.backendState == nil {
		m.backendState = make(map[backend.Kind]error)
	}
	m.backendState[evt.Kind] = evt.Err
	if evt.Err != nil {
		m.backendLastErr = evt.Err.Error()
		return
	}

	res := m.dispatcher.Handle(evt)
	if res.MediaChanged && m.session != nil {
		m.session.MediaChanged(m.media.Mounted(), m.media.Files())
	}

	if warn, _ := m.hasBackendIssue(); !warn {
		m.backendLastErr = ""
	}
}

func (m *Model) hasBackendIssue() (bool, string) {
	for _, err := range m.backendState {
		if err != nil {
			msg := m.backendLastErr
			if msg == "" {
				msg = err.Error()
			}
			return true, msg
		}
	}
	return false, ""
}

// StoreMedia presents the watcher's last media listing as the session's
// card, so the session never touches the filesystem itself.
type StoreMedia struct {
	Store state.MediaStore
}

func (s StoreMedia) Mounted() bool { return s.Store.Mounted() }

func (s StoreMedia) List() ([]string, error) {
	if !s.Store.Mounted() {
		return nil, media.ErrNotMounted
	}
	return s.Store.Files(), nil
}
