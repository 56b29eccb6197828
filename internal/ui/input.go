package ui

import (
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap maps the keyboard onto the knob.
type keyMap struct {
	CW    key.Binding
	CCW   key.Binding
	Press key.Binding
	Back  key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		CW: key.NewBinding(
			key.WithKeys("right", "down", "l", "j"),
			key.WithHelp("→/↓", "turn"),
		),
		CCW: key.NewBinding(
			key.WithKeys("left", "up", "h", "k"),
			key.WithHelp("←/↑", "turn back"),
		),
		Press: key.NewBinding(
			key.WithKeys("enter", " ", "space"),
			key.WithHelp("enter", "press"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CW, k.CCW, k.Press, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		events.App.Stop("quit key")
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Back):
		if m.session != nil {
			m.session.Back()
		}
	case key.Matches(keyMsg, m.keys.CW):
		m.push(input.CW)
	case key.Matches(keyMsg, m.keys.CCW):
		m.push(input.CCW)
	case key.Matches(keyMsg, m.keys.Press):
		m.push(input.Press)
	}
	return nil
}

// push queues a knob gesture for the next tick.
func (m *Model) push(ev input.Event) {
	if m.queue.Push(ev) {
		return
	}
	m.dropped++
	events.Input.Dropped(ev.String(), m.queue.Len())
}
