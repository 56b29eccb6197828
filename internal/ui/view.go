package ui

import (
	"strings"

	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

type styledLine struct {
	text  string
	style *lipgloss.Style
	// raw lines already carry ANSI escapes.
	raw bool
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]styledLine, 0, 40)
	lines = append(lines, m.headerLine())
	if m.canvas != nil {
		body := m.canvas.Render()
		if styles.Panel != nil {
			body = styles.Panel.Render(body)
		}
		for _, row := range strings.Split(body, "\n") {
			lines = append(lines, styledLine{text: row, raw: true})
		}
	}
	if text, style := m.statusLine(); text != "" {
		lines = append(lines, styledLine{text: text, style: style})
	}
	if m.showFooter {
		lines = append(lines, styledLine{text: m.help.ShortHelpView(m.keys.ShortHelp()), raw: true})
	}
	lines = applyWidth(lines, m.width)
	lines = limitHeight(lines, m.height, m.width)
	return renderLines(lines)
}

func (m *Model) headerLine() styledLine {
	header := m.menuHeader()
	if m.session == nil {
		return styledLine{text: header, style: styles.Header}
	}
	state := "[" + m.session.State().String() + "]"
	if styles.Header != nil {
		header = styles.Header.Render(header)
	}
	if styles.State != nil {
		state = styles.State.Render(state)
	}
	return styledLine{text: header + " " + state, raw: true}
}

func (m *Model) menuHeader() string {
	return strings.Join(m.headerSegments(), menuHeaderSeparator)
}

func (m *Model) headerSegments() []string {
	segments := []string{defaultRootTitle}
	if m.session == nil {
		return segments
	}
	if m.session.SelfTestRunning() {
		return append(segments, "self test")
	}
	active := m.session.Active()
	if active == menu.None {
		return segments
	}
	if segment := headerSegment(active.String()); segment != "" {
		segments = append(segments, segment)
	}
	return segments
}

func headerSegment(id string) string {
	candidate := headerSegmentCleaner.Replace(strings.TrimSpace(id))
	fields := strings.Fields(strings.ToLower(candidate))
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// statusLine prefers backend trouble over the panel's own message.
func (m *Model) statusLine() (string, *lipgloss.Style) {
	if warn, msg := m.hasBackendIssue(); warn {
		return "printer: " + msg, styles.Error
	}
	if m.session == nil {
		return "", nil
	}
	if msg := m.session.Message(); msg != "" {
		return msg, styles.Info
	}
	if m.dropped > 0 {
		return "input overrun", styles.Warning
	}
	return "", nil
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		result[i] = styledLine{text: text, style: line.style, raw: line.raw}
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if !line.raw && line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
