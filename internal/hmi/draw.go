package hmi

import (
	"fmt"
	"time"

	"github.com/atomicstack/dwin-panel/internal/surface"
	"github.com/atomicstack/dwin-panel/internal/ui/state"
)

// Panel geometry in pixels.
const (
	titleHeight = 32
	listTop     = 48
	rowHeight   = 48
	labelX      = 40
	iconX       = 16
	valueX      = 200
	statusTop   = 352
	messageTop  = 448

	messageSeconds = 5
)

var listArea = surface.Rect{X0: 0, Y0: listTop, X1: surface.Width - 1, Y1: listTop + rowHeight*(state.VisibleRows+1) - 1}

func rowY(line int) int {
	return listTop + rowHeight*line
}

func (s *Session) drawTitle(title string) {
	s.surf.Clear(surface.BgBlack)
	s.surf.FillRect(surface.BgBlue, surface.Rect{X0: 0, Y0: 0, X1: surface.Width - 1, Y1: titleHeight - 1})
	s.surf.Text(surface.White, surface.BgBlue, 8, 8, title)
}

func (s *Session) drawMessage() {
	s.surf.FillRect(surface.BgBlack, surface.Rect{X0: 0, Y0: messageTop, X1: surface.Width - 1, Y1: surface.Height - 1})
	if s.message == "" {
		return
	}
	s.surf.Text(s.messageFg, surface.BgBlack, 8, messageTop, s.message)
}

// drawStatus paints the live machine readout below the list area.
func (s *Session) drawStatus() {
	st := s.status()
	s.surf.FillRect(surface.BgBlack, surface.Rect{X0: 0, Y0: statusTop, X1: surface.Width - 1, Y1: messageTop - 1})
	s.surf.Line(surface.Split, 0, statusTop, surface.Width-1, statusTop)
	line := ""
	for i := 0; i < s.opts.Caps.Hotends() && i < 2; i++ {
		h := st.Hotend(i)
		line += fmt.Sprintf("E%d %3.0f/%-3.0f ", i+1, h.Current, h.Target)
	}
	line += fmt.Sprintf("B %3.0f/%-3.0f", st.Bed.Current, st.Bed.Target)
	s.surf.Text(surface.White, surface.BgBlack, 8, statusTop+16, line)
	s.surf.Text(surface.White, surface.BgBlack, 8, statusTop+48,
		fmt.Sprintf("Fan %3d  Spd %3d%%  Z %6.2f", st.Fan, st.Feedrate, st.Position.Z))
}

// drawPopup paints a modal window. Buttons are drawn by drawButtons.
func (s *Session) drawPopup(title string, lines ...string) {
	s.surf.Clear(surface.BgBlack)
	s.surf.FillRect(surface.BgWindow, surface.Rect{X0: 14, Y0: 64, X1: 257, Y1: 335})
	s.surf.Text(surface.Yellow, surface.BgWindow, 32, 96, title)
	for i, l := range lines {
		s.surf.Text(surface.PopupText, surface.BgWindow, 32, 144+32*i, l)
	}
	s.drawMessage()
}

func (s *Session) drawButtons(labels ...string) {
	for i, label := range labels {
		bg := surface.BgWindow
		fg := surface.White
		if len(labels) == 1 || i == s.choice.Now {
			bg = surface.Selected
		}
		x := 40 + 120*i
		s.surf.FillRect(bg, surface.Rect{X0: x - 8, Y0: 272, X1: x + 88, Y1: 303})
		s.surf.Text(fg, bg, x, 280, label)
	}
}

func clock(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
