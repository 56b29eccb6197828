package surface

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

type cell struct {
	ch string
	fg Color
	bg Color
}

// Canvas renders the panel into a character grid, one cell per 8x16 pixel
// block. Draws land in a back buffer; Flush publishes it.
type Canvas struct {
	mu      sync.Mutex
	cols    int
	rows    int
	back    []cell
	front   []cell
	flushes int
	styles  map[[2]Color]lipgloss.Style
}

// NewCanvas returns a black canvas sized for the panel.
func NewCanvas() *Canvas {
	c := &Canvas{
		cols:   Width / CellWidth,
		rows:   Height / CellHeight,
		styles: make(map[[2]Color]lipgloss.Style),
	}
	c.back = make([]cell, c.cols*c.rows)
	c.front = make([]cell, c.cols*c.rows)
	c.fill(c.back, BgBlack)
	c.fill(c.front, BgBlack)
	return c
}

// Size returns the grid size in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

func (c *Canvas) fill(buf []cell, bg Color) {
	for i := range buf {
		buf[i] = cell{ch: " ", fg: White, bg: bg}
	}
}

func (c *Canvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.back[row*c.cols+col]
}

func (c *Canvas) Clear(bg Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fill(c.back, bg)
}

func (c *Canvas) FillRect(fill Color, r Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for row := r.Y0 / CellHeight; row <= r.Y1/CellHeight; row++ {
		for col := r.X0 / CellWidth; col <= r.X1/CellWidth; col++ {
			if p := c.at(col, row); p != nil {
				*p = cell{ch: " ", fg: fill, bg: fill}
			}
		}
	}
}

func (c *Canvas) Line(fg Color, x0, y0, x1, y1 int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c0, r0, c1, r1 := x0/CellWidth, y0/CellHeight, x1/CellWidth, y1/CellHeight
	glyph := "─"
	switch {
	case c0 == c1 && r0 != r1:
		glyph = "│"
	case c0 != c1 && r0 != r1:
		glyph = "·"
	}
	steps := abs(c1 - c0)
	if d := abs(r1 - r0); d > steps {
		steps = d
	}
	for i := 0; i <= steps; i++ {
		col, row := c0, r0
		if steps > 0 {
			col = c0 + (c1-c0)*i/steps
			row = r0 + (r1-r0)*i/steps
		}
		if p := c.at(col, row); p != nil {
			p.ch = glyph
			p.fg = fg
		}
	}
}

func (c *Canvas) Text(fg, bg Color, x, y int, s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text(fg, bg, x, y, s)
}

func (c *Canvas) text(fg, bg Color, x, y int, s string) {
	col, row := x/CellWidth, y/CellHeight
	if row < 0 || row >= c.rows || col >= c.cols {
		return
	}
	s = truncate.String(s, uint(c.cols-col))
	for _, r := range s {
		if p := c.at(col, row); p != nil {
			*p = cell{ch: string(r), fg: fg, bg: bg}
		}
		col++
	}
}

func (c *Canvas) Int(fg, bg Color, x, y, width int, zeroFill bool, v int) {
	c.Text(fg, bg, x, y, FormatInt(width, zeroFill, v))
}

func (c *Canvas) Float(fg, bg Color, x, y, width, frac int, v float64) {
	c.Text(fg, bg, x, y, FormatFloat(width, frac, v))
}

func (c *Canvas) Icon(id Icon, x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bg := BgBlack
	if p := c.at(x/CellWidth, y/CellHeight); p != nil {
		bg = p.bg
	}
	c.text(Highlight, bg, x, y, id.Glyph())
}

func (c *Canvas) Scroll(r Rect, dy int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	shift := dy / CellHeight
	if shift == 0 {
		return
	}
	top, bottom := r.Y0/CellHeight, r.Y1/CellHeight
	left, right := r.X0/CellWidth, r.X1/CellWidth
	copyRow := func(dst, src int) {
		for col := left; col <= right; col++ {
			d, s := c.at(col, dst), c.at(col, src)
			if d != nil && s != nil {
				*d = *s
			}
		}
	}
	if shift < 0 {
		for row := top; row-shift <= bottom; row++ {
			copyRow(row, row-shift)
		}
		return
	}
	for row := bottom; row-shift >= top; row-- {
		copyRow(row, row-shift)
	}
}

func (c *Canvas) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.front, c.back)
	c.flushes++
	return nil
}

// Flushes counts published frames.
func (c *Canvas) Flushes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushes
}

// Row returns the published text of one cell row.
func (c *Canvas) Row(row int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row < 0 || row >= c.rows {
		return ""
	}
	var b strings.Builder
	for _, p := range c.front[row*c.cols : (row+1)*c.cols] {
		b.WriteString(p.ch)
	}
	return b.String()
}

// String returns every published row, one per line.
func (c *Canvas) String() string {
	lines := make([]string, c.rows)
	for i := range lines {
		lines[i] = c.Row(i)
	}
	return strings.Join(lines, "\n")
}

// Contains reports whether s appears on any published row.
func (c *Canvas) Contains(s string) bool {
	for i := 0; i < c.rows; i++ {
		if strings.Contains(c.Row(i), s) {
			return true
		}
	}
	return false
}

// Render returns the published frame with panel colors applied.
func (c *Canvas) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		line := c.front[row*c.cols : (row+1)*c.cols]
		start := 0
		for i := 1; i <= len(line); i++ {
			if i < len(line) && line[i].fg == line[start].fg && line[i].bg == line[start].bg {
				continue
			}
			var run strings.Builder
			for _, p := range line[start:i] {
				run.WriteString(p.ch)
			}
			out.WriteString(c.style(line[start].fg, line[start].bg).Render(run.String()))
			start = i
		}
	}
	return out.String()
}

func (c *Canvas) style(fg, bg Color) lipgloss.Style {
	key := [2]Color{fg, bg}
	if s, ok := c.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(hex(fg))).Background(lipgloss.Color(hex(bg)))
	c.styles[key] = s
	return s
}

func hex(c Color) string {
	rgba := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
