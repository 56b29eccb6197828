package surface

import "strings"

// Op is one recorded draw call.
type Op struct {
	Kind string
	Fg   Color
	Bg   Color
	Rect Rect
	X, Y int
	Text string
	Icon Icon
	DY   int
}

// Recorder is a Surface that remembers calls instead of drawing.
type Recorder struct {
	Ops     []Op
	Flushes int
}

func (r *Recorder) Clear(bg Color) {
	r.Ops = append(r.Ops, Op{Kind: "clear", Bg: bg})
}

func (r *Recorder) FillRect(c Color, rect Rect) {
	r.Ops = append(r.Ops, Op{Kind: "fill", Bg: c, Rect: rect})
}

func (r *Recorder) Line(c Color, x0, y0, x1, y1 int) {
	r.Ops = append(r.Ops, Op{Kind: "line", Fg: c, Rect: Rect{x0, y0, x1, y1}})
}

func (r *Recorder) Text(fg, bg Color, x, y int, s string) {
	r.Ops = append(r.Ops, Op{Kind: "text", Fg: fg, Bg: bg, X: x, Y: y, Text: s})
}

func (r *Recorder) Int(fg, bg Color, x, y, width int, zeroFill bool, v int) {
	r.Ops = append(r.Ops, Op{Kind: "int", Fg: fg, Bg: bg, X: x, Y: y, Text: FormatInt(width, zeroFill, v)})
}

func (r *Recorder) Float(fg, bg Color, x, y, width, frac int, v float64) {
	r.Ops = append(r.Ops, Op{Kind: "float", Fg: fg, Bg: bg, X: x, Y: y, Text: FormatFloat(width, frac, v)})
}

func (r *Recorder) Icon(id Icon, x, y int) {
	r.Ops = append(r.Ops, Op{Kind: "icon", Icon: id, X: x, Y: y})
}

func (r *Recorder) Scroll(rect Rect, dy int) {
	r.Ops = append(r.Ops, Op{Kind: "scroll", Rect: rect, DY: dy})
}

func (r *Recorder) Flush() error {
	r.Flushes++
	return nil
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.Ops = nil
	r.Flushes = 0
}

// Has reports whether any text, int, or float op contains s.
func (r *Recorder) Has(s string) bool {
	for _, op := range r.Ops {
		if op.Text != "" && strings.Contains(op.Text, s) {
			return true
		}
	}
	return false
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// TextColor returns the foreground used for the last op containing s.
func (r *Recorder) TextColor(s string) (Color, bool) {
	for i := len(r.Ops) - 1; i >= 0; i-- {
		if r.Ops[i].Text != "" && strings.Contains(r.Ops[i].Text, s) {
			return r.Ops[i].Fg, true
		}
	}
	return 0, false
}
