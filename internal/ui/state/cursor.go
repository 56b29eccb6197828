package state

// VisibleRows is the number of rows below the Back row that fit on the panel.
const VisibleRows = 5

// Scroll reports how the visible window moved after a cursor step.
type Scroll int

const (
	ScrollNone Scroll = iota
	ScrollUp
	ScrollDown
)

func (s Scroll) String() string {
	switch s {
	case ScrollUp:
		return "up"
	case ScrollDown:
		return "down"
	default:
		return "none"
	}
}

// Cursor tracks the selected row and the scroll window of one list menu.
// Offset is the last visible item; the window is [Offset-rows, Offset].
type Cursor struct {
	Now    int
	Last   int
	Offset int
	rows   int
}

// NewCursor returns a cursor using the panel's visible row budget.
func NewCursor() *Cursor {
	return NewCursorRows(VisibleRows)
}

// NewCursorRows returns a cursor with a custom visible row budget.
func NewCursorRows(rows int) *Cursor {
	if rows < 1 {
		rows = 1
	}
	return &Cursor{Offset: rows, rows: rows}
}

// Rows returns the visible row budget.
func (c *Cursor) Rows() int {
	return c.rows
}

// Reset selects row zero. The scroll window is left alone.
func (c *Cursor) Reset() {
	c.Now = 0
	c.Last = 0
}

// Home resets the selection and the window, as done on first entry.
func (c *Cursor) Home() {
	c.Reset()
	c.Offset = c.rows
}

// Set forces the selection, used when returning to a parent at a known row.
func (c *Cursor) Set(v int) {
	if v < 0 {
		v = 0
	}
	c.Now = v
	c.Last = v
	switch {
	case v > c.Offset:
		c.Offset = v
	case v < c.Offset-c.rows:
		c.Offset = v + c.rows
	}
	if c.Offset < c.rows {
		c.Offset = c.rows
	}
}

// Inc moves down one row, pinned at count-1, and reports whether it moved.
func (c *Cursor) Inc(count int) bool {
	if count <= 0 {
		return false
	}
	if c.Now < count-1 {
		c.Now++
	} else {
		c.Now = count - 1
	}
	return c.Changed()
}

// Dec moves up one row, pinned at zero, and reports whether it moved.
func (c *Cursor) Dec() bool {
	if c.Now > 0 {
		c.Now--
	}
	return c.Changed()
}

// Changed reports whether Now differs from the last observed row and records it.
func (c *Cursor) Changed() bool {
	if c.Now == c.Last {
		return false
	}
	c.Last = c.Now
	return true
}

// Follow moves the window after a single step so the selection stays visible.
func (c *Cursor) Follow() Scroll {
	if c.Now > c.rows && c.Now > c.Offset {
		c.Offset = c.Now
		return ScrollUp
	}
	if c.Now < c.Offset-c.rows {
		c.Offset = c.Now + c.rows
		if c.Offset < c.rows {
			c.Offset = c.rows
		}
		return ScrollDown
	}
	return ScrollNone
}

// Row maps an item index to its screen row, 0 being the top list row.
func (c *Cursor) Row(item int) int {
	return item + c.rows - c.Offset
}

// Visible reports whether the item is inside the window.
func (c *Cursor) Visible(item int) bool {
	return item >= c.Offset-c.rows && item <= c.Offset
}

// BackVisible reports whether the Back row (item 0) is on screen.
func (c *Cursor) BackVisible() bool {
	return c.Offset == c.rows
}
