package surface

import "image/color"

// Panel size in pixels.
const (
	Width  = 272
	Height = 480
)

// Character cell used for text placement.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Color is an RGB565 panel color.
type Color uint16

const (
	White     Color = 0xFFFF
	Yellow    Color = 0xFF0F
	Green     Color = 0x07E0
	Red       Color = 0xF00F
	Blue      Color = 0x001F
	BgWindow  Color = 0x31E8
	BgBlue    Color = 0x1125
	BgBlack   Color = 0x0000
	PopupText Color = 0xD6BA
	Split     Color = 0x3A6A
	Highlight Color = 0xEE2F
	Percent   Color = 0xFE29
	BarFill   Color = 0x10E4
	Selected  Color = 0x33BB
)

// RGBA expands the 565 value to 8 bits per channel.
func (c Color) RGBA() color.RGBA {
	r := uint8((c >> 11) & 0x1F)
	g := uint8((c >> 5) & 0x3F)
	b := uint8(c & 0x1F)
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xFF,
	}
}

// Rect is an inclusive pixel rectangle.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Icon names a fixed glyph from the panel's icon set.
type Icon uint8

const (
	IconBack Icon = iota
	IconFolder
	IconFile
	IconMore
	IconPrint
	IconPrepare
	IconControl
	IconInfo
	IconLeveling
	IconHotend
	IconBed
	IconFan
	IconZ
	IconSpeed
	IconPause
	IconResume
	IconStop
	IconWarning
	IconHome
	IconMove
	IconToggleOn
	IconToggleOff
)

// Surface is the drawing collaborator. Nothing reaches the physical panel
// until Flush.
type Surface interface {
	Clear(bg Color)
	FillRect(c Color, r Rect)
	Line(c Color, x0, y0, x1, y1 int)
	Text(fg, bg Color, x, y int, s string)
	// Int draws v right-aligned in width digits, optionally zero-filled.
	Int(fg, bg Color, x, y, width int, zeroFill bool, v int)
	// Float draws a signed fixed-point value with frac fractional digits.
	Float(fg, bg Color, x, y, width, frac int, v float64)
	Icon(id Icon, x, y int)
	// Scroll shifts the pixels inside r by dy; negative moves content up.
	Scroll(r Rect, dy int)
	Flush() error
}
