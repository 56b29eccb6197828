package surface

import (
	"strconv"
	"strings"
)

// FormatInt renders v the way the panel's number primitive does.
func FormatInt(width int, zeroFill bool, v int) string {
	s := strconv.Itoa(v)
	if len(s) >= width {
		return s
	}
	pad := " "
	if zeroFill {
		pad = "0"
		if v < 0 {
			digits := strconv.Itoa(-v)
			return "-" + strings.Repeat("0", width-len(digits)-1) + digits
		}
	}
	return strings.Repeat(pad, width-len(s)) + s
}

// FormatFloat renders v with frac fractional digits, right-aligned in width.
func FormatFloat(width, frac int, v float64) string {
	s := strconv.FormatFloat(v, 'f', frac, 64)
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

var iconGlyphs = [...]string{
	IconBack:      "<",
	IconFolder:    "+",
	IconFile:      "*",
	IconMore:      ">",
	IconPrint:     "P",
	IconPrepare:   "R",
	IconControl:   "C",
	IconInfo:      "i",
	IconLeveling:  "L",
	IconHotend:    "H",
	IconBed:       "B",
	IconFan:       "F",
	IconZ:         "Z",
	IconSpeed:     "%",
	IconPause:     "=",
	IconResume:    "^",
	IconStop:      "#",
	IconWarning:   "!",
	IconHome:      "@",
	IconMove:      "~",
	IconToggleOn:  "o",
	IconToggleOff: ".",
}

// Glyph returns the single-character stand-in for an icon.
func (i Icon) Glyph() string {
	if int(i) < len(iconGlyphs) && iconGlyphs[i] != "" {
		return iconGlyphs[i]
	}
	return "?"
}
