package edit

import (
	"math"
	"strconv"

	"github.com/atomicstack/dwin-panel/internal/menu"
)

// Unit multipliers for fixed-point fields.
const (
	MinUnitMult = 10
	MaxUnitMult = 100
)

// ExtrudeMaxLength bounds a single extruder jog in millimetres.
const ExtrudeMaxLength = 200

// Field describes one adjustable numeric value. Bounds and steps are in
// scaled units.
type Field struct {
	Name  string
	Menu  menu.ID
	Scale int
	Min   int
	Max   int
	Step  int
	// MaxDelta caps |Value-Last|; zero means only Min and Max apply.
	MaxDelta int
	// Frac is the number of fractional digits shown.
	Frac int
}

func (f Field) scale() int {
	if f.Scale <= 0 {
		return 1
	}
	return f.Scale
}

func (f Field) step() int {
	if f.Step <= 0 {
		return 1
	}
	return f.Step
}

// Scaled converts a real value to the field's fixed-point representation.
func (f Field) Scaled(real float64) int {
	return int(math.Round(real * float64(f.scale())))
}

// Real converts a scaled value back.
func (f Field) Real(scaled int) float64 {
	return float64(scaled) / float64(f.scale())
}

// Clamp pins v into [Min, Max].
func (f Field) Clamp(v int) int {
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}

// Text renders a scaled value with the field's precision.
func (f Field) Text(scaled int) string {
	return strconv.FormatFloat(f.Real(scaled), 'f', f.Frac, 64)
}
