package printer

import (
	"fmt"
	"strings"
)

// Fixed command strings the panel emits.
const (
	CmdPause          = "M25"
	CmdResume         = "M24"
	CmdPowerOff       = "M81"
	CmdAbortSD        = "M524"
	CmdContinue       = "M108"
	CmdPurgeMore      = "M876 S0"
	CmdPurgeDone      = "M876 S1"
	CmdRecoverResume  = "M1000"
	CmdRecoverCancel  = "M1000C"
	CmdDisableMotors  = "M84"
	CmdFilamentChange = "M600"
	CmdHomeAll        = "G28"
	CmdHomeX          = "G28 X"
	CmdHomeY          = "G28 Y"
	CmdHomeZ          = "G28 Z"
	CmdAutoLevel      = "G28\nG29"
	CmdAutoLevelHomed = "G28O\nG29"
	CmdCatchOffset    = "G28\nG29 N"
	CmdSaveSettings   = "M500"
	CmdLoadSettings   = "M501"
	CmdResetSettings  = "M502"
	CmdCooldown       = "M104 S0\nM140 S0\nM107"
	CmdReportTemps    = "M105"
	CmdReportSD       = "M27"
	CmdReportPosition = "M114"
	CmdListMedia      = "M20"
	CmdColdExtrudeOn  = "M302 P1"
	CmdColdExtrudeOff = "M302 P0"
)

// Axis letters in planner order.
var Axes = [4]string{"X", "Y", "Z", "E"}

func onOff(v bool) int {
	if v {
		return 1
	}
	return 0
}

// StartPrint selects and starts an SD file.
func StartPrint(name string) string {
	return fmt.Sprintf("M23 %s\nM24", name)
}

// SetHotend sets a hotend target without waiting.
func SetHotend(tool, celsius int) string {
	return fmt.Sprintf("M104 T%d S%d", tool, celsius)
}

// SetBed sets the bed target without waiting.
func SetBed(celsius int) string {
	return fmt.Sprintf("M140 S%d", celsius)
}

// SetFan sets the part fan duty, 0–255.
func SetFan(speed int) string {
	if speed <= 0 {
		return "M107"
	}
	return fmt.Sprintf("M106 S%d", speed)
}

// SetFeedratePercent sets the print speed override.
func SetFeedratePercent(pct int) string {
	return fmt.Sprintf("M220 S%d", pct)
}

// Babystep nudges Z by delta millimetres.
func Babystep(delta float64) string {
	return fmt.Sprintf("M290 Z%.2f", delta)
}

// MoveAxis moves one axis to an absolute position.
func MoveAxis(axis int, pos float64, feed int) string {
	return fmt.Sprintf("G90\nG1 %s%.1f F%d", Axes[axis], pos, feed)
}

// ExtruderMove jogs one extruder by delta millimetres.
func ExtruderMove(tool int, delta float64) string {
	if delta < 0 {
		return fmt.Sprintf("T%d\nG92 E0\nG1 E-%.1f F100\nG92 E0", tool, -delta)
	}
	return fmt.Sprintf("T%d\nG92 E0\nG1 E%.1f F100\nG92 E0", tool, delta)
}

// Jog moves relative to the current position, e.g. Jog("X10 Y10", 3000).
func Jog(moves string, feed int) string {
	return fmt.Sprintf("G91\nG1 %s F%d\nG90", moves, feed)
}

// MaxFeedrate sets an axis speed limit in mm/s.
func MaxFeedrate(axis int, v float64) string {
	return fmt.Sprintf("M203 %s%.1f", Axes[axis], v)
}

// MaxAccel sets an axis acceleration limit in mm/s².
func MaxAccel(axis int, v float64) string {
	return fmt.Sprintf("M201 %s%.0f", Axes[axis], v)
}

// MaxJerk sets an axis jerk limit in mm/s.
func MaxJerk(axis int, v float64) string {
	return fmt.Sprintf("M205 %s%.1f", Axes[axis], v)
}

// StepsPerMM sets an axis resolution.
func StepsPerMM(axis int, v float64) string {
	return fmt.Sprintf("M92 %s%.1f", Axes[axis], v)
}

// Retract commands, firmware retraction.
func RetractLength(mm float64) string { return fmt.Sprintf("M207 S%.2f", mm) }
func RetractSpeed(mmPerS float64) string { return fmt.Sprintf("M207 F%.2f", mmPerS*60) }
func RetractZHop(mm float64) string { return fmt.Sprintf("M207 Z%.2f", mm) }
func RecoverLength(mm float64) string { return fmt.Sprintf("M208 S%.2f", mm) }
func RecoverSpeed(mmPerS float64) string { return fmt.Sprintf("M208 F%.2f", mmPerS*60) }
func AutoRetract(on bool) string { return fmt.Sprintf("M209 S%d", onOff(on)) }

// Feature toggles.
func RunoutSensor(on bool) string { return fmt.Sprintf("M412 S%d", onOff(on)) }
func PowerLoss(on bool) string { return fmt.Sprintf("M413 S%d", onOff(on)) }
func Reprint(on bool) string { return fmt.Sprintf("M180 S%d", onOff(on)) }

// ReprintTimes and ReprintLength configure repeat printing.
func ReprintTimes(n int) string { return fmt.Sprintf("M180 T%4d", n) }
func ReprintLength(n int) string { return fmt.Sprintf("M180 L%4d", n) }

// ProbeOffsetZ sets the probe Z offset.
func ProbeOffsetZ(z float64) string {
	return fmt.Sprintf("M851 Z%.2f", z)
}

// MixFactors writes a full mix for a virtual tool: one M163 per stepper, then M164.
func MixFactors(vtool int, pcts []int) string {
	lines := make([]string, 0, len(pcts)+1)
	for i, p := range pcts {
		lines = append(lines, fmt.Sprintf("M163 S%d P%d", i, p))
	}
	lines = append(lines, fmt.Sprintf("M164 S%d", vtool))
	return strings.Join(lines, "\n")
}

// Gradient configures a Z gradient between two virtual tools.
func Gradient(startZ, endZ float64, startTool, endTool int, on bool) string {
	return fmt.Sprintf("M166 A%.1f Z%.1f I%d J%d S%d", startZ, endZ, startTool, endTool, onOff(on))
}

// SelectTool activates a (virtual) tool.
func SelectTool(t int) string {
	return fmt.Sprintf("T%d", t)
}

// Beep plays a tone for audio feedback.
func Beep(freq, ms int) string {
	return fmt.Sprintf("M300 S%d P%d", freq, ms)
}

// CornerMove parks the nozzle over a bed corner for manual leveling.
func CornerMove(x, y int, homed bool) string {
	home := "G28"
	if homed {
		home = "G28O"
	}
	return fmt.Sprintf("%s\nG91\nG1 Z10 F1500\nG90\nG1 X%d Y%d F3000\nG1 Z0 F500", home, x, y)
}

// Lines splits multi-line command text into trimmed, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
