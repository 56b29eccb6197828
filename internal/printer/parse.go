package printer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/atomicstack/dwin-panel/internal/state"
)

// command is one parsed G-code line: its code ("G1", "M104"), numeric
// parameters, and the raw text after the code for string arguments.
type command struct {
	Code   string
	Params map[byte]float64
	Arg    string
}

func (c command) has(letter byte) bool {
	_, ok := c.Params[letter]
	return ok
}

func (c command) num(letter byte, fallback float64) float64 {
	if v, ok := c.Params[letter]; ok {
		return v
	}
	return fallback
}

func parseCommand(line string) command {
	cmd := command{Params: make(map[byte]float64)}
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return cmd
	}
	head := 1
	for head < len(line) && line[head] >= '0' && line[head] <= '9' {
		head++
	}
	if !unicode.IsLetter(rune(line[0])) {
		return cmd
	}
	cmd.Code = strings.ToUpper(line[:head])
	cmd.Arg = strings.TrimSpace(line[head:])
	rest := cmd.Arg
	for i := 0; i < len(rest); {
		c := rest[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		if !unicode.IsLetter(rune(c)) {
			i++
			continue
		}
		letter := byte(unicode.ToUpper(rune(c)))
		j := i + 1
		for j < len(rest) && (rest[j] == '-' || rest[j] == '+' || rest[j] == '.' || (rest[j] >= '0' && rest[j] <= '9')) {
			j++
		}
		v, err := strconv.ParseFloat(rest[i+1:j], 64)
		if err != nil {
			v = 0
		}
		cmd.Params[letter] = v
		i = j
	}
	return cmd
}

// ParseTemperatures reads a Marlin temperature report such as
// "ok T:200.0 /200.0 B:60.0 /60.0 T0:200.0 /200.0 @:0".
func ParseTemperatures(line string) ([]state.Thermal, state.Thermal, bool) {
	fields := strings.Fields(line)
	var (
		hotends []state.Thermal
		bed     state.Thermal
		single  *state.Thermal
		found   bool
	)
	for i, f := range fields {
		colon := strings.IndexByte(f, ':')
		if colon < 1 {
			continue
		}
		key, val := f[:colon], f[colon+1:]
		cur, err := strconv.ParseFloat(val, 64)
		if err != nil {
			continue
		}
		reading := state.Thermal{Current: cur}
		if i+1 < len(fields) && strings.HasPrefix(fields[i+1], "/") {
			if target, err := strconv.ParseFloat(fields[i+1][1:], 64); err == nil {
				reading.Target = target
			}
		}
		switch {
		case key == "B":
			bed = reading
			found = true
		case key == "T":
			r := reading
			single = &r
			found = true
		case key[0] == 'T' && len(key) > 1:
			idx, err := strconv.Atoi(key[1:])
			if err != nil || idx < 0 || idx > 7 {
				continue
			}
			for len(hotends) <= idx {
				hotends = append(hotends, state.Thermal{})
			}
			hotends[idx] = reading
			found = true
		}
	}
	if len(hotends) == 0 && single != nil {
		hotends = []state.Thermal{*single}
	}
	return hotends, bed, found
}

// ParsePosition reads an M114 report, ignoring the stepper counts.
func ParsePosition(line string) (state.Position, bool) {
	if i := strings.Index(line, "Count"); i >= 0 {
		line = line[:i]
	}
	var (
		p     state.Position
		found int
	)
	for _, f := range strings.Fields(line) {
		colon := strings.IndexByte(f, ':')
		if colon != 1 {
			continue
		}
		v, err := strconv.ParseFloat(f[2:], 64)
		if err != nil {
			continue
		}
		switch f[0] {
		case 'X':
			p.X = v
		case 'Y':
			p.Y = v
		case 'Z':
			p.Z = v
		case 'E':
			p.E = v
		default:
			continue
		}
		found++
	}
	return p, found >= 3
}

// ParseSDProgress reads an M27 report. ok is false for unrelated lines.
func ParseSDProgress(line string) (printing bool, done, size int64, ok bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "Not SD printing") {
		return false, 0, 0, true
	}
	const prefix = "SD printing byte "
	if !strings.HasPrefix(line, prefix) {
		return false, 0, 0, false
	}
	parts := strings.SplitN(strings.TrimPrefix(line, prefix), "/", 2)
	if len(parts) != 2 {
		return false, 0, 0, false
	}
	d, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	s, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err1 != nil || err2 != nil {
		return false, 0, 0, false
	}
	return true, d, s, true
}

var pauseKeywords = []struct {
	word string
	msg  PauseMessage
}{
	{"purge more", PauseOption},
	{"parked", PauseParking},
	{"parking", PauseParking},
	{"filamentrunout", PauseChanging},
	{"filament runout", PauseChanging},
	{"changing", PauseChanging},
	{"insert", PauseInsert},
	{"unload", PauseUnload},
	{"purg", PausePurge},
	{"load", PauseLoad},
	{"reheat", PauseHeat},
	{"heating", PauseHeating},
	{"waiting", PauseWaiting},
	{"resum", PauseResume},
}

// ParseNotice recognises host action and progress lines.
func ParseNotice(line string) (Notice, bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "Done printing file") {
		return Notice{Kind: NoticePrintDone}, true
	}
	if strings.HasPrefix(line, "Probing mesh point") {
		var n Notice
		n.Kind = NoticeLeveling
		n.Leveling = LevelingPoint
		frac := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(line, "Probing mesh point")), ".")
		if parts := strings.SplitN(frac, "/", 2); len(parts) == 2 {
			n.Point, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
			n.Total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
		}
		return n, true
	}
	const action = "//action:"
	if !strings.HasPrefix(line, action) {
		return Notice{}, false
	}
	body := strings.TrimPrefix(line, action)
	verb, rest, _ := strings.Cut(body, " ")
	switch verb {
	case "resumed":
		return Notice{Kind: NoticePause, Pause: PauseResume}, true
	case "notification":
		return Notice{Kind: NoticeMessage, Text: strings.TrimSpace(rest)}, true
	case "prompt_begin", "paused":
		lower := strings.ToLower(rest)
		if strings.Contains(lower, "recover") || strings.Contains(lower, "power loss") {
			return Notice{Kind: NoticeRecovery, Text: rest}, true
		}
		for _, k := range pauseKeywords {
			if strings.Contains(lower, k.word) {
				return Notice{Kind: NoticePause, Pause: k.msg, Text: rest}, true
			}
		}
		if verb == "paused" {
			return Notice{Kind: NoticePause, Pause: PauseParking, Text: rest}, true
		}
	}
	return Notice{}, false
}
