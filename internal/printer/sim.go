package printer

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// SimConfig describes the simulated machine.
type SimConfig struct {
	Hotends int
	// Files maps SD file names to their size in bytes.
	Files map[string]int64
	// BytesPerStep is how far a print advances on each Step.
	BytesPerStep int64
	// HeatRate is the largest temperature change per Step.
	HeatRate float64
	// Interval drives Step from a ticker; zero leaves stepping to the caller.
	Interval time.Duration
	// Recovery announces an interrupted print at power-up.
	Recovery string
	Ambient  float64
}

type heater struct {
	current float64
	target  float64
}

func (h *heater) step(rate, ambient float64) {
	goal := h.target
	if goal < ambient {
		goal = ambient
	}
	diff := goal - h.current
	if math.Abs(diff) <= rate {
		h.current = goal
		return
	}
	if diff > 0 {
		h.current += rate
	} else {
		h.current -= rate
	}
}

func (h heater) reached() bool {
	return h.target <= 0 || math.Abs(h.current-h.target) < 1
}

// Sim is an in-process controller that speaks enough Marlin for the panel:
// heaters, moves, SD printing, leveling and power-loss recovery.
type Sim struct {
	cfg SimConfig

	mu       sync.Mutex
	hotends  []heater
	bed      heater
	pos      [4]float64
	relative bool
	homed    bool
	file     string
	size     int64
	done     int64
	printing bool
	waiting  bool
	recovery string
	lines    []string

	out    chan string
	closed chan struct{}
	once   sync.Once
	stop   chan struct{}
}

// NewSim builds a simulator and, when Interval is set, starts its clock.
func NewSim(cfg SimConfig) *Sim {
	if cfg.Hotends < 1 {
		cfg.Hotends = 1
	}
	if cfg.BytesPerStep <= 0 {
		cfg.BytesPerStep = 4096
	}
	if cfg.HeatRate <= 0 {
		cfg.HeatRate = 5
	}
	if cfg.Ambient == 0 {
		cfg.Ambient = 25
	}
	s := &Sim{
		cfg:      cfg,
		hotends:  make([]heater, cfg.Hotends),
		recovery: cfg.Recovery,
		out:      make(chan string, 256),
		closed:   make(chan struct{}),
		stop:     make(chan struct{}),
	}
	for i := range s.hotends {
		s.hotends[i].current = cfg.Ambient
	}
	s.bed.current = cfg.Ambient
	s.emit("start")
	if s.recovery != "" {
		s.emit("//action:prompt_begin Power loss recovery " + s.recovery)
	}
	if cfg.Interval > 0 {
		go s.clock(cfg.Interval)
	}
	return s
}

func (s *Sim) clock(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Step()
		case <-s.stop:
			return
		}
	}
}

func (s *Sim) emit(line string) {
	select {
	case s.out <- line:
	case <-s.closed:
	}
}

// Inject queues an unsolicited controller line, such as a runout prompt.
func (s *Sim) Inject(line string) {
	s.emit(line)
}

// WriteLine executes one command.
func (s *Sim) WriteLine(line string) error {
	select {
	case <-s.closed:
		return io.ErrClosedPipe
	default:
	}
	cmd := parseCommand(line)
	s.mu.Lock()
	s.lines = append(s.lines, line)
	replies, ack := s.execute(cmd)
	s.mu.Unlock()
	for _, r := range replies {
		s.emit(r)
	}
	if ack != "" {
		s.emit(ack)
	}
	return nil
}

// ReadLine blocks for the next controller line.
func (s *Sim) ReadLine() (string, error) {
	select {
	case line := <-s.out:
		return line, nil
	case <-s.closed:
		return "", io.EOF
	}
}

// Close stops the clock and unblocks readers.
func (s *Sim) Close() error {
	s.once.Do(func() {
		close(s.stop)
		close(s.closed)
	})
	return nil
}

// Received returns every line written so far.
func (s *Sim) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Step advances heaters and the SD job by one tick.
func (s *Sim) Step() {
	var out []string
	s.mu.Lock()
	for i := range s.hotends {
		s.hotends[i].step(s.cfg.HeatRate, s.cfg.Ambient)
	}
	s.bed.step(s.cfg.HeatRate, s.cfg.Ambient)
	if s.waiting {
		out = append(out, s.temperatureReport())
		if s.heatersReached() {
			s.waiting = false
			out = append(out, "ok")
		}
	} else if s.printing {
		s.done += s.cfg.BytesPerStep
		if s.done >= s.size {
			s.done = s.size
			s.printing = false
			s.file = ""
			out = append(out, "Done printing file")
		}
	}
	s.mu.Unlock()
	for _, l := range out {
		s.emit(l)
	}
}

func (s *Sim) heatersReached() bool {
	for _, h := range s.hotends {
		if !h.reached() {
			return false
		}
	}
	return s.bed.reached()
}

func (s *Sim) temperatureReport() string {
	var b strings.Builder
	first := s.hotends[0]
	fmt.Fprintf(&b, "T:%.2f /%.2f B:%.2f /%.2f", first.current, first.target, s.bed.current, s.bed.target)
	if len(s.hotends) > 1 {
		for i, h := range s.hotends {
			fmt.Fprintf(&b, " T%d:%.2f /%.2f", i, h.current, h.target)
		}
	}
	b.WriteString(" @:0 B@:0")
	return b.String()
}

// execute runs cmd with s.mu held and returns the reply lines plus the
// acknowledgement, which is empty while a heater wait is pending.
func (s *Sim) execute(cmd command) ([]string, string) {
	if s.waiting {
		if cmd.Code == "M108" {
			s.waiting = false
			return nil, "ok"
		}
	}
	if cmd.Code == "" {
		return nil, "ok"
	}
	switch cmd.Code[0] {
	case 'G':
		return s.executeG(cmd)
	case 'M':
		return s.executeM(cmd)
	}
	return nil, "ok"
}

func (s *Sim) executeG(cmd command) ([]string, string) {
	switch cmd.Code {
	case "G0", "G1":
		for i, axis := range Axes {
			if !cmd.has(axis[0]) {
				continue
			}
			v := cmd.num(axis[0], 0)
			if s.relative {
				s.pos[i] += v
			} else {
				s.pos[i] = v
			}
		}
	case "G28":
		if !cmd.has('O') || !s.homed {
			s.pos[0], s.pos[1], s.pos[2] = 0, 0, 0
		}
		s.homed = true
	case "G29":
		if !s.homed {
			return []string{"echo:Home XYZ first"}, "ok"
		}
		const points = 16
		replies := make([]string, 0, points+1)
		for i := 1; i <= points; i++ {
			replies = append(replies, fmt.Sprintf("Probing mesh point %d/%d.", i, points))
		}
		return append(replies, "Bed leveling done."), "ok"
	case "G90":
		s.relative = false
	case "G91":
		s.relative = true
	case "G92":
		for i, axis := range Axes {
			if cmd.has(axis[0]) {
				s.pos[i] = cmd.num(axis[0], 0)
			}
		}
	}
	return nil, "ok"
}

func (s *Sim) executeM(cmd command) ([]string, string) {
	switch cmd.Code {
	case "M20":
		names := make([]string, 0, len(s.cfg.Files))
		for name := range s.cfg.Files {
			names = append(names, name)
		}
		sort.Strings(names)
		replies := []string{"Begin file list"}
		for _, n := range names {
			replies = append(replies, fmt.Sprintf("%s %d", n, s.cfg.Files[n]))
		}
		return append(replies, "End file list"), "ok"
	case "M23":
		size, ok := s.cfg.Files[cmd.Arg]
		if !ok {
			return []string{"open failed, File: " + cmd.Arg + "."}, "ok"
		}
		s.file, s.size, s.done, s.printing = cmd.Arg, size, 0, false
		return []string{fmt.Sprintf("File opened: %s Size: %d", cmd.Arg, size), "File selected"}, "ok"
	case "M24":
		if s.file != "" {
			s.printing = true
		}
	case "M25":
		s.printing = false
	case "M524":
		s.printing = false
		s.file, s.size, s.done = "", 0, 0
	case "M27":
		if s.printing {
			return []string{fmt.Sprintf("SD printing byte %d/%d", s.done, s.size)}, "ok"
		}
		return []string{"Not SD printing"}, "ok"
	case "M1000":
		if s.recovery == "" {
			return nil, "ok"
		}
		name := s.recovery
		s.recovery = ""
		if strings.HasPrefix(strings.ToUpper(cmd.Arg), "C") {
			return []string{"echo:Recovery cancelled"}, "ok"
		}
		if size, ok := s.cfg.Files[name]; ok {
			s.file, s.size, s.done, s.printing = name, size, size/2, true
		}
	case "M104", "M109":
		tool := int(cmd.num('T', 0))
		if tool >= 0 && tool < len(s.hotends) && cmd.has('S') {
			s.hotends[tool].target = cmd.num('S', 0)
		}
		if cmd.Code == "M109" {
			s.waiting = true
			return nil, ""
		}
	case "M140", "M190":
		if cmd.has('S') {
			s.bed.target = cmd.num('S', 0)
		}
		if cmd.Code == "M190" {
			s.waiting = true
			return nil, ""
		}
	case "M105":
		return nil, "ok " + s.temperatureReport()
	case "M114":
		return []string{fmt.Sprintf("X:%.2f Y:%.2f Z:%.2f E:%.2f Count X:0 Y:0 Z:0", s.pos[0], s.pos[1], s.pos[2], s.pos[3])}, "ok"
	case "M81":
		for i := range s.hotends {
			s.hotends[i].target = 0
		}
		s.bed.target = 0
	case "M117":
		if cmd.Arg != "" {
			return []string{"//action:notification " + cmd.Arg}, "ok"
		}
	}
	return nil, "ok"
}
