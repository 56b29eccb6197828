package hmi

import (
	"fmt"

	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/menu"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/surface"
)

type testStep uint8

const (
	testMedia testStep = iota
	testHotend
	testBed
	testFan
	testXY
	testZ
	testExtruder
	testKnob
	testDone
)

var testNames = [...]string{
	testMedia:    "SD card",
	testHotend:   "Hotend heater",
	testBed:      "Bed heater",
	testFan:      "Fan",
	testXY:       "X/Y motion",
	testZ:        "Z motion",
	testExtruder: "Extruder",
	testKnob:     "Knob",
}

// Self-test limits, in seconds and degrees.
const (
	mediaTimeout  = 10
	hotendTimeout = 15
	hotendRise    = 4
	bedTimeout    = 10
	bedRise       = 3
	fanSeconds    = 3
	jogMoves      = 4
	knobTimeout   = 30
	knobTurns     = 10
	knobPresses   = 3

	testHotendTarget = 60
	testBedTarget    = 50
)

type testResult struct {
	step testStep
	ok   bool
}

// selfTest walks the factory check. It replaces the normal dispatcher
// while it runs and reads the encoder itself.
type selfTest struct {
	step       testStep
	ticks      int
	secs       int
	baseHotend float64
	baseBed    float64
	moves      int
	turns      int
	presses    int
	results    []testResult
}

// EnterSelfTest starts the factory self-test, abandoning any armed edit.
func (s *Session) EnterSelfTest() {
	if s.edit != nil {
		s.discardEdit()
	}
	s.selfTest = &selfTest{}
	events.Lifecycle.Flow("self-test", "start")
	s.show(menu.SelfTest)
}

// SelfTestRunning reports whether the self-test owns the panel.
func (s *Session) SelfTestRunning() bool {
	return s.selfTest != nil
}

func (s *Session) stepSelfTest() {
	t := s.selfTest
	ev := input.None
	if s.in != nil {
		ev = s.in.Poll()
	}
	if ev != input.None {
		events.Input.Event(ev.String())
	}
	switch t.step {
	case testKnob:
		switch ev {
		case input.CW, input.CCW:
			t.turns++
		case input.Press:
			t.presses++
		}
		if t.turns > knobTurns && t.presses > knobPresses {
			s.finishStep(true)
			return
		}
	case testDone:
		if ev == input.Press {
			s.exitSelfTest()
		}
		return
	}

	t.ticks++
	if t.ticks%s.opts.StatusTicks != 0 {
		return
	}
	t.secs++
	s.timeStep(t)
}

// timeStep runs the once-per-second part of the current check.
func (s *Session) timeStep(t *selfTest) {
	st := s.status()
	switch t.step {
	case testMedia:
		switch {
		case s.media != nil && s.media.Mounted():
			s.finishStep(true)
		case t.secs >= mediaTimeout:
			s.finishStep(false)
		}
	case testHotend:
		switch {
		case st.Hotend(0).Current >= t.baseHotend+hotendRise:
			s.finishStep(true)
		case t.secs >= hotendTimeout:
			s.finishStep(false)
		}
	case testBed:
		switch {
		case st.Bed.Current >= t.baseBed+bedRise:
			s.finishStep(true)
		case t.secs >= bedTimeout:
			s.finishStep(false)
		}
	case testFan:
		if t.secs >= fanSeconds {
			s.finishStep(s.sink.Enqueue(printer.SetFan(0) + "\n" + printer.SetHotend(0, 0)))
		}
	case testXY, testZ:
		moves := [2]string{"X10 Y10", "X-10 Y-10"}
		feed := moveFeed[0]
		if t.step == testZ {
			moves = [2]string{"Z10", "Z-10"}
			feed = moveFeed[2]
		}
		if !s.sink.Enqueue(printer.Jog(moves[t.moves%2], feed)) {
			s.finishStep(false)
			return
		}
		t.moves++
		if t.moves >= jogMoves {
			s.finishStep(true)
		}
	case testExtruder:
		cmds := printer.CmdColdExtrudeOn
		for i := 0; i < s.opts.Caps.Extruders; i++ {
			cmds += "\n" + printer.ExtruderMove(i, 10)
		}
		cmds += "\n" + printer.CmdColdExtrudeOff
		s.finishStep(s.sink.Enqueue(cmds))
	case testKnob:
		if t.secs >= knobTimeout {
			s.finishStep(false)
		}
	}
}

// finishStep records the outcome and prepares the next check.
func (s *Session) finishStep(ok bool) {
	t := s.selfTest
	t.results = append(t.results, testResult{step: t.step, ok: ok})
	events.Lifecycle.Flow("self-test", fmt.Sprintf("%s ok=%v", testNames[t.step], ok))
	if t.step == testBed {
		s.sink.Enqueue(printer.SetBed(0))
	}
	t.step++
	t.secs = 0
	t.moves = 0
	st := s.status()
	switch t.step {
	case testHotend:
		t.baseHotend = st.Hotend(0).Current
		t.baseBed = st.Bed.Current
		s.sink.Enqueue(printer.SetHotend(0, testHotendTarget) + "\n" + printer.SetBed(testBedTarget))
	case testFan:
		s.sink.Enqueue(printer.SetFan(maxFan))
	}
	s.drawSelfTest()
}

func (s *Session) exitSelfTest() {
	s.selfTest = nil
	s.active = menu.None
	events.Lifecycle.Flow("self-test", "done")
	if s.booted {
		s.enter(menu.Main)
	}
}

func (s *Session) drawSelfTest() {
	t := s.selfTest
	if t == nil {
		return
	}
	s.drawTitle("Self test")
	y := listTop
	for _, r := range t.results {
		fg, verdict := surface.Green, "OK"
		if !r.ok {
			fg, verdict = surface.Red, "FAIL"
		}
		s.surf.Text(surface.White, surface.BgBlack, 16, y, testNames[r.step])
		s.surf.Text(fg, surface.BgBlack, valueX, y, verdict)
		y += 32
	}
	switch t.step {
	case testDone:
		s.surf.Text(surface.Yellow, surface.BgBlack, 16, y+16, "Press to exit")
	case testKnob:
		s.surf.Text(surface.Yellow, surface.BgBlack, 16, y, "Turn and press the knob")
	default:
		s.surf.Text(surface.Yellow, surface.BgBlack, 16, y, testNames[t.step]+"...")
	}
}
