package printer

import "testing"

func TestParseTemperatures(t *testing.T) {
	hot, bed, ok := ParseTemperatures("ok T:201.3 /210.0 B:59.8 /60.0 T0:201.3 /210.0 T1:25.0 /0.0 @:127 B@:0")
	if !ok {
		t.Fatalf("expected a report")
	}
	if len(hot) != 2 || hot[0].Current != 201.3 || hot[0].Target != 210 || hot[1].Current != 25 {
		t.Fatalf("unexpected hotends %+v", hot)
	}
	if bed.Current != 59.8 || bed.Target != 60 {
		t.Fatalf("unexpected bed %+v", bed)
	}

	hot, _, ok = ParseTemperatures("T:25.0 /0.0 B:24.0 /0.0 @:0 B@:0")
	if !ok || len(hot) != 1 || hot[0].Current != 25 {
		t.Fatalf("single hotend report not parsed: %+v", hot)
	}

	if _, _, ok := ParseTemperatures("echo:busy: processing"); ok {
		t.Fatalf("busy line must not parse as temperatures")
	}
}

func TestParsePosition(t *testing.T) {
	p, ok := ParsePosition("X:10.00 Y:20.50 Z:0.30 E:1.20 Count X:800 Y:1640 Z:120")
	if !ok {
		t.Fatalf("expected position")
	}
	if p.X != 10 || p.Y != 20.5 || p.Z != 0.3 || p.E != 1.2 {
		t.Fatalf("unexpected position %+v", p)
	}
	if _, ok := ParsePosition("ok"); ok {
		t.Fatalf("ok must not parse as position")
	}
}

func TestParseSDProgress(t *testing.T) {
	printing, done, size, ok := ParseSDProgress("SD printing byte 1234/5678")
	if !ok || !printing || done != 1234 || size != 5678 {
		t.Fatalf("unexpected %v %d %d %v", printing, done, size, ok)
	}
	printing, _, _, ok = ParseSDProgress("Not SD printing")
	if !ok || printing {
		t.Fatalf("expected not printing")
	}
	if _, _, _, ok := ParseSDProgress("ok"); ok {
		t.Fatalf("unrelated line parsed")
	}
}

func TestParseNotice(t *testing.T) {
	cases := []struct {
		line string
		kind NoticeKind
		msg  PauseMessage
	}{
		{"//action:prompt_begin Nozzle Parked", NoticePause, PauseParking},
		{"//action:prompt_begin FilamentRunout T0", NoticePause, PauseChanging},
		{"//action:prompt_begin Insert filament", NoticePause, PauseInsert},
		{"//action:prompt_begin Purge more?", NoticePause, PauseOption},
		{"//action:prompt_begin Reheating", NoticePause, PauseHeat},
		{"//action:resumed", NoticePause, PauseResume},
		{"//action:prompt_begin Power loss recovery", NoticeRecovery, 0},
		{"Done printing file", NoticePrintDone, 0},
	}
	for _, tc := range cases {
		n, ok := ParseNotice(tc.line)
		if !ok {
			t.Fatalf("%q: expected notice", tc.line)
		}
		if n.Kind != tc.kind || (tc.kind == NoticePause && n.Pause != tc.msg) {
			t.Fatalf("%q: got kind=%d pause=%s", tc.line, n.Kind, n.Pause)
		}
	}

	n, ok := ParseNotice("Probing mesh point 3/16.")
	if !ok || n.Kind != NoticeLeveling || n.Point != 3 || n.Total != 16 {
		t.Fatalf("unexpected leveling notice %+v", n)
	}
	n, ok = ParseNotice("//action:notification WIFI: 192.168.1.20")
	if !ok || n.Kind != NoticeMessage || n.Text != "WIFI: 192.168.1.20" {
		t.Fatalf("unexpected message notice %+v", n)
	}
	if _, ok := ParseNotice("echo:busy: processing"); ok {
		t.Fatalf("busy line must not be a notice")
	}
}

func TestParseCommand(t *testing.T) {
	c := parseCommand("G1 X10.5 E-2 F3000 ; move")
	if c.Code != "G1" || c.num('X', 0) != 10.5 || c.num('E', 0) != -2 || c.num('F', 0) != 3000 {
		t.Fatalf("unexpected parse %+v", c)
	}
	c = parseCommand("M23 benchy.gcode")
	if c.Code != "M23" || c.Arg != "benchy.gcode" {
		t.Fatalf("unexpected file arg %+v", c)
	}
	c = parseCommand("G28O")
	if c.Code != "G28" || !c.has('O') {
		t.Fatalf("expected G28 with O flag, got %+v", c)
	}
}

func TestExtruderMoveText(t *testing.T) {
	if got := ExtruderMove(1, 12.5); got != "T1\nG92 E0\nG1 E12.5 F100\nG92 E0" {
		t.Fatalf("unexpected extrude %q", got)
	}
	if got := ExtruderMove(0, -3); got != "T0\nG92 E0\nG1 E-3.0 F100\nG92 E0" {
		t.Fatalf("unexpected retract %q", got)
	}
	if got := RetractLength(1.5); got != "M207 S1.50" {
		t.Fatalf("unexpected retract length %q", got)
	}
	if got := ReprintTimes(3); got != "M180 T   3" {
		t.Fatalf("unexpected reprint times %q", got)
	}
}
