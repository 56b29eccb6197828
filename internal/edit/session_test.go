package edit

import (
	"math/rand"
	"testing"

	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/menu"
)

var hotend = Field{Name: "hotend", Menu: menu.EditHotendTemp, Scale: 1, Min: 0, Max: 275, Step: 1}

func TestAdjustClampsToBounds(t *testing.T) {
	fields := []Field{
		hotend,
		{Name: "zoffset", Menu: menu.EditProbeOffset, Scale: MaxUnitMult, Min: -500, Max: 500, Step: 1, Frac: 2},
		{Name: "x", Menu: menu.EditMoveX, Scale: MinUnitMult, Min: 0, Max: 2350, Step: 1, Frac: 1},
	}
	rng := rand.New(rand.NewSource(7))
	for _, f := range fields {
		s := Begin(f, f.Real((f.Min+f.Max)/2), menu.Temperature, 1, 0)
		for i := 0; i < 5000; i++ {
			ev := input.CW
			if rng.Intn(2) == 0 {
				ev = input.CCW
			}
			s.Adjust(ev, 1+rng.Intn(10))
			if s.Value < f.Min || s.Value > f.Max {
				t.Fatalf("%s: value %d escaped [%d,%d]", f.Name, s.Value, f.Min, f.Max)
			}
		}
	}
}

func TestOvershootLandsOnEndpoint(t *testing.T) {
	s := Begin(hotend, 270, menu.Temperature, 1, 0)
	for i := 0; i < 20; i++ {
		s.Adjust(input.CW, 1)
	}
	if s.Value != hotend.Max {
		t.Fatalf("expected max %d, got %d", hotend.Max, s.Value)
	}
	if s.Adjust(input.CW, 1) {
		t.Fatalf("adjust past max must report no change")
	}
	for i := 0; i < 400; i++ {
		s.Adjust(input.CCW, 10)
	}
	if s.Value != hotend.Min {
		t.Fatalf("expected min %d, got %d", hotend.Min, s.Value)
	}
}

func TestMaxDeltaLimitsTravelFromCommitted(t *testing.T) {
	f := Field{Name: "e", Menu: menu.EditMoveE, Scale: MinUnitMult, Min: -100000, Max: 100000, Step: 1, MaxDelta: ExtrudeMaxLength * MinUnitMult, Frac: 1}
	s := Begin(f, 50, menu.MoveAxis, 4, 0)
	for i := 0; i < 500; i++ {
		s.Adjust(input.CW, 10)
	}
	if got := s.Delta(); got != ExtrudeMaxLength {
		t.Fatalf("expected delta capped at %d, got %v", ExtrudeMaxLength, got)
	}
	for i := 0; i < 1000; i++ {
		s.Adjust(input.CCW, 10)
	}
	if got := s.Delta(); got != -ExtrudeMaxLength {
		t.Fatalf("expected delta capped at -%d, got %v", ExtrudeMaxLength, got)
	}
}

func TestCommitOnlyOnce(t *testing.T) {
	s := Begin(hotend, 200, menu.Temperature, 1, 0)
	for i := 0; i < 10; i++ {
		s.Adjust(input.CW, 1)
	}
	v, ok := s.Commit()
	if !ok || v != 210 {
		t.Fatalf("expected first commit of 210, got %d ok=%v", v, ok)
	}
	if _, ok := s.Commit(); ok {
		t.Fatalf("second commit must be refused")
	}
	if s.Adjust(input.CW, 1) {
		t.Fatalf("closed session must not adjust")
	}
}

func TestRevertReturnsCommitted(t *testing.T) {
	s := Begin(hotend, 200, menu.Temperature, 1, 0)
	s.Adjust(input.CW, 10)
	if got := s.Revert(); got != 200 {
		t.Fatalf("expected revert to 200, got %d", got)
	}
	if _, ok := s.Commit(); ok {
		t.Fatalf("reverted session must not commit")
	}
}

func TestScaledRoundTrip(t *testing.T) {
	f := Field{Scale: MaxUnitMult, Min: -1000, Max: 1000, Frac: 2}
	if got := f.Scaled(-1.255); got != -126 && got != -125 {
		t.Fatalf("unexpected scaling %d", got)
	}
	if got := f.Text(-125); got != "-1.25" {
		t.Fatalf("expected -1.25, got %q", got)
	}
}
