package input

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
)

func TestQueueFIFOAndDepth(t *testing.T) {
	q := NewQueue(2)
	if q.Push(None) {
		t.Fatalf("None must not be queued")
	}
	q.Push(CW)
	q.Push(Press)
	if q.Push(CCW) {
		t.Fatalf("expected drop beyond depth")
	}
	if got := q.Poll(); got != CW {
		t.Fatalf("expected cw first, got %s", got)
	}
	if got := q.Poll(); got != Press {
		t.Fatalf("expected press second, got %s", got)
	}
	if got := q.Poll(); got != None {
		t.Fatalf("expected none when empty, got %s", got)
	}
}

func TestRateAccelerates(t *testing.T) {
	clock := time.Unix(0, 0)
	r := NewRate()
	r.SetClock(func() time.Time { return clock })

	if got := r.Step(CW); got != 1 {
		t.Fatalf("disabled rate must be 1, got %d", got)
	}
	r.Enable()
	var got int
	for i := 0; i <= rateFastRuns; i++ {
		clock = clock.Add(10 * time.Millisecond)
		got = r.Step(CW)
	}
	if got != rateFast {
		t.Fatalf("expected fast multiplier after a long run, got %d", got)
	}
	clock = clock.Add(10 * time.Millisecond)
	if got := r.Step(CCW); got != 1 {
		t.Fatalf("direction change must reset the run, got %d", got)
	}
	clock = clock.Add(time.Second)
	if got := r.Step(CCW); got != 1 {
		t.Fatalf("slow turn must not accelerate, got %d", got)
	}
	r.Disable()
	if got := r.Step(CW); got != 1 {
		t.Fatalf("expected 1 after disable, got %d", got)
	}
}

func TestDecodeQuadrature(t *testing.T) {
	cases := []struct {
		a, b gpio.Level
		want Event
	}{
		{gpio.Low, gpio.High, CW},
		{gpio.Low, gpio.Low, CCW},
		{gpio.High, gpio.Low, None},
	}
	for _, tc := range cases {
		if got := decodeQuadrature(tc.a, tc.b); got != tc.want {
			t.Fatalf("a=%v b=%v: expected %s, got %s", tc.a, tc.b, tc.want, got)
		}
	}
}
