package state

import "testing"

func TestSnapshotIsolatesHotends(t *testing.T) {
	s := NewStatusStore(2)
	s.SetThermal([]Thermal{{Current: 25, Target: 200}, {Current: 24}}, Thermal{Current: 22, Target: 60})

	snap := s.Snapshot()
	snap.Hotends[0].Target = 0
	if got := s.Snapshot().Hotends[0].Target; got != 200 {
		t.Fatalf("snapshot mutation leaked into store, target=%v", got)
	}
	if got := s.Snapshot().Bed.Target; got != 60 {
		t.Fatalf("expected bed target 60, got %v", got)
	}
}

func TestSetTargetsSkipsNegative(t *testing.T) {
	s := NewStatusStore(1)
	s.SetTargets(0, 210, -1)
	s.SetTargets(-1, -1, 55)
	snap := s.Snapshot()
	if snap.Hotends[0].Target != 210 || snap.Bed.Target != 55 {
		t.Fatalf("unexpected targets %+v / %+v", snap.Hotends[0], snap.Bed)
	}
}

func TestJobPercent(t *testing.T) {
	cases := []struct {
		job  Job
		want int
	}{
		{Job{}, 0},
		{Job{Done: 50, Size: 200}, 25},
		{Job{Done: 300, Size: 200}, 100},
	}
	for _, tc := range cases {
		if got := tc.job.Percent(); got != tc.want {
			t.Fatalf("%+v: expected %d, got %d", tc.job, tc.want, got)
		}
	}
}
