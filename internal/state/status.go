package state

import (
	"sync"
	"time"
)

// Thermal is one heater reading.
type Thermal struct {
	Current float64
	Target  float64
}

// Position is the last reported tool position.
type Position struct {
	X, Y, Z, E float64
}

// Job is the last reported SD print state.
type Job struct {
	Active  bool
	Loaded  bool
	Done    int64
	Size    int64
	Started time.Time
}

// Percent returns the job progress in whole percent.
func (j Job) Percent() int {
	if j.Size <= 0 {
		return 0
	}
	pct := int(j.Done * 100 / j.Size)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Snapshot is a consistent copy of everything the store holds.
type Snapshot struct {
	Hotends  []Thermal
	Bed      Thermal
	Position Position
	Job      Job
	Updated  time.Time
}

// StatusStore holds the most recent printer reports. It is written by the
// serial reader and the backend dispatcher and read by the panel tick.
type StatusStore interface {
	Snapshot() Snapshot
	SetThermal(hotends []Thermal, bed Thermal)
	SetTargets(hotend int, target float64, bed float64)
	SetPosition(Position)
	SetJob(Job)
	UpdateJob(func(*Job))
}

type statusStore struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStatusStore returns a store sized for the given hotend count.
func NewStatusStore(hotends int) StatusStore {
	if hotends < 1 {
		hotends = 1
	}
	return &statusStore{snap: Snapshot{Hotends: make([]Thermal, hotends)}}
}

func (s *statusStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Hotends = cloneThermals(s.snap.Hotends)
	return out
}

func (s *statusStore) SetThermal(hotends []Thermal, bed Thermal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range hotends {
		if i < len(s.snap.Hotends) {
			s.snap.Hotends[i] = hotends[i]
		}
	}
	s.snap.Bed = bed
	s.snap.Updated = time.Now()
}

// SetTargets records targets the panel just commanded, ahead of the next
// report. A negative value leaves that heater alone.
func (s *statusStore) SetTargets(hotend int, target float64, bed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hotend >= 0 && hotend < len(s.snap.Hotends) && target >= 0 {
		s.snap.Hotends[hotend].Target = target
	}
	if bed >= 0 {
		s.snap.Bed.Target = bed
	}
}

func (s *statusStore) SetPosition(p Position) {
	s.mu.Lock()
	s.snap.Position = p
	s.mu.Unlock()
}

func (s *statusStore) SetJob(j Job) {
	s.mu.Lock()
	s.snap.Job = j
	s.mu.Unlock()
}

func (s *statusStore) UpdateJob(fn func(*Job)) {
	s.mu.Lock()
	fn(&s.snap.Job)
	s.mu.Unlock()
}

func cloneThermals(in []Thermal) []Thermal {
	if len(in) == 0 {
		return nil
	}
	dup := make([]Thermal, len(in))
	copy(dup, in)
	return dup
}
