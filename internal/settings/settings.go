package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Preset is one material preheat profile.
type Preset struct {
	Hotend int `json:"hotend"`
	Bed    int `json:"bed"`
	Fan    int `json:"fan"`
}

// Reprint configures repeat printing.
type Reprint struct {
	Enabled bool `json:"enabled"`
	Times   int  `json:"times"`
	Length  int  `json:"length"`
}

// Gradient blends between two virtual tools over a Z range.
type Gradient struct {
	Enabled   bool    `json:"enabled"`
	StartZ    float64 `json:"startZ"`
	EndZ      float64 `json:"endZ"`
	StartTool int     `json:"startTool"`
	EndTool   int     `json:"endTool"`
}

// Random re-mixes the filament every Height millimetres.
type Random struct {
	Enabled   bool    `json:"enabled"`
	StartZ    float64 `json:"startZ"`
	EndZ      float64 `json:"endZ"`
	Height    float64 `json:"height"`
	Extruders int     `json:"extruders"`
}

// Retract holds firmware retraction parameters.
type Retract struct {
	Auto          bool    `json:"auto"`
	Length        float64 `json:"length"`
	Speed         float64 `json:"speed"`
	ZHop          float64 `json:"zHop"`
	RecoverLength float64 `json:"recoverLength"`
	RecoverSpeed  float64 `json:"recoverSpeed"`
}

// Motion holds the per-axis planner limits, in X, Y, Z, E order.
type Motion struct {
	MaxFeedrate [4]float64 `json:"maxFeedrate"`
	MaxAccel    [4]float64 `json:"maxAccel"`
	MaxJerk     [4]float64 `json:"maxJerk"`
	StepsPerMM  [4]float64 `json:"stepsPerMM"`
}

// Settings is everything the panel persists between runs.
type Settings struct {
	PLA          Preset   `json:"pla"`
	ABS          Preset   `json:"abs"`
	Reprint      Reprint  `json:"reprint"`
	Gradient     Gradient `json:"gradient"`
	Random       Random   `json:"random"`
	Retract      Retract  `json:"retract"`
	Motion       Motion   `json:"motion"`
	ProbeZOffset float64  `json:"probeZOffset"`
	MixPercents  []int    `json:"mixPercents"`
	VTool        int      `json:"vtool"`
	Runout       bool     `json:"runout"`
	PowerLoss    bool     `json:"powerLoss"`
	AutoShutdown bool     `json:"autoShutdown"`
	WiFi         bool     `json:"wifi"`
}

// Defaults returns factory settings for a machine with the given number of
// extruder steppers.
func Defaults(extruders int) Settings {
	s := Settings{
		PLA:      Preset{Hotend: 200, Bed: 60, Fan: 255},
		ABS:      Preset{Hotend: 240, Bed: 90, Fan: 255},
		Reprint:  Reprint{Times: 1, Length: 300},
		Gradient: Gradient{EndZ: 10, EndTool: 1},
		Random:   Random{EndZ: 10, Height: 0.2, Extruders: 2},
		Retract: Retract{
			Length:       3,
			Speed:        45,
			RecoverSpeed: 25,
		},
		Motion: Motion{
			MaxFeedrate: [4]float64{500, 500, 5, 25},
			MaxAccel:    [4]float64{500, 500, 100, 5000},
			MaxJerk:     [4]float64{10, 10, 0.3, 5},
			StepsPerMM:  [4]float64{80, 80, 400, 93},
		},
		Runout:    true,
		PowerLoss: true,
	}
	s.Normalize(extruders)
	return s
}

// Normalize sizes the mix to the stepper count and makes it sum to 100.
func (s *Settings) Normalize(extruders int) {
	if extruders < 1 {
		extruders = 1
	}
	if len(s.MixPercents) != extruders {
		s.MixPercents = make([]int, extruders)
	}
	sum := 0
	for i, p := range s.MixPercents {
		if p < 0 {
			s.MixPercents[i] = 0
		}
		if p > 100 {
			s.MixPercents[i] = 100
		}
		sum += s.MixPercents[i]
	}
	if sum != 100 {
		share := 100 / extruders
		for i := range s.MixPercents {
			s.MixPercents[i] = share
		}
		s.MixPercents[0] += 100 - share*extruders
	}
	if s.Random.Extruders < 1 || s.Random.Extruders > extruders {
		s.Random.Extruders = extruders
	}
}

// Store loads and saves settings.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileStore keeps settings as a JSON document.
type FileStore struct {
	Path      string
	Extruders int
}

// NewFileStore returns a store at path.
func NewFileStore(path string, extruders int) *FileStore {
	return &FileStore{Path: path, Extruders: extruders}
}

// Load reads the file. A missing file yields the defaults.
func (f *FileStore) Load() (Settings, error) {
	s := Defaults(f.Extruders)
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(f.Extruders), fmt.Errorf("decode settings: %w", err)
	}
	s.Normalize(f.Extruders)
	return s, nil
}

// Save writes the file through a temporary sibling so a crash never leaves
// a truncated document.
func (f *FileStore) Save(s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	Saved   *Settings
	Initial Settings
	Err     error
}

func (m *Memory) Load() (Settings, error) {
	if m.Err != nil {
		return m.Initial, m.Err
	}
	if m.Saved != nil {
		return *m.Saved, nil
	}
	return m.Initial, nil
}

func (m *Memory) Save(s Settings) error {
	if m.Err != nil {
		return m.Err
	}
	cp := s
	cp.MixPercents = append([]int(nil), s.MixPercents...)
	m.Saved = &cp
	return nil
}
