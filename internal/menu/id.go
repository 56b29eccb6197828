package menu

// ID names every screen, popup, and armed edit mode the panel can show.
// Exactly one ID is active at a time.
type ID uint8

const (
	None ID = iota

	Main
	File
	Printing
	Tune
	Prepare
	Home
	Temperature
	PreheatPLA
	PreheatABS
	MoveAxis
	Control
	Motion
	MaxFeedrate
	MaxAccel
	MaxJerk
	StepsPerMM
	Config
	Retract
	Reprint
	Mixer
	MixManual
	MixGradient
	MixRandom
	Leveling
	Info

	PopPauseOrStop
	PopPrintDone
	PopPowerdown
	PopHome
	PopLeveling
	PopLevelingDone
	PopETempTooLow
	PopRunoutOption
	PopRunoutConfirm
	PopWaiting
	PopWiFi
	PowerLossResume
	SelfTest

	EditHotendTemp
	EditBedTemp
	EditFanSpeed
	EditPrintSpeed
	EditBabystep
	EditMoveX
	EditMoveY
	EditMoveZ
	EditMoveE
	EditPresetHotend
	EditPresetBed
	EditPresetFan
	EditMaxFeedrate
	EditMaxAccel
	EditMaxJerk
	EditStepsPerMM
	EditRetractLength
	EditRetractSpeed
	EditRetractZHop
	EditRecoverLength
	EditRecoverSpeed
	EditReprintTimes
	EditReprintLength
	EditMixPercent
	EditMixVTool
	EditGradientZStart
	EditGradientZEnd
	EditGradientStart
	EditGradientEnd
	EditRandomZStart
	EditRandomZEnd
	EditRandomHeight
	EditRandomExtruders
	EditProbeOffset

	idCount
)

var idNames = [...]string{
	None:                "none",
	Main:                "main",
	File:                "file",
	Printing:            "printing",
	Tune:                "tune",
	Prepare:             "prepare",
	Home:                "home",
	Temperature:         "temperature",
	PreheatPLA:          "preheat-pla",
	PreheatABS:          "preheat-abs",
	MoveAxis:            "move-axis",
	Control:             "control",
	Motion:              "motion",
	MaxFeedrate:         "max-feedrate",
	MaxAccel:            "max-accel",
	MaxJerk:             "max-jerk",
	StepsPerMM:          "steps-per-mm",
	Config:              "config",
	Retract:             "retract",
	Reprint:             "reprint",
	Mixer:               "mixer",
	MixManual:           "mix-manual",
	MixGradient:         "mix-gradient",
	MixRandom:           "mix-random",
	Leveling:            "leveling",
	Info:                "info",
	PopPauseOrStop:      "pop-pause-or-stop",
	PopPrintDone:        "pop-print-done",
	PopPowerdown:        "pop-powerdown",
	PopHome:             "pop-home",
	PopLeveling:         "pop-leveling",
	PopLevelingDone:     "pop-leveling-done",
	PopETempTooLow:      "pop-etemp-too-low",
	PopRunoutOption:     "pop-runout-option",
	PopRunoutConfirm:    "pop-runout-confirm",
	PopWaiting:          "pop-waiting",
	PopWiFi:             "pop-wifi",
	PowerLossResume:     "power-loss-resume",
	SelfTest:            "self-test",
	EditHotendTemp:      "edit-hotend-temp",
	EditBedTemp:         "edit-bed-temp",
	EditFanSpeed:        "edit-fan-speed",
	EditPrintSpeed:      "edit-print-speed",
	EditBabystep:        "edit-babystep",
	EditMoveX:           "edit-move-x",
	EditMoveY:           "edit-move-y",
	EditMoveZ:           "edit-move-z",
	EditMoveE:           "edit-move-e",
	EditPresetHotend:    "edit-preset-hotend",
	EditPresetBed:       "edit-preset-bed",
	EditPresetFan:       "edit-preset-fan",
	EditMaxFeedrate:     "edit-max-feedrate",
	EditMaxAccel:        "edit-max-accel",
	EditMaxJerk:         "edit-max-jerk",
	EditStepsPerMM:      "edit-steps-per-mm",
	EditRetractLength:   "edit-retract-length",
	EditRetractSpeed:    "edit-retract-speed",
	EditRetractZHop:     "edit-retract-zhop",
	EditRecoverLength:   "edit-recover-length",
	EditRecoverSpeed:    "edit-recover-speed",
	EditReprintTimes:    "edit-reprint-times",
	EditReprintLength:   "edit-reprint-length",
	EditMixPercent:      "edit-mix-percent",
	EditMixVTool:        "edit-mix-vtool",
	EditGradientZStart:  "edit-gradient-z-start",
	EditGradientZEnd:    "edit-gradient-z-end",
	EditGradientStart:   "edit-gradient-start",
	EditGradientEnd:     "edit-gradient-end",
	EditRandomZStart:    "edit-random-z-start",
	EditRandomZEnd:      "edit-random-z-end",
	EditRandomHeight:    "edit-random-height",
	EditRandomExtruders: "edit-random-extruders",
	EditProbeOffset:     "edit-probe-offset",
}

func (id ID) String() string {
	if int(id) < len(idNames) && idNames[id] != "" {
		return idNames[id]
	}
	return "unknown"
}

// IsPopup reports whether the id is a full-screen modal.
func (id ID) IsPopup() bool {
	return id >= PopPauseOrStop && id <= SelfTest
}

// IsEdit reports whether the id is an armed edit mode.
func (id ID) IsEdit() bool {
	return id >= EditHotendTemp && id < idCount
}

// All returns every declared id except None.
func All() []ID {
	ids := make([]ID, 0, int(idCount)-1)
	for id := Main; id < idCount; id++ {
		ids = append(ids, id)
	}
	return ids
}
