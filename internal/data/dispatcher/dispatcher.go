package dispatcher

import (
	"time"

	"github.com/atomicstack/dwin-panel/internal/backend"
	"github.com/atomicstack/dwin-panel/internal/state"
)

type Result struct {
	ThermalUpdated  bool
	JobUpdated      bool
	PositionUpdated bool
	MediaChanged    bool
}

type Dispatcher struct {
	status state.StatusStore
	media  state.MediaStore
}

func New(s state.StatusStore, m state.MediaStore) *Dispatcher {
	return &Dispatcher{status: s, media: m}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		return res
	}
	switch evt.Kind {
	case backend.KindThermal:
		if report, ok := evt.Data.(backend.ThermalReport); ok {
			d.status.SetThermal(report.Hotends, report.Bed)
			res.ThermalUpdated = true
		}
	case backend.KindJob:
		if report, ok := evt.Data.(backend.JobReport); ok {
			d.status.UpdateJob(func(j *state.Job) {
				if report.Size > 0 {
					j.Done, j.Size = report.Done, report.Size
				}
				if report.Printing {
					j.Loaded = true
					j.Active = true
					if j.Started.IsZero() {
						j.Started = time.Now()
					}
				} else {
					j.Active = false
				}
			})
			res.JobUpdated = true
		}
	case backend.KindPosition:
		if pos, ok := evt.Data.(state.Position); ok {
			d.status.SetPosition(pos)
			res.PositionUpdated = true
		}
	case backend.KindMedia:
		if report, ok := evt.Data.(backend.MediaReport); ok && d.media != nil {
			res.MediaChanged = d.media.SetMedia(report.Mounted, report.Files)
		}
	}
	return res
}
