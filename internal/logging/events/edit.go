package events

import "github.com/atomicstack/dwin-panel/internal/logging"

type EditTracer struct{}

var Edit = EditTracer{}

func (EditTracer) Arm(field string, value int) {
	logging.Trace("edit.arm", map[string]interface{}{"field": field, "value": value})
}

func (EditTracer) Commit(field string, value int) {
	logging.Trace("edit.commit", map[string]interface{}{"field": field, "value": value})
}

func (EditTracer) Revert(field string, value int) {
	logging.Trace("edit.revert", map[string]interface{}{"field": field, "discarded": value})
}
