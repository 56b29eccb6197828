package events

import "github.com/atomicstack/dwin-panel/internal/logging"

type LifecycleTracer struct{}

var Lifecycle = LifecycleTracer{}

func (LifecycleTracer) Transition(from, event, to string) {
	logging.Trace("lifecycle.transition", map[string]interface{}{"from": from, "event": event, "to": to})
}

func (LifecycleTracer) Ignored(state, event string) {
	logging.Trace("lifecycle.ignored", map[string]interface{}{"state": state, "event": event})
}

func (LifecycleTracer) Escalate(state string, presses int) {
	logging.Trace("lifecycle.escalate", map[string]interface{}{"state": state, "presses": presses})
}

func (LifecycleTracer) Flow(name, detail string) {
	logging.Trace("lifecycle.flow", map[string]interface{}{"flow": name, "detail": detail})
}
