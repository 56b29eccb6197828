package events

import "github.com/atomicstack/dwin-panel/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Stop(reason string) {
	logging.Trace("app.stop", map[string]interface{}{"reason": reason})
}

func (AppTracer) Panel(display, encoder, port string) {
	logging.Trace("app.panel", map[string]interface{}{"display": display, "encoder": encoder, "port": port})
}
