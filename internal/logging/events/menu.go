package events

import "github.com/atomicstack/dwin-panel/internal/logging"

type MenuTracer struct{}

type InputTracer struct{}

var (
	Menu  = MenuTracer{}
	Input = InputTracer{}
)

func (MenuTracer) Enter(from, to string) {
	logging.Trace("menu.enter", map[string]interface{}{"from": from, "to": to})
}

func (MenuTracer) Cursor(menuID string, now, offset int) {
	logging.Trace("menu.cursor", map[string]interface{}{"menu": menuID, "cursor": now, "offset": offset})
}

func (MenuTracer) Unhandled(menuID, event string) {
	logging.Trace("menu.unhandled", map[string]interface{}{"menu": menuID, "event": event})
}

func (InputTracer) Event(event string) {
	logging.Trace("input.event", map[string]interface{}{"event": event})
}

func (InputTracer) Dropped(event string, queued int) {
	logging.Trace("input.dropped", map[string]interface{}{"event": event, "queued": queued})
}
