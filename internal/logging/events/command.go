package events

import "github.com/atomicstack/dwin-panel/internal/logging"

type CommandTracer struct{}

type BackendTracer struct{}

var (
	Command = CommandTracer{}
	Backend = BackendTracer{}
)

func (CommandTracer) Enqueue(line string, accepted bool) {
	logging.Trace("command.enqueue", map[string]interface{}{"line": line, "accepted": accepted})
}

func (CommandTracer) Synchronize(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("command.synchronize", payload)
}

func (CommandTracer) Reply(line string, reply []string) {
	logging.Trace("command.reply", map[string]interface{}{"line": line, "reply": reply})
}

func (BackendTracer) Poll(kind string, err error) {
	payload := map[string]interface{}{"kind": kind}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("backend.poll", payload)
}

func (BackendTracer) Media(mounted bool, files int) {
	logging.Trace("backend.media", map[string]interface{}{"mounted": mounted, "files": files})
}
