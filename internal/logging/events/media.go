package events

import "github.com/atomicstack/dwin-panel/internal/logging"

type MediaTracer struct{}

var Media = MediaTracer{}

func (MediaTracer) List(root string, files int, err error) {
	payload := map[string]interface{}{"root": root, "files": files}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("media.list", payload)
}

func (MediaTracer) Find(query, match string) {
	logging.Trace("media.find", map[string]interface{}{"query": query, "match": match})
}
