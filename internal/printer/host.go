package printer

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/dwin-panel/internal/logging"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/state"
)

// DefaultQueueDepth matches the firmware's command buffer.
const DefaultQueueDepth = 16

const syncPoll = 10 * time.Millisecond

// Transport moves G-code lines to and from the controller.
type Transport interface {
	WriteLine(line string) error
	ReadLine() (string, error)
	Close() error
}

type request struct {
	line  string
	reply chan []string
}

// Host drives a Marlin-style controller over a line transport. Commands are
// sent one at a time and each waits for its "ok" before the next goes out.
// Replies are parsed into the status store as they arrive.
type Host struct {
	transport Transport
	store     state.StatusStore
	depth     int

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []request
	inflight  *request
	collected []string
	heating   bool
	fan       int
	feedrate  int
	recovery  bool
	notices   []Notice
	closed    bool
	err       error

	acked chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewHost starts the reader and writer loops over t.
func NewHost(t Transport, store state.StatusStore, depth int) *Host {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	h := &Host{
		transport: t,
		store:     store,
		depth:     depth,
		feedrate:  100,
		acked:     make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	h.cond = sync.NewCond(&h.mu)
	h.wg.Add(2)
	go h.readLoop()
	go h.writeLoop()
	return h
}

// Enqueue implements Sink.
func (h *Host) Enqueue(text string) bool {
	lines := Lines(text)
	if len(lines) == 0 {
		return true
	}
	h.mu.Lock()
	ok := !h.closed && len(h.queue)+len(lines) <= h.depth
	if ok {
		for _, l := range lines {
			h.queue = append(h.queue, request{line: l})
		}
		h.cond.Broadcast()
	}
	h.mu.Unlock()
	events.Command.Enqueue(text, ok)
	return ok
}

// QueueFull implements Sink.
func (h *Host) QueueFull() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue) >= h.depth
}

// Synchronize waits until every queued command has been acknowledged.
func (h *Host) Synchronize(ctx context.Context) error {
	err := h.waitIdle(ctx)
	events.Command.Synchronize(err)
	return err
}

func (h *Host) waitIdle(ctx context.Context) error {
	for {
		h.mu.Lock()
		idle := len(h.queue) == 0 && h.inflight == nil
		closed := h.closed
		h.mu.Unlock()
		if idle {
			return nil
		}
		if closed {
			return ErrClosed
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(syncPoll):
		}
	}
}

// Query sends one line past the queue limit and returns the lines the
// controller printed before acknowledging it.
func (h *Host) Query(ctx context.Context, line string) ([]string, error) {
	req := request{line: strings.TrimSpace(line), reply: make(chan []string, 1)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	h.queue = append(h.queue, req)
	h.cond.Broadcast()
	h.mu.Unlock()

	select {
	case reply := <-req.reply:
		events.Command.Reply(req.line, reply)
		return reply, nil
	case <-h.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status implements Sink.
func (h *Host) Status() Status {
	snap := h.store.Snapshot()
	h.mu.Lock()
	defer h.mu.Unlock()
	st := Status{
		Hotends:       snap.Hotends,
		Bed:           snap.Bed,
		Fan:           h.fan,
		Position:      snap.Position,
		Feedrate:      h.feedrate,
		Active:        snap.Job.Active,
		Paused:        snap.Job.Loaded && !snap.Job.Active,
		QueueEmpty:    len(h.queue) == 0 && h.inflight == nil,
		WaitingHeatup: h.heating,
		Percent:       snap.Job.Percent(),
		Recovery:      h.recovery,
	}
	if snap.Job.Loaded && !snap.Job.Started.IsZero() {
		st.Elapsed = time.Since(snap.Job.Started)
	}
	return st
}

// Abort drops everything still queued, breaks any heater wait, and stops
// the SD job.
func (h *Host) Abort() {
	h.mu.Lock()
	dropped := len(h.queue)
	heating := h.heating
	kept := []request{{line: CmdAbortSD}}
	for _, r := range h.queue {
		if r.reply != nil {
			kept = append(kept, r)
		}
	}
	h.queue = kept
	h.cond.Broadcast()
	h.mu.Unlock()
	if heating {
		// the controller's emergency parser acts on M108 without queueing it
		if err := h.transport.WriteLine(CmdContinue); err != nil {
			logging.Error(err)
		}
	}
	logging.Trace("command.abort", map[string]interface{}{"dropped": dropped, "heating": heating})
}

// Notices implements Notifier.
func (h *Host) Notices() []Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.notices
	h.notices = nil
	return out
}

// Err returns the error that closed the link, if any.
func (h *Host) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Close stops both loops and closes the transport.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed && h.err == nil {
		h.mu.Unlock()
		return nil
	}
	already := h.closed
	h.closed = true
	h.cond.Broadcast()
	h.mu.Unlock()
	if !already {
		close(h.done)
	}
	err := h.transport.Close()
	h.wg.Wait()
	return err
}

func (h *Host) fail(err error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.err = err
	h.cond.Broadcast()
	h.mu.Unlock()
	close(h.done)
	logging.Error(err)
}

func (h *Host) writeLoop() {
	defer h.wg.Done()
	for {
		h.mu.Lock()
		for len(h.queue) == 0 && !h.closed {
			h.cond.Wait()
		}
		if h.closed {
			h.mu.Unlock()
			return
		}
		req := h.queue[0]
		h.queue = h.queue[1:]
		h.inflight = &req
		h.collected = nil
		h.heating = isHeaterWait(req.line)
		h.mu.Unlock()

		cmd := parseCommand(req.line)
		h.beforeSend(cmd)
		if err := h.transport.WriteLine(req.line); err != nil {
			h.fail(err)
			return
		}
		select {
		case <-h.acked:
		case <-h.done:
			return
		}

		h.mu.Lock()
		reply := h.collected
		h.collected = nil
		h.inflight = nil
		h.heating = false
		h.mu.Unlock()
		h.afterAck(cmd)
		if req.reply != nil {
			req.reply <- reply
		}
	}
}

func (h *Host) readLoop() {
	defer h.wg.Done()
	for {
		line, err := h.transport.ReadLine()
		if err != nil {
			select {
			case <-h.done:
			default:
				h.fail(err)
			}
			return
		}
		h.handleLine(strings.TrimSpace(line))
	}
}

func (h *Host) handleLine(line string) {
	if line == "" {
		return
	}
	if line == "ok" || strings.HasPrefix(line, "ok ") {
		h.absorb(strings.TrimPrefix(line, "ok"))
		h.mu.Lock()
		if h.inflight != nil {
			if len(line) > 2 {
				h.collected = append(h.collected, line)
			}
			select {
			case h.acked <- struct{}{}:
			default:
			}
		}
		h.mu.Unlock()
		return
	}
	h.absorb(line)
	h.mu.Lock()
	if h.inflight != nil {
		h.collected = append(h.collected, line)
	}
	h.mu.Unlock()
}

// absorb folds reports into the store and collects notices.
func (h *Host) absorb(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if hot, bed, ok := ParseTemperatures(line); ok {
		h.store.SetThermal(hot, bed)
		return
	}
	if pos, ok := ParsePosition(line); ok {
		h.store.SetPosition(pos)
		return
	}
	if printing, done, size, ok := ParseSDProgress(line); ok {
		h.store.UpdateJob(func(j *state.Job) {
			if size > 0 {
				j.Done, j.Size = done, size
			}
			if printing && !j.Loaded {
				j.Loaded = true
				j.Active = true
				if j.Started.IsZero() {
					j.Started = time.Now()
				}
			}
			if !printing && j.Active {
				j.Active = false
			}
		})
		return
	}
	if strings.HasPrefix(line, "File opened:") {
		if _, size, found := strings.Cut(line, "Size:"); found {
			if n, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64); err == nil {
				h.store.UpdateJob(func(j *state.Job) { j.Size = n })
			}
		}
		return
	}
	n, ok := ParseNotice(line)
	if !ok {
		return
	}
	switch n.Kind {
	case NoticePrintDone:
		h.store.UpdateJob(func(j *state.Job) {
			j.Active = false
			j.Loaded = false
			j.Done = j.Size
		})
	case NoticeRecovery:
		h.mu.Lock()
		h.recovery = true
		h.mu.Unlock()
	}
	h.push(n)
}

func (h *Host) push(n Notice) {
	h.mu.Lock()
	h.notices = append(h.notices, n)
	h.mu.Unlock()
}

func isHeaterWait(line string) bool {
	code := parseCommand(line).Code
	return code == "M109" || code == "M190"
}

// beforeSend records the effect of a command the moment it goes out.
func (h *Host) beforeSend(cmd command) {
	switch cmd.Code {
	case "M104", "M109":
		h.store.SetTargets(int(cmd.num('T', 0)), cmd.num('S', 0), -1)
	case "M140", "M190":
		h.store.SetTargets(-1, -1, cmd.num('S', 0))
	case "M106":
		h.mu.Lock()
		h.fan = int(cmd.num('S', 255))
		h.mu.Unlock()
	case "M107":
		h.mu.Lock()
		h.fan = 0
		h.mu.Unlock()
	case "M220":
		if cmd.has('S') {
			h.mu.Lock()
			h.feedrate = int(cmd.num('S', 100))
			h.mu.Unlock()
		}
	case "M23":
		h.store.SetJob(state.Job{})
	case "G29":
		h.push(Notice{Kind: NoticeLeveling, Leveling: LevelingStart})
	}
}

// afterAck records the effect of a command once the controller accepted it.
func (h *Host) afterAck(cmd command) {
	switch cmd.Code {
	case "M24", "M1000":
		if cmd.Code == "M1000" {
			h.mu.Lock()
			wasRecovery := h.recovery
			h.recovery = false
			h.mu.Unlock()
			if !wasRecovery || strings.HasPrefix(strings.ToUpper(cmd.Arg), "C") {
				return
			}
		}
		h.store.UpdateJob(func(j *state.Job) {
			j.Active = true
			j.Loaded = true
			if j.Started.IsZero() {
				j.Started = time.Now()
			}
		})
	case "M25":
		h.store.UpdateJob(func(j *state.Job) {
			if j.Loaded {
				j.Active = false
			}
		})
	case "M524":
		h.store.UpdateJob(func(j *state.Job) {
			j.Active = false
			j.Loaded = false
		})
	case "G29":
		h.push(Notice{Kind: NoticeLeveling, Leveling: LevelingDone})
	}
}
