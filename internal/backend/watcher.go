package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/state"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindThermal Kind = iota
	KindJob
	KindPosition
	KindMedia
)

func (k Kind) String() string {
	switch k {
	case KindThermal:
		return "thermal"
	case KindJob:
		return "job"
	case KindPosition:
		return "position"
	case KindMedia:
		return "media"
	}
	return "unknown"
}

// Event conveys updated data or an error from a backend poll.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// ThermalReport is the data carried by KindThermal events.
type ThermalReport struct {
	Hotends []state.Thermal
	Bed     state.Thermal
}

// JobReport is the data carried by KindJob events.
type JobReport struct {
	Printing bool
	Done     int64
	Size     int64
}

// MediaReport is the data carried by KindMedia events.
type MediaReport struct {
	Mounted bool
	Files   []string
}

// Querier sends one line to the controller and returns its reply.
type Querier interface {
	Query(ctx context.Context, line string) ([]string, error)
}

// MediaSource reports whether removable media is present and what it holds.
type MediaSource interface {
	Mounted() bool
	List() ([]string, error)
}

// Watcher polls the controller and the media slot at a fixed interval and
// publishes events.
type Watcher struct {
	querier  Querier
	media    MediaSource
	interval time.Duration
	pacer    *pacer

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts pollers for every collaborator that is not nil.
func NewWatcher(q Querier, media MediaSource, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		querier:  q,
		media:    media,
		interval: interval,
		pacer:    newPacer(queryGap),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	if q != nil {
		w.startThermalPoller()
		w.startJobPoller()
		w.startPositionPoller()
	}
	if media != nil {
		w.startMediaPoller()
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Pollers exit after their current fetch completes;
// use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all poller goroutines have exited and the events channel
// is closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) query(ctx context.Context, line string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return w.querier.Query(ctx, line)
}

func (w *Watcher) startThermalPoller() {
	w.wg.Add(1)
	go w.poll(KindThermal, func(ctx context.Context) (interface{}, error) {
		if err := w.pacer.wait(ctx); err != nil {
			return nil, err
		}
		reply, err := w.query(ctx, printer.CmdReportTemps)
		if err != nil {
			return nil, err
		}
		for _, line := range reply {
			if hot, bed, ok := printer.ParseTemperatures(line); ok {
				return ThermalReport{Hotends: hot, Bed: bed}, nil
			}
		}
		return nil, fmt.Errorf("no temperature report in %q", reply)
	})
}

func (w *Watcher) startJobPoller() {
	w.wg.Add(1)
	go w.poll(KindJob, func(ctx context.Context) (interface{}, error) {
		if err := w.pacer.wait(ctx); err != nil {
			return nil, err
		}
		reply, err := w.query(ctx, printer.CmdReportSD)
		if err != nil {
			return nil, err
		}
		for _, line := range reply {
			if printing, done, size, ok := printer.ParseSDProgress(line); ok {
				return JobReport{Printing: printing, Done: done, Size: size}, nil
			}
		}
		return nil, fmt.Errorf("no SD report in %q", reply)
	})
}

func (w *Watcher) startPositionPoller() {
	w.wg.Add(1)
	go w.poll(KindPosition, func(ctx context.Context) (interface{}, error) {
		if err := w.pacer.wait(ctx); err != nil {
			return nil, err
		}
		reply, err := w.query(ctx, printer.CmdReportPosition)
		if err != nil {
			return nil, err
		}
		for _, line := range reply {
			if pos, ok := printer.ParsePosition(line); ok {
				return pos, nil
			}
		}
		return nil, fmt.Errorf("no position report in %q", reply)
	})
}

func (w *Watcher) startMediaPoller() {
	w.wg.Add(1)
	go w.poll(KindMedia, func(ctx context.Context) (interface{}, error) {
		if !w.media.Mounted() {
			events.Backend.Media(false, 0)
			return MediaReport{}, nil
		}
		files, err := w.media.List()
		if err != nil {
			return nil, err
		}
		events.Backend.Media(true, len(files))
		return MediaReport{Mounted: true, Files: files}, nil
	})
}

func (w *Watcher) poll(kind Kind, fetch func(context.Context) (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch(w.ctx)
		if w.ctx.Err() != nil {
			return false
		}
		events.Backend.Poll(kind.String(), err)
		evt := Event{Kind: kind, Data: data, Err: err}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
