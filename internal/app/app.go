package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atomicstack/dwin-panel/internal/backend"
	"github.com/atomicstack/dwin-panel/internal/config"
	"github.com/atomicstack/dwin-panel/internal/hmi"
	"github.com/atomicstack/dwin-panel/internal/input"
	"github.com/atomicstack/dwin-panel/internal/logging"
	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/atomicstack/dwin-panel/internal/media"
	"github.com/atomicstack/dwin-panel/internal/printer"
	"github.com/atomicstack/dwin-panel/internal/settings"
	"github.com/atomicstack/dwin-panel/internal/state"
	"github.com/atomicstack/dwin-panel/internal/surface"
	"github.com/atomicstack/dwin-panel/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

const simInterval = 200 * time.Millisecond

// panel is one assembled front panel and everything it must release.
type panel struct {
	model   *ui.Model
	session *hmi.Session
	host    *printer.Host
	watcher *backend.Watcher
	closers []func() error
}

// Run bootstraps the panel and blocks until it exits.
func Run(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := build(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	if cfg.Panel.Display == config.DisplayFramebuffer {
		return p.runHeadless(ctx, cfg.Panel.Tick)
	}
	program := tea.NewProgram(p.model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func build(cfg config.Config) (*panel, error) {
	p := &panel{}
	ok := false
	defer func() {
		if !ok {
			p.close()
		}
	}()

	status := state.NewStatusStore(cfg.Caps.Hotends())
	mediaStore := state.NewMediaStore()
	dir := media.NewDir(cfg.Media.Dir)
	primeMedia(dir, mediaStore)

	transport, err := openTransport(cfg, dir)
	if err != nil {
		return nil, err
	}
	p.host = printer.NewHost(transport, status, printer.DefaultQueueDepth)
	p.closers = append(p.closers, p.host.Close)

	surf, canvas, err := p.openSurface(cfg)
	if err != nil {
		return nil, err
	}

	queue := input.NewQueue(0)
	if cfg.Input.Encoder == config.EncoderGPIO {
		enc, err := input.OpenGPIO(input.GPIOConfig{
			PinA:      cfg.Input.PinA,
			PinB:      cfg.Input.PinB,
			PinButton: cfg.Input.Button,
		}, queue)
		if err != nil {
			return nil, fmt.Errorf("open encoder: %w", err)
		}
		p.closers = append(p.closers, enc.Close)
	}

	p.session = hmi.New(hmi.Deps{
		Sink:     p.host,
		Surface:  surf,
		Input:    queue,
		Media:    ui.StoreMedia{Store: mediaStore},
		Settings: settings.NewFileStore(cfg.Media.SettingsPath, cfg.Caps.Extruders),
	}, hmi.Options{
		Caps:        cfg.Caps,
		StatusTicks: cfg.StatusTicks(),
	})
	p.watcher = backend.NewWatcher(p.host, dir, cfg.Printer.Poll)
	p.model = ui.NewModel(ui.Config{
		Session:    p.session,
		Input:      queue,
		Canvas:     canvas,
		Watcher:    p.watcher,
		Status:     status,
		Media:      mediaStore,
		Tick:       cfg.Panel.Tick,
		ShowFooter: true,
	})
	events.App.Panel(cfg.Panel.Display, cfg.Input.Encoder, cfg.Printer.Port)

	// Boot before anything asks for a screen.
	p.model.Step()
	if cfg.SelfTest {
		p.session.EnterSelfTest()
	} else if cfg.Print != "" {
		if err := startNamed(p.session, mediaStore.Files(), cfg.Print); err != nil {
			logging.Warn("print at boot skipped", map[string]interface{}{"error": err.Error()})
		}
	}
	ok = true
	return p, nil
}

func primeMedia(dir *media.Dir, store state.MediaStore) {
	if !dir.Mounted() {
		store.SetMedia(false, nil)
		return
	}
	files, err := dir.List()
	if err != nil {
		logging.Error(err)
	}
	store.SetMedia(true, files)
}

// openTransport opens the serial link, or the simulator when no port is
// configured. The simulator serves the media directory as its SD card.
func openTransport(cfg config.Config, dir *media.Dir) (printer.Transport, error) {
	if cfg.Printer.Port != "" {
		t, err := printer.OpenSerial(printer.SerialConfig{Device: cfg.Printer.Port, Baud: cfg.Printer.Baud})
		if err != nil {
			return nil, fmt.Errorf("open printer: %w", err)
		}
		return t, nil
	}
	sizes, err := dir.Sizes()
	if err != nil && !errors.Is(err, media.ErrNotMounted) {
		logging.Error(err)
	}
	return printer.NewSim(printer.SimConfig{
		Hotends:  cfg.Caps.Hotends(),
		Files:    sizes,
		Interval: simInterval,
	}), nil
}

func (p *panel) openSurface(cfg config.Config) (surface.Surface, *surface.Canvas, error) {
	if cfg.Panel.Display != config.DisplayFramebuffer {
		canvas := surface.NewCanvas()
		return canvas, canvas, nil
	}
	fb, err := surface.OpenFramebuffer(cfg.Panel.FramebufferDev)
	if err != nil {
		return nil, nil, fmt.Errorf("open display: %w", err)
	}
	p.closers = append(p.closers, fb.Close)
	return fb, nil, nil
}

func startNamed(s *hmi.Session, files []string, query string) error {
	name, ok := media.Find(files, query)
	events.Media.Find(query, name)
	if !ok {
		return fmt.Errorf("no media file matches %q", query)
	}
	if !s.StartPrint(name) {
		return fmt.Errorf("start %s refused in state %s", name, s.State())
	}
	return nil
}

// runHeadless drives the panel without a terminal: the knob feeds the queue
// from GPIO and frames go to the framebuffer.
func (p *panel) runHeadless(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	var evts <-chan backend.Event
	if p.watcher != nil {
		evts = p.watcher.Events()
	}
	for {
		select {
		case <-ctx.Done():
			events.App.Stop("signal")
			return nil
		case evt, ok := <-evts:
			if !ok {
				evts = nil
				continue
			}
			p.model.Apply(evt)
		case <-ticker.C:
			if err := p.host.Err(); err != nil {
				return fmt.Errorf("printer link: %w", err)
			}
			p.model.Step()
		}
	}
}

func (p *panel) close() {
	if p.watcher != nil {
		p.watcher.Stop()
	}
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			logging.Error(err)
		}
	}
	p.closers = nil
}
