package input

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const (
	edgeTimeout    = 100 * time.Millisecond
	buttonDebounce = 40 * time.Millisecond
)

// GPIOConfig names the encoder pins, e.g. "GPIO17".
type GPIOConfig struct {
	PinA      string
	PinB      string
	PinButton string
}

// GPIOEncoder decodes a quadrature knob wired to GPIO pins into a Queue.
type GPIOEncoder struct {
	queue  *Queue
	a      gpio.PinIO
	b      gpio.PinIO
	button gpio.PinIO

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// OpenGPIO initialises periph, configures the pins, and starts edge watchers.
func OpenGPIO(cfg GPIOConfig, queue *Queue) (*GPIOEncoder, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	enc := &GPIOEncoder{queue: queue}
	pins := []struct {
		name string
		dst  *gpio.PinIO
		edge gpio.Edge
	}{
		{cfg.PinA, &enc.a, gpio.FallingEdge},
		{cfg.PinB, &enc.b, gpio.NoEdge},
		{cfg.PinButton, &enc.button, gpio.FallingEdge},
	}
	for _, p := range pins {
		pin := gpioreg.ByName(p.name)
		if pin == nil {
			return nil, fmt.Errorf("gpio pin %q not found", p.name)
		}
		if err := pin.In(gpio.PullUp, p.edge); err != nil {
			return nil, fmt.Errorf("configure %s: %w", p.name, err)
		}
		*p.dst = pin
	}
	ctx, cancel := context.WithCancel(context.Background())
	enc.cancel = cancel
	enc.wg.Add(2)
	go enc.watchRotation(ctx)
	go enc.watchButton(ctx)
	return enc, nil
}

// Close stops the watchers.
func (e *GPIOEncoder) Close() error {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	return nil
}

func (e *GPIOEncoder) watchRotation(ctx context.Context) {
	defer e.wg.Done()
	for ctx.Err() == nil {
		if !e.a.WaitForEdge(edgeTimeout) {
			continue
		}
		e.queue.Push(decodeQuadrature(e.a.Read(), e.b.Read()))
	}
}

func (e *GPIOEncoder) watchButton(ctx context.Context) {
	defer e.wg.Done()
	var last time.Time
	for ctx.Err() == nil {
		if !e.button.WaitForEdge(edgeTimeout) {
			continue
		}
		now := time.Now()
		if now.Sub(last) < buttonDebounce {
			continue
		}
		last = now
		if e.button.Read() == gpio.Low {
			e.queue.Push(Press)
		}
	}
}

// decodeQuadrature maps the B channel level sampled on an A falling edge to a
// direction.
func decodeQuadrature(a, b gpio.Level) Event {
	if a != gpio.Low {
		return None
	}
	if b == gpio.High {
		return CW
	}
	return CCW
}
