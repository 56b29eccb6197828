package backend

import (
	"context"
	"sync"
	"time"
)

// queryGap is the minimum spacing of status queries on the printer link.
const queryGap = 100 * time.Millisecond

// pacer hands out query slots on the shared link. Each caller reserves the
// next free slot and sleeps until it comes up, so pollers on different
// goroutines never send back to back.
type pacer struct {
	gap time.Duration

	mu   sync.Mutex
	next time.Time
}

func newPacer(gap time.Duration) *pacer {
	return &pacer{gap: gap}
}

func (p *pacer) wait(ctx context.Context) error {
	if p == nil || p.gap <= 0 {
		return ctx.Err()
	}
	p.mu.Lock()
	slot := p.next
	if now := time.Now(); slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.gap)
	p.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
