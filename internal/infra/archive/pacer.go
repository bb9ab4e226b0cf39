package archive

import (
	"context"
	"sync"
	"time"
)

// pacer enforces a minimum interval between outbound dispatches. The
// cursor (earliest next allowed dispatch time) is shared by every
// caller of one Client, so the spacing invariant holds system-wide
// rather than per goroutine.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	// Injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func newPacer(requestsPerSecond float64) *pacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &pacer{
		interval: time.Duration(float64(time.Second) / requestsPerSecond),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// wait blocks until the cursor allows the next dispatch, claiming the
// slot and advancing the cursor before sleeping. Claiming under the
// lock keeps concurrent callers from being assigned the same slot.
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	now := p.now()
	if p.next.Before(now) {
		p.next = now
	}
	delay := p.next.Sub(now)
	p.next = p.next.Add(p.interval)
	p.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	return p.sleep(ctx, delay)
}

// sleepContext waits out d unless the context dies first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
