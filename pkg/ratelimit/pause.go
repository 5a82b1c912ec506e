package ratelimit

import (
	"context"
	"time"
)

// Pause is a fixed delay between consecutive downloads
type Pause struct {
	delay time.Duration
}

// NewPause creates a Pause. A non-positive delay never sleeps.
func NewPause(delay time.Duration) *Pause {
	return &Pause{delay: delay}
}

// Delay returns the configured delay
func (p *Pause) Delay() time.Duration {
	return p.delay
}

// Sleep waits for the delay, returning ctx.Err() if ctx ends first
func (p *Pause) Sleep(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
