package lifecycle

import (
	"context"
	"time"
)

// Handle is given to one background service. The service must call Close when
// its goroutine returns.
type Handle struct {
	ctx   context.Context
	Close func()
}

func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done is closed when the owning Manager shuts down.
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep waits for d, returning early with the context error on shutdown.
func (h *Handle) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.Err()
	case <-timer.C:
		return nil
	}
}
