package window

import (
	"context"
	"time"

	"github.com/vnykmshr/rlqueue/pkg/common/errors"
)

// deadlineMargin is reserved from the remaining time budget when capping a
// jitter delay, leaving room for the guarded operation after the sleep.
const deadlineMargin = 10 * time.Millisecond

// Admit acquires the gate's admission slot and runs the sliding-window test.
// It returns nil once the caller may proceed; the slot stays held until
// Commit or Abort.
//
// With block=false, Admit fails with ErrRateLimited if the slot is occupied
// or the window is currently exhausted. With block=true, Admit sleeps out
// any mandatory window wait, unless the context deadline leaves too little
// budget, in which case it fails with ErrRateLimited without mutating the
// log. Jitter applies only when no mandatory wait is imposed.
func (g *Gate) Admit(ctx context.Context, block bool) error {
	if block {
		select {
		case g.slot <- struct{}{}:
		case <-ctx.Done():
			// Another caller is occupying the window decision.
			return errors.ErrRateLimited
		}
	} else {
		select {
		case g.slot <- struct{}{}:
		default:
			return errors.ErrRateLimited
		}
	}

	if err := g.admit(ctx, block); err != nil {
		<-g.slot
		return err
	}
	return nil
}

// Commit records the completion timestamp in the call log and releases the
// admission slot. Call it after the guarded operation succeeds; an admitted
// call whose operation fails must use Abort instead so it does not consume
// a window slot.
func (g *Gate) Commit() {
	g.mu.Lock()
	g.log.append(g.clock.Now())
	g.mu.Unlock()
	<-g.slot
}

// Abort releases the admission slot without recording a call.
func (g *Gate) Abort() {
	<-g.slot
}

// admit runs the sliding-window test while the admission slot is held.
func (g *Gate) admit(ctx context.Context, block bool) error {
	now := g.clock.Now()

	g.mu.Lock()
	if g.log.full() {
		elapsed := now.Sub(g.log.oldest())
		if elapsed < g.per {
			wait := g.per - elapsed

			if !block {
				g.mu.Unlock()
				return errors.ErrRateLimited
			}
			if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
				// Not enough budget to wait out the window.
				g.mu.Unlock()
				return errors.ErrRateLimited
			}

			g.mu.Unlock()
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			g.mu.Lock()
		}
		g.log.evict()
		g.mu.Unlock()
		return nil
	}
	fuzz := g.fuzz
	g.mu.Unlock()

	if fuzz > 0 {
		return g.jitter(ctx, fuzz)
	}
	return nil
}

// jitter sleeps a uniformly random delay in [0, fuzz), capped to the
// remaining time budget less deadlineMargin when a deadline is active.
func (g *Gate) jitter(ctx context.Context, fuzz time.Duration) error {
	delay := time.Duration(g.rand.Float64() * float64(fuzz))

	if deadline, ok := ctx.Deadline(); ok {
		if budget := time.Until(deadline) - deadlineMargin; budget < delay {
			delay = budget
		}
	}
	if delay <= 0 {
		return nil
	}
	return sleep(ctx, delay)
}

// sleep waits out d or returns early with the context error.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
