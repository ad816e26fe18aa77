package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("tracker loop stopped")

// Loop runs submitted closures and a periodic tick on one goroutine. State
// touched only from inside the loop needs no locking.
type Loop struct {
	work   chan func()
	done   chan struct{}
	logger *slog.Logger

	// ticker is owned by the loop goroutine.
	ticker *time.Ticker
}

// NewLoop creates a loop that is not yet running.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		work:   make(chan func()),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run executes tick every interval and closures submitted with Do until ctx
// is cancelled. Run must be called once.
func (l *Loop) Run(ctx context.Context, interval time.Duration, tick func()) {
	l.ticker = time.NewTicker(interval)
	defer func() {
		l.ticker.Stop()
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.work:
			l.safely("task", fn)
		case <-l.ticker.C:
			l.safely("tick", tick)
		}
	}
}

// SetInterval changes the tick period. It must be called from the loop.
func (l *Loop) SetInterval(d time.Duration) {
	if l.ticker != nil && d > 0 {
		l.ticker.Reset(d)
	}
}

// Do runs fn on the loop goroutine and waits until it has returned.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.work <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) safely(what string, fn func()) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("tracker panic recovered", "in", what, "error", err)
		}
	}()
	fn()
}
