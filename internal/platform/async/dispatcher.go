package async

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Dispatcher runs fire-and-forget work off the request path: deferred slash
// command replies and reminder broadcasts. Tasks get their own context with
// a deadline, panics are contained to the task, and Wait drains everything
// on shutdown.
type Dispatcher struct {
	pool    *pool.Pool
	logger  *slog.Logger
	timeout time.Duration
}

func NewDispatcher(maxWorkers int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		pool:    pool.New().WithMaxGoroutines(maxWorkers),
		logger:  logger,
		timeout: timeout,
	}
}

// Submit schedules fn on the pool. Failures and panics are logged, never
// propagated; the originating request has already been answered.
func (d *Dispatcher) Submit(name string, fn func(ctx context.Context) error) {
	d.pool.Go(func() {
		defer func() {
			if rec := recover(); rec != nil {
				d.logger.Error("background task panicked", "task", name, "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			d.logger.Error("background task failed", "task", name, "error", err)
		}
	})
}

// Wait blocks until every submitted task has finished. Call once, at
// shutdown.
func (d *Dispatcher) Wait() {
	d.pool.Wait()
}
