// Package worker provides the in-process executor for fire-and-forget
// background tasks such as preview persistence.
package worker

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Executor implements preview.TaskExecutor with a bounded pool of
// goroutines. Submitted tasks run on a context detached from the caller,
// so an HTTP request finishing (or being cancelled) never aborts a task it
// spawned. Panics inside a task are recovered and logged; one bad task
// must not take the process down.
type Executor struct {
	sem      chan struct{}
	logger   *slog.Logger
	baseCtx  context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	draining bool
}

// NewExecutor creates an executor allowing at most maxConcurrent tasks to
// run simultaneously. Additional submissions queue on the semaphore inside
// their own goroutine, so Submit itself never blocks the caller.
func NewExecutor(maxConcurrent int, logger *slog.Logger) *Executor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		sem:     make(chan struct{}, maxConcurrent),
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Submit schedules fn to run in the background. The name identifies the
// task in logs. Submissions after Shutdown has begun are dropped with a
// warning rather than racing the drain.
func (e *Executor) Submit(name string, fn func(ctx context.Context)) {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		e.logger.Warn("background task rejected, executor shutting down",
			slog.String("task", name))
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		select {
		case e.sem <- struct{}{}:
		case <-e.baseCtx.Done():
			e.logger.Warn("background task abandoned before start",
				slog.String("task", name))
			return
		}
		defer func() { <-e.sem }()

		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("background task panicked",
					slog.String("task", name),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
		}()

		start := time.Now()
		fn(e.baseCtx)
		e.logger.Debug("background task finished",
			slog.String("task", name),
			slog.Duration("duration", time.Since(start)))
	}()
}

// Shutdown stops accepting new tasks and waits for running ones to finish,
// up to the context deadline. Tasks still running when the deadline expires
// are cancelled through their base context.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.draining = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		return nil
	case <-ctx.Done():
		e.cancel()
		return ctx.Err()
	}
}
