// Package background runs best-effort side effects (emails, event
// publishing, image clean-up) after the primary operation has committed.
package background

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/infrastructure/logger"
)

// DefaultTimeout bounds a single side effect
const DefaultTimeout = 30 * time.Second

// Runner executes tasks on their own goroutines. Task failures and panics
// are logged and never reach the caller.
type Runner struct {
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
	sync    bool
}

// Option configures a Runner
type Option func(*Runner)

// WithTimeout overrides the per-task timeout
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Synchronous makes Go run tasks inline. Tests use it to observe side effects
// without waiting.
func Synchronous() Option {
	return func(r *Runner) {
		r.sync = true
	}
}

// NewRunner creates a Runner
func NewRunner(zapLogger *zap.Logger, opts ...Option) *Runner {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	r := &Runner{logger: zapLogger, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Go runs task detached from ctx's cancellation but keeping its values, so
// request ids still reach the logs after the response has been written.
func (r *Runner) Go(ctx context.Context, name string, task func(ctx context.Context) error) {
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	if r.sync {
		defer cancel()
		r.run(taskCtx, name, task)
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.run(taskCtx, name, task)
	}()
}

func (r *Runner) run(ctx context.Context, name string, task func(ctx context.Context) error) {
	log := logger.Enrich(ctx, r.logger)
	defer func() {
		if p := recover(); p != nil {
			log.Error("background task panicked", zap.String("task", name), zap.Any("panic", p))
		}
	}()
	if err := task(ctx); err != nil {
		log.Warn("background task failed", zap.String("task", name), zap.Error(err))
	}
}

// Wait blocks until every started task has finished or ctx is done
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
