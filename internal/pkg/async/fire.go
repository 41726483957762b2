package async

import (
	"context"
	"log/slog"
	"time"
)

// Fire runs fn in its own goroutine with a detached, time-bounded context.
// Failures and panics are logged and dropped; nothing waits for the result.
func Fire(logger *slog.Logger, name string, timeout time.Duration, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("best-effort task panicked", "task", name, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.Debug("best-effort task dropped", "task", name, "error", err.Error())
		}
	}()
}
