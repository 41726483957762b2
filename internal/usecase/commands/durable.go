package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const durableMaxRetries = 5

// durably runs a local write that must land because money already moved at
// the gateway. It detaches from the caller's cancellation, bounds the whole
// attempt by timeout and retries everything except business errors.
func durably(ctx context.Context, logger *slog.Logger, timeout time.Duration, name string, op func(ctx context.Context) error) error {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op(dctx)
		if err == nil {
			return nil
		}
		if isBusinessError(err) {
			return backoff.Permanent(err)
		}
		logger.Warn("durable write failed, retrying", "op", name, "attempt", attempt, "error", err.Error())
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, durableMaxRetries), dctx))
}
