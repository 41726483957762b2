// Package counter keeps best-effort view counters in redis.
package counter

import (
	"context"

	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"

	radix "github.com/mediocregopher/radix/v3"
)

type RedisCounter struct {
	client radix.Client
}

func NewRedisCounter(client radix.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr ignores ctx; radix v3 commands are bounded by the pool's dial and
// read timeouts instead.
func (c *RedisCounter) Incr(_ context.Context, key string) (int64, error) {
	var n int64
	if err := c.client.Do(radix.Cmd(&n, "INCR", key)); err != nil {
		return 0, errs.Wrap(err, "redis incr")
	}
	return n, nil
}

type NoopCounter struct{}

func (NoopCounter) Incr(context.Context, string) (int64, error) { return 0, nil }

// New returns a redis-backed counter, or a no-op one when no address is
// configured. The cleanup closes the pool.
func New(cfg config.RedisConfig) (shared.ViewCounter, func(), error) {
	if cfg.Addr == "" {
		return NoopCounter{}, func() {}, nil
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = 10
	}
	pool, err := radix.NewPool("tcp", cfg.Addr, size)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to connect redis")
	}
	return NewRedisCounter(pool), func() { _ = pool.Close() }, nil
}
