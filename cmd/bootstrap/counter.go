package bootstrap

import (
	"context"

	"scent-fulfillment/internal/infra/counter"
	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/usecase/shared"

	"go.uber.org/fx"
)

var CounterModule = fx.Module("counter",
	fx.Provide(
		NewViewCounter,
	),
)

func NewViewCounter(lc fx.Lifecycle, cfg config.Config) (shared.ViewCounter, error) {
	c, cleanup, err := counter.New(cfg.Redis)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	return c, nil
}
