package bootstrap

import (
	"context"
	"log/slog"

	"scent-fulfillment/internal/infra/relay"
	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/internal/usecase/shared"

	"go.uber.org/fx"
)

// RelayModule is only part of the operator CLI; the API server never
// publishes directly.
var RelayModule = fx.Module("relay",
	fx.Provide(
		NewEventPublisher,
		commands.NewNotificationRelay,
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) shared.EventPublisher {
	p := relay.NewKafkaPublisher(cfg.Kafka, logger)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return p.Close()
		},
	})

	return p
}
