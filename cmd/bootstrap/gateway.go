package bootstrap

import (
	"log/slog"

	"scent-fulfillment/internal/infra/gateway"
	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/usecase/shared"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewPaymentGateway,
	),
)

func NewPaymentGateway(cfg config.Config, logger *slog.Logger) shared.PaymentGateway {
	return gateway.NewClient(cfg.Gateway, logger)
}
