package bootstrap

import (
	"scent-fulfillment/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// CoreModule is everything the usecases need. The server and the operator
// CLI both build on it.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	GatewayModule,
	CounterModule,
	components.PersistenceModule,
	components.UseCaseModule,
)

var Module = fx.Options(
	CoreModule,
	JWTModule,
	IdentityModule,
	components.HandlerModule,
)
