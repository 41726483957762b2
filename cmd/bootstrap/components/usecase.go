package components

import (
	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	commands.NewSettings,
	func() coupon.Policy { return coupon.AllowAll },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewLedger,
		commands.NewInventoryCommands,
		commands.NewCouponCommands,
		commands.NewOrderCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
		queries.NewCouponQueries,
	),
)
