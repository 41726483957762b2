package components

import (
	"scent-fulfillment/internal/handler"
	"scent-fulfillment/internal/handler/api"
	"scent-fulfillment/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOrderHandler,
		api.NewAdminOrderHandler,
		api.NewCouponHandler,
		api.NewWebhookHandler,
		middleware.NewIdentityMiddleware,
		func(o *api.OrderHandler, a *api.AdminOrderHandler, c *api.CouponHandler, w *api.WebhookHandler) handler.Handlers {
			return handler.Handlers{Orders: o, Admin: a, Coupons: c, Webhooks: w}
		},
	),
	fx.Invoke(handler.NewRouter),
)
