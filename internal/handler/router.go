package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"scent-fulfillment/internal/handler/api"
	"scent-fulfillment/internal/handler/middleware"
	"scent-fulfillment/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Orders   *api.OrderHandler
	Admin    *api.AdminOrderHandler
	Coupons  *api.CouponHandler
	Webhooks *api.WebhookHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, identity *middleware.IdentityMiddleware) {
	setupMiddleware(engine, cfg, identity)
	setupRoutes(engine, cfg, h, identity)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, identity *middleware.IdentityMiddleware) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	// identity before logging so request logs carry the user
	engine.Use(identity.Resolve())
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, identity *middleware.IdentityMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireUser := identity.RequireUser()

	apiGroup := engine.Group("/api")
	{
		orders := apiGroup.Group("/orders")
		addRoutes(orders, []route{
			{Method: http.MethodGet, Path: "", Handler: h.Orders.ListMyOrders, Mw: []gin.HandlerFunc{requireUser}},
			{Method: http.MethodPost, Path: "", Handler: h.Orders.PlaceOrder},
			{Method: http.MethodGet, Path: "/:orderNumber", Handler: h.Orders.GetOrder},
			{Method: http.MethodPut, Path: "/:orderNumber/recipe", Handler: h.Orders.AttachRecipe},
			{Method: http.MethodPost, Path: "/:orderNumber/confirm", Handler: h.Orders.Confirm},
			{Method: http.MethodPost, Path: "/:orderNumber/cancel", Handler: h.Orders.Cancel, Mw: []gin.HandlerFunc{requireUser}},
		})

		coupons := apiGroup.Group("/coupons")
		coupons.Use(requireUser)
		{
			addRoutes(coupons, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Coupons.ListClaimed},
				{Method: http.MethodGet, Path: "/eligibility", Handler: h.Coupons.Eligibility},
				{Method: http.MethodPost, Path: "/:couponId/claim", Handler: h.Coupons.Claim},
			})
		}

		webhooks := apiGroup.Group("/webhooks")
		webhooks.Use(middleware.RequireWebhookSecret(cfg.Server.WebhookSecret))
		{
			addRoutes(webhooks, []route{
				{Method: http.MethodPost, Path: "/payments", Handler: h.Webhooks.Payment},
			})
		}

		admin := apiGroup.Group("/admin/orders")
		admin.Use(identity.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/:orderNumber/ship", Handler: h.Admin.Ship},
				{Method: http.MethodPost, Path: "/:orderNumber/deliver", Handler: h.Admin.Deliver},
				{Method: http.MethodPost, Path: "/:orderNumber/refund", Handler: h.Admin.Refund},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
