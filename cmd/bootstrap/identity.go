package bootstrap

import (
	"scent-fulfillment/internal/infra/identity"
	"scent-fulfillment/internal/infra/readstore"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/pkg/jwt"
	"scent-fulfillment/internal/usecase/shared"

	"go.uber.org/fx"
)

var IdentityModule = fx.Module("identity",
	fx.Provide(
		NewIdentityResolver,
	),
)

// NewIdentityResolver prefers first-party tokens over storefront sessions.
func NewIdentityResolver(cfg config.Config, jwtService *jwt.Service, sessions *readstore.SessionStore, clk clock.Clock) shared.IdentityResolver {
	return identity.NewChain(
		identity.NewJWTProvider(jwtService, cfg.Identity.AccessTokenCookie),
		identity.NewSessionProvider(sessions, clk, cfg.Identity.AuthSessionCookie),
	)
}
