//go:build unit

package api_test

import (
	"context"
	"net/http"
	"strings"

	"scent-fulfillment/internal/handler/middleware"
	"scent-fulfillment/internal/pkg/cookie"
	"scent-fulfillment/internal/pkg/jwt"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// tokenResolver treats the bearer token as "<uuid>" for a customer,
// "admin:<uuid>" for an admin and "session-admin:<uuid>" for a storefront
// session carrying the admin role.
type tokenResolver struct{}

func (tokenResolver) Resolve(_ context.Context, r *http.Request) (*shared.Identity, error) {
	token := cookie.BearerToken(r)
	if token == "" {
		return nil, nil
	}
	role, provider := jwt.RoleCustomer, shared.ProviderJWT
	if rest, ok := strings.CutPrefix(token, "admin:"); ok {
		role, token = jwt.RoleAdmin, rest
	} else if rest, ok := strings.CutPrefix(token, "session-admin:"); ok {
		role, provider, token = jwt.RoleAdmin, shared.ProviderSession, rest
	}
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, err
	}
	return &shared.Identity{UserID: id, Role: role, Provider: provider}, nil
}

func customerToken(id uuid.UUID) string     { return id.String() }
func adminToken(id uuid.UUID) string        { return "admin:" + id.String() }
func sessionAdminToken(id uuid.UUID) string { return "session-admin:" + id.String() }

func newTestRouter() (*gin.Engine, *middleware.IdentityMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	identity := middleware.NewIdentityMiddleware(tokenResolver{})
	router.Use(identity.Resolve())
	router.Use(middleware.ErrorHandler())
	return router, identity
}
