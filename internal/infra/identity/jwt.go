package identity

import (
	"context"
	"log/slog"
	"net/http"

	"scent-fulfillment/internal/pkg/cookie"
	"scent-fulfillment/internal/pkg/jwt"
	"scent-fulfillment/internal/usecase/shared"
)

// JWTProvider reads a first-party token from the access cookie or, failing
// that, an Authorization: Bearer header.
type JWTProvider struct {
	service    *jwt.Service
	cookieName string
}

func NewJWTProvider(service *jwt.Service, cookieName string) *JWTProvider {
	return &JWTProvider{service: service, cookieName: cookieName}
}

func (p *JWTProvider) Resolve(_ context.Context, r *http.Request) (*shared.Identity, error) {
	token := cookie.Value(r, p.cookieName)
	if token == "" {
		token = cookie.BearerToken(r)
	}
	if token == "" {
		return nil, nil
	}

	claims, err := p.service.ValidateToken(token)
	if err != nil {
		slog.Debug("jwt rejected", "error", err.Error())
		return nil, nil
	}

	role := claims.Role
	if role == "" {
		role = jwt.RoleCustomer
	}
	return &shared.Identity{UserID: claims.UserID, Role: role, Provider: shared.ProviderJWT}, nil
}
