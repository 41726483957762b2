package middleware

import (
	"log/slog"
	"net/http"

	"scent-fulfillment/internal/handler/httperr"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/pkg/jwt"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ctxIdentityKey = "identity"

var errUnauthenticated = errs.New("unauthenticated")

type IdentityMiddleware struct {
	resolver shared.IdentityResolver
}

func NewIdentityMiddleware(resolver shared.IdentityResolver) *IdentityMiddleware {
	return &IdentityMiddleware{resolver: resolver}
}

// Resolve attaches the caller's identity when one is present. It never
// aborts; routes that need a user add RequireUser.
func (m *IdentityMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.resolver.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			slog.Warn("identity resolution failed", "error", err.Error())
		}
		if id != nil {
			c.Set(ctxIdentityKey, id)
		}
		c.Next()
	}
}

func (m *IdentityMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Authentication required", nil)
			return
		}
		c.Next()
	}
}

// RequireAdmin only accepts first-party tokens carrying the admin role.
// Storefront sessions never grant admin access, whatever role they carry.
func (m *IdentityMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Authentication required", nil)
			return
		}
		if id.Role != jwt.RoleAdmin || id.Provider != shared.ProviderJWT {
			httperr.AbortWithError(c, http.StatusForbidden, errs.New("forbidden"), "Insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (*shared.Identity, bool) {
	v, exists := c.Get(ctxIdentityKey)
	if !exists {
		return nil, false
	}
	id, ok := v.(*shared.Identity)
	return id, ok && id != nil
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := GetIdentity(c)
	if !ok {
		return uuid.Nil, false
	}
	return id.UserID, true
}

// ViewerID is the caller's user id, or nil for anonymous requests.
func ViewerID(c *gin.Context) *uuid.UUID {
	id, ok := GetIdentity(c)
	if !ok {
		return nil
	}
	uid := id.UserID
	return &uid
}
