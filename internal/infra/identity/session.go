package identity

import (
	"context"
	"net/http"
	"time"

	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/readstore"
	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/pkg/cookie"
	"scent-fulfillment/internal/pkg/jwt"
	"scent-fulfillment/internal/usecase/shared"

	"golang.org/x/crypto/blake2b"
)

type SessionFinder interface {
	FindByDigest(ctx context.Context, digest []byte, now time.Time) (*readstore.Session, error)
}

// SessionProvider resolves sessions issued by the storefront's third-party
// auth library. The cookie may be split into numbered chunks.
type SessionProvider struct {
	finder     SessionFinder
	clock      clock.Clock
	cookieName string
}

func NewSessionProvider(finder SessionFinder, clk clock.Clock, cookieName string) *SessionProvider {
	return &SessionProvider{finder: finder, clock: clk, cookieName: cookieName}
}

func (p *SessionProvider) Resolve(ctx context.Context, r *http.Request) (*shared.Identity, error) {
	token := cookie.Value(r, p.cookieName)
	if token == "" {
		return nil, nil
	}

	sess, err := p.finder.FindByDigest(ctx, Digest(token), p.clock.Now())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	role := sess.Role
	if role == "" {
		role = jwt.RoleCustomer
	}
	return &shared.Identity{UserID: sess.UserID, Role: role, Provider: shared.ProviderSession}, nil
}

// Digest is the lookup key of a session token.
func Digest(token string) []byte {
	sum := blake2b.Sum256([]byte(token))
	return sum[:]
}
