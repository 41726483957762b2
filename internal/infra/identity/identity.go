// Package identity resolves the caller of a request from one of the
// session mechanisms the storefront issues. Resolution never fails a request
// on its own: an absent or invalid session yields no identity.
package identity

import (
	"context"
	"net/http"

	"scent-fulfillment/internal/usecase/shared"
)

type Provider interface {
	Resolve(ctx context.Context, r *http.Request) (*shared.Identity, error)
}

// Chain asks each provider in order and returns the first identity found.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

var _ shared.IdentityResolver = (*Chain)(nil)

func (c *Chain) Resolve(ctx context.Context, r *http.Request) (*shared.Identity, error) {
	for _, p := range c.providers {
		id, err := p.Resolve(ctx, r)
		if err != nil {
			return nil, err
		}
		if id != nil {
			return id, nil
		}
	}
	return nil, nil
}
