package shared

import (
	"context"
	"fmt"
	"net/http"

	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrGatewayUnavailable        = errs.New("payment gateway unavailable")
	ErrPaymentNotFound           = errs.New("payment not found")
	ErrInvalidCancellationAmount = errs.New("invalid cancellation amount")
)

// CancellationRejectedError carries the gateway's own explanation, which is
// safe to show to the caller.
type CancellationRejectedError struct {
	Message string
}

func (e *CancellationRejectedError) Error() string {
	return fmt.Sprintf("cancellation rejected: %s", e.Message)
}

func (e *CancellationRejectedError) Is(target error) bool {
	return target == ErrInvalidCancellationAmount
}

type PaymentGateway interface {
	Verify(ctx context.Context, paymentID string) (payment.Record, error)
	// Cancel refunds amount, or the whole remaining balance when amount is nil.
	Cancel(ctx context.Context, paymentID, reason string, amount *int64) (payment.Cancellation, error)
}

// Identity providers.
const (
	ProviderJWT     = "jwt"
	ProviderSession = "session"
)

type Identity struct {
	UserID   uuid.UUID
	Role     string
	Provider string
}

// IdentityResolver returns nil, nil when the request carries no usable session.
type IdentityResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Identity, error)
}

type ViewCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}
