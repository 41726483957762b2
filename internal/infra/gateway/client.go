// Package gateway is the HTTP client of the external payment processor.
// The processor, not the local store, is authoritative for money movement,
// so every reconciliation goes through Verify.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
)

const maxErrorBody = 4 << 10

type Client struct {
	baseURL    string
	authHeader string
	http       *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

func NewClient(cfg config.GatewayConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: cfg.AuthScheme + " " + cfg.APISecret,
		http:       &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

var _ shared.PaymentGateway = (*Client)(nil)

type paymentResponse struct {
	Status string `json:"status"`
	Amount struct {
		Total     int64 `json:"total"`
		Paid      int64 `json:"paid"`
		Cancelled int64 `json:"cancelled"`
	} `json:"amount"`
	Method     string     `json:"method"`
	PaidAt     *time.Time `json:"paidAt"`
	ReceiptURL string     `json:"receiptUrl"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
	Amount *int64 `json:"amount,omitempty"`
}

type cancelResponse struct {
	CancellationID string    `json:"cancellationId"`
	CancelledAt    time.Time `json:"cancelledAt"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) Verify(ctx context.Context, paymentID string) (payment.Record, error) {
	var out paymentResponse
	path := "/payments/" + url.PathEscape(paymentID)

	err := c.retry(ctx, "verify", func() error {
		resp, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(shared.ErrPaymentNotFound)
		case resp.StatusCode >= 500:
			return unavailable(fmt.Errorf("gateway returned %d", resp.StatusCode))
		case resp.StatusCode >= 300:
			return backoff.Permanent(errs.Wrapf(shared.ErrGatewayUnavailable, "unexpected status %d", resp.StatusCode))
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(errs.Wrap(err, "decode payment response"))
		}
		return nil
	})
	if err != nil {
		return payment.Record{}, err
	}

	status := payment.Status(out.Status)
	if !status.IsValid() {
		return payment.Record{}, errs.Wrapf(shared.ErrGatewayUnavailable, "unknown payment status %q", out.Status)
	}

	return payment.Record{
		PaymentID: paymentID,
		Status:    status,
		Amount: payment.Amount{
			Total:     out.Amount.Total,
			Paid:      out.Amount.Paid,
			Cancelled: out.Amount.Cancelled,
		},
		Method:     out.Method,
		PaidAt:     out.PaidAt,
		ReceiptURL: out.ReceiptURL,
	}, nil
}

// Cancel is retried only when the connection was never established. Any
// later failure may have reached the gateway, and a repeated cancellation
// could refund twice, so callers must re-check with Verify.
func (c *Client) Cancel(ctx context.Context, paymentID, reason string, amount *int64) (payment.Cancellation, error) {
	body, err := json.Marshal(cancelRequest{Reason: reason, Amount: amount})
	if err != nil {
		return payment.Cancellation{}, errs.Wrap(err, "encode cancel request")
	}
	path := "/payments/" + url.PathEscape(paymentID) + "/cancel"

	var out cancelResponse
	err = c.retry(ctx, "cancel", func() error {
		resp, err := c.do(ctx, http.MethodPost, path, body)
		if err != nil {
			var permanent *backoff.PermanentError
			if isDialError(err) || errors.As(err, &permanent) {
				return err
			}
			return backoff.Permanent(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(shared.ErrPaymentNotFound)
		case resp.StatusCode >= 500:
			return backoff.Permanent(unavailable(fmt.Errorf("gateway returned %d", resp.StatusCode)))
		case resp.StatusCode >= 300:
			return backoff.Permanent(&shared.CancellationRejectedError{Message: readMessage(resp.Body)})
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(errs.Wrap(err, "decode cancel response"))
		}
		return nil
	})
	if err != nil {
		return payment.Cancellation{}, err
	}

	return payment.Cancellation{
		CancellationID: out.CancellationID,
		CancelledAt:    out.CancelledAt,
	}, nil
}

// do only fails for transport errors; status handling is left to callers.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, backoff.Permanent(errs.Wrap(err, "build gateway request"))
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(unavailable(ctx.Err()))
		}
		return nil, unavailable(err)
	}
	return resp, nil
}

func (c *Client) retry(ctx context.Context, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	return backoff.RetryNotify(fn, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx),
		func(err error, wait time.Duration) {
			c.logger.Warn("gateway call failed, retrying", "op", op, "wait_ms", wait.Milliseconds(), "error", err.Error())
		})
}

// isDialError reports whether the request failed before any byte was sent.
func isDialError(err error) bool {
	var op *net.OpError
	return errors.As(err, &op) && op.Op == "dial"
}

func unavailable(cause error) error {
	return errs.MarkTransient(errs.Mark(cause, shared.ErrGatewayUnavailable))
}

func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return "cancellation rejected by gateway"
	}
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return e.Message
	}
	return "cancellation rejected by gateway"
}
