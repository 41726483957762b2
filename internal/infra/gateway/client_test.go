//go:build unit

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewClient(config.GatewayConfig{
		BaseURL:    srv.URL,
		APISecret:  "s3cret",
		AuthScheme: "PortOne",
		Timeout:    time.Second,
		MaxRetries: 2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Verify(t *testing.T) {
	t.Run("paid payment", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/payments/pay_1", r.URL.Path)
			assert.Equal(t, "PortOne s3cret", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"status":"PAID","amount":{"total":24000,"paid":24000,"cancelled":0},"method":"CARD","paidAt":"2025-03-14T10:00:00Z","receiptUrl":"https://r/1"}`)
		})

		rec, err := c.Verify(context.Background(), "pay_1")

		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, rec.Status)
		assert.Equal(t, int64(24000), rec.Amount.Paid)
		assert.Equal(t, "CARD", rec.Method)
		assert.Equal(t, "https://r/1", rec.ReceiptURL)
		require.NotNil(t, rec.PaidAt)
	})

	t.Run("not found is not retried", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := c.Verify(context.Background(), "missing")

		assert.True(t, errs.Is(err, shared.ErrPaymentNotFound))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("5xx retried then surfaced as unavailable", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.Verify(context.Background(), "pay_1")

		assert.True(t, errs.Is(err, shared.ErrGatewayUnavailable))
		assert.True(t, errs.IsTransient(err))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("recovers after a transient failure", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = io.WriteString(w, `{"status":"READY","amount":{"total":1000,"paid":0,"cancelled":0}}`)
		})

		rec, err := c.Verify(context.Background(), "pay_1")

		require.NoError(t, err)
		assert.Equal(t, payment.StatusReady, rec.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"WHATEVER"}`)
		})

		_, err := c.Verify(context.Background(), "pay_1")

		assert.True(t, errs.Is(err, shared.ErrGatewayUnavailable))
	})
}

func TestClient_Cancel(t *testing.T) {
	t.Run("partial cancel sends amount", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/payments/pay_1/cancel", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "customer request", body["reason"])
			assert.EqualValues(t, 5000, body["amount"])

			_, _ = io.WriteString(w, `{"cancellationId":"c_1","cancelledAt":"2025-03-14T11:00:00Z"}`)
		})
		amount := int64(5000)

		got, err := c.Cancel(context.Background(), "pay_1", "customer request", &amount)

		require.NoError(t, err)
		assert.Equal(t, "c_1", got.CancellationID)
	})

	t.Run("full cancel omits amount", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, ok := body["amount"]
			assert.False(t, ok)
			_, _ = io.WriteString(w, `{"cancellationId":"c_2","cancelledAt":"2025-03-14T11:00:00Z"}`)
		})

		_, err := c.Cancel(context.Background(), "pay_1", "r", nil)

		require.NoError(t, err)
	})

	t.Run("rejection message surfaced verbatim", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"amount exceeds cancellable balance"}`)
		})
		amount := int64(999999)

		_, err := c.Cancel(context.Background(), "pay_1", "r", &amount)

		var rejected *shared.CancellationRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "amount exceeds cancellable balance", rejected.Message)
		assert.ErrorIs(t, err, shared.ErrInvalidCancellationAmount)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("5xx not retried", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.Cancel(context.Background(), "pay_1", "r", nil)

		assert.True(t, errs.Is(err, shared.ErrGatewayUnavailable))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("dropped connection after send is not retried", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			_ = conn.Close()
		})

		_, err := c.Cancel(context.Background(), "pay_1", "r", nil)

		assert.True(t, errs.Is(err, shared.ErrGatewayUnavailable))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("dial failure is retried", func(t *testing.T) {
		var dials int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not reach the server")
		})
		c.http.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				atomic.AddInt32(&dials, 1)
				return nil, &net.OpError{Op: "dial", Net: network, Err: errors.New("connection refused")}
			},
		}

		_, err := c.Cancel(context.Background(), "pay_1", "r", nil)

		assert.True(t, errs.Is(err, shared.ErrGatewayUnavailable))
		assert.Equal(t, int32(3), atomic.LoadInt32(&dials))
	})
}
