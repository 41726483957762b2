//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type stubPayment struct {
	Status    string
	Total     int64
	Paid      int64
	Cancelled int64
}

// GatewayStub answers the payment gateway endpoints from an in-memory table.
type GatewayStub struct {
	server *httptest.Server

	mu       sync.Mutex
	payments map[string]*stubPayment
	cancels  int
	reject   string
}

func NewGatewayStub() *GatewayStub {
	g := &GatewayStub{payments: make(map[string]*stubPayment)}
	g.server = httptest.NewServer(http.HandlerFunc(g.serve))
	return g
}

func (g *GatewayStub) URL() string { return g.server.URL }

func (g *GatewayStub) Close() { g.server.Close() }

// Pay registers paymentID as fully paid for amount.
func (g *GatewayStub) Pay(paymentID string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[paymentID] = &stubPayment{Status: "PAID", Total: amount, Paid: amount}
}

func (g *GatewayStub) Ready(paymentID string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[paymentID] = &stubPayment{Status: "READY", Total: amount}
}

// RejectCancels makes every following cancel fail with message until reset with "".
func (g *GatewayStub) RejectCancels(message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reject = message
}

func (g *GatewayStub) Cancels() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancels
}

func (g *GatewayStub) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments = make(map[string]*stubPayment)
	g.cancels = 0
	g.reject = ""
}

func (g *GatewayStub) serve(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, "/payments/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	paymentID, action, _ := strings.Cut(rest, "/")

	g.mu.Lock()
	defer g.mu.Unlock()

	p, found := g.payments[paymentID]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "payment not found"})
		return
	}

	switch {
	case r.Method == http.MethodGet && action == "":
		writeJSON(w, http.StatusOK, map[string]any{
			"status": p.Status,
			"amount": map[string]int64{"total": p.Total, "paid": p.Paid, "cancelled": p.Cancelled},
			"method": "CARD",
			"paidAt": time.Now().UTC(),
		})
	case r.Method == http.MethodPost && action == "cancel":
		g.cancel(w, r, p)
	default:
		http.NotFound(w, r)
	}
}

func (g *GatewayStub) cancel(w http.ResponseWriter, r *http.Request, p *stubPayment) {
	var req struct {
		Reason string `json:"reason"`
		Amount *int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	if g.reject != "" {
		writeJSON(w, http.StatusConflict, map[string]string{"message": g.reject})
		return
	}

	amount := p.Paid - p.Cancelled
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 || amount > p.Paid-p.Cancelled {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "amount exceeds cancellable balance"})
		return
	}

	p.Cancelled += amount
	p.Status = "PARTIAL_CANCELLED"
	if p.Cancelled == p.Paid {
		p.Status = "CANCELLED"
	}
	g.cancels++

	writeJSON(w, http.StatusOK, map[string]any{
		"cancellationId": uuid.NewString(),
		"cancelledAt":    time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
