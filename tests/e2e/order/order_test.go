//go:build e2e

package order_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"

	"scent-fulfillment/internal/handler/dto/request"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/handler/middleware"
	"scent-fulfillment/internal/pkg/jwt"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/tests/common/authtest"
	"scent-fulfillment/tests/common/dbtest"
	"scent-fulfillment/tests/common/httptest"
	"scent-fulfillment/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const ordersURL = "/api/orders"

type orderSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper

	customerID uuid.UUID
	customer   string
	admin      string
}

func TestOrderSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(orderSuite))
}

func (s *orderSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
	s.customerID = uuid.New()
	s.customer = s.jwt.GenerateToken(s.T(), s.customerID, jwt.RoleCustomer)
	s.admin = s.jwt.GenerateToken(s.T(), uuid.New(), jwt.RoleAdmin)
}

func recipe() *request.RecipeRequest {
	return &request.RecipeRequest{
		Title: "Citrus Morning",
		Granules: []request.GranuleRequest{
			{ComponentID: "BERGAMOT", Name: "Bergamot", Proportion: 0.6},
			{ComponentID: "CEDAR", Name: "Cedarwood", Proportion: 0.4},
		},
	}
}

func (s *orderSuite) place(token string, body request.PlaceOrderRequest) resdto.OrderStateResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL, body, token)
	var res resdto.OrderStateResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &res)
	require.NotEmpty(t, res.OrderNumber)
	return res
}

func (s *orderSuite) confirm(number, token string) *nethttptest.ResponseRecorder {
	return httptest.PerformRequest(s.T(), s.Router, http.MethodPost, ordersURL+"/"+number+"/confirm", nil, token)
}

func (s *orderSuite) TestCheckoutAndCancel() {
	s.Run("guest checkout deducts stock once", func() {
		t := s.T()
		placed := s.place("", request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_guest_1",
			Recipe:      recipe(),
		})
		assert.Equal(t, "pending", placed.Status)
		assert.Equal(t, int64(48000), placed.FinalPrice)

		s.Gateway.Pay("pay_guest_1", 48000)

		var first resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, s.confirm(placed.OrderNumber, ""), http.StatusOK, &first)
		assert.Equal(t, "paid", first.Status)
		assert.False(t, first.Replayed)

		var again resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, s.confirm(placed.OrderNumber, ""), http.StatusOK, &again)
		assert.True(t, again.Replayed)

		assert.Equal(t, int64(700), dbtest.StockOf(t, s.DB, "BERGAMOT"))
		assert.Equal(t, int64(800), dbtest.StockOf(t, s.DB, "CEDAR"))
		assert.Equal(t, 1, dbtest.CountJobs(t, s.DB, commands.NotifyOrderPaid))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+placed.OrderNumber, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var view resdto.OrderResponse
		httptest.DecodeResponseBody(t, w, &view)
		assert.Equal(t, "Citrus Morning", view.RecipeTitle)
		require.Len(t, view.Components, 2)
		require.NotNil(t, view.Payment)
		assert.Equal(t, "PAID", view.Payment.Status)
		assert.Equal(t, int64(48000), view.Payment.PaidAmount)
	})

	s.Run("concurrent confirmations settle exactly once", func() {
		t := s.T()
		placed := s.place("", request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_race",
			Recipe:      recipe(),
		})
		s.Gateway.Pay("pay_race", 48000)

		const callers = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			replayed int
			codes    []int
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := s.confirm(placed.OrderNumber, "")
				var res resdto.OrderStateResponse
				_ = json.Unmarshal(w.Body.Bytes(), &res)
				mu.Lock()
				defer mu.Unlock()
				codes = append(codes, w.Code)
				if res.Replayed {
					replayed++
				}
			}()
		}
		wg.Wait()

		for _, c := range codes {
			assert.Equal(t, http.StatusOK, c)
		}
		assert.Equal(t, callers-1, replayed)
		assert.Equal(t, int64(700), dbtest.StockOf(t, s.DB, "BERGAMOT"))
		assert.Equal(t, 1, dbtest.CountJobs(t, s.DB, commands.NotifyOrderPaid))
	})

	s.Run("unpaid payment is refused", func() {
		t := s.T()
		placed := s.place("", request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_ready",
			Recipe:      recipe(),
		})
		s.Gateway.Ready("pay_ready", 48000)

		httptest.AssertErrorResponse(t, s.confirm(placed.OrderNumber, ""), http.StatusUnprocessableEntity, "Payment not completed")
		assert.Equal(t, dbtest.DefaultStockUnits, dbtest.StockOf(t, s.DB, "BERGAMOT"))
	})

	s.Run("insufficient stock names the component and rolls back", func() {
		t := s.T()
		dbtest.SetStock(t, s.DB, "CEDAR", 10)
		placed := s.place("", request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_short",
			Recipe:      recipe(),
		})
		s.Gateway.Pay("pay_short", 48000)

		w := s.confirm(placed.OrderNumber, "")
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "Insufficient stock")
		assert.Contains(t, w.Body.String(), `"componentId":"CEDAR"`)
		assert.Equal(t, dbtest.DefaultStockUnits, dbtest.StockOf(t, s.DB, "BERGAMOT"))
		assert.Equal(t, int64(10), dbtest.StockOf(t, s.DB, "CEDAR"))
	})

	s.Run("coupon checkout then owner cancellation restores everything", func() {
		t := s.T()
		couponID := dbtest.CreateCoupon(t, s.DB, "WELCOME10", "welcome", 10)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf("/api/coupons/%s/claim", couponID), nil, s.customer)
		var claim resdto.ClaimResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &claim)

		placed := s.place(s.customer, request.PlaceOrderRequest{
			ProductType:  "perfume_50ml",
			Price:        45000,
			PaymentID:    "pay_coupon",
			UserCouponID: &claim.ID,
			Recipe:       recipe(),
		})
		assert.Equal(t, int64(43500), placed.FinalPrice)

		s.Gateway.Pay("pay_coupon", 43500)
		httptest.AssertSuccessResponse(t, s.confirm(placed.OrderNumber, s.customer), http.StatusOK, nil)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/coupons", nil, s.customer)
		var claimed []resdto.ClaimedCouponResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &claimed)
		require.Len(t, claimed, 1)
		assert.True(t, claimed[0].IsUsed)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+placed.OrderNumber+"/cancel",
			request.CancelOrderRequest{Reason: "changed my mind"}, s.customer)
		var cancelled resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &cancelled)
		assert.Equal(t, "cancelled", cancelled.Status)

		assert.Equal(t, 1, s.Gateway.Cancels())
		assert.Equal(t, dbtest.DefaultStockUnits, dbtest.StockOf(t, s.DB, "BERGAMOT"))
		assert.Equal(t, dbtest.DefaultStockUnits, dbtest.StockOf(t, s.DB, "CEDAR"))
		assert.Equal(t, 1, dbtest.CountJobs(t, s.DB, commands.NotifyOrderCancelled))

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/coupons", nil, s.customer)
		claimed = nil
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &claimed)
		require.Len(t, claimed, 1)
		assert.False(t, claimed[0].IsUsed)

		// cancelling again is a no-op and never reaches the gateway
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+placed.OrderNumber+"/cancel",
			request.CancelOrderRequest{Reason: "changed my mind"}, s.customer)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, nil)
		assert.Equal(t, 1, s.Gateway.Cancels())
	})

	s.Run("rejected cancellation leaves the order shippable", func() {
		t := s.T()
		placed := s.place(s.customer, request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_reject",
			Recipe:      recipe(),
		})
		s.Gateway.Pay("pay_reject", 48000)
		httptest.AssertSuccessResponse(t, s.confirm(placed.OrderNumber, s.customer), http.StatusOK, nil)

		s.Gateway.RejectCancels("already settled")
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+placed.OrderNumber+"/cancel",
			request.CancelOrderRequest{Reason: "changed my mind"}, s.customer)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "already settled")

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/orders/"+placed.OrderNumber+"/ship", nil, s.admin)
		var shipped resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &shipped)
		assert.Equal(t, "shipping", shipped.Status)
	})

	s.Run("cancelling before the webhook refunds a captured payment", func() {
		t := s.T()
		placed := s.place(s.customer, request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_early_cancel",
			Recipe:      recipe(),
		})
		before := s.Gateway.Cancels()
		s.Gateway.Pay("pay_early_cancel", 48000)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+placed.OrderNumber+"/cancel",
			request.CancelOrderRequest{Reason: "changed my mind"}, s.customer)
		var cancelled resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &cancelled)
		assert.Equal(t, "cancelled", cancelled.Status)
		assert.Equal(t, before+1, s.Gateway.Cancels())
	})

	s.Run("customers cannot refund part of an order", func() {
		t := s.T()
		placed := s.place(s.customer, request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_owner_partial",
			Recipe:      recipe(),
		})
		s.Gateway.Pay("pay_owner_partial", 48000)
		httptest.AssertSuccessResponse(t, s.confirm(placed.OrderNumber, s.customer), http.StatusOK, nil)
		before := s.Gateway.Cancels()

		amount := int64(10000)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+placed.OrderNumber+"/cancel",
			request.CancelOrderRequest{Reason: "changed my mind", Amount: &amount}, s.customer)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, before, s.Gateway.Cancels())
	})

	s.Run("partial refund after shipping keeps stock deducted", func() {
		t := s.T()
		placed := s.place(s.customer, request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_partial",
			Recipe:      recipe(),
		})
		s.Gateway.Pay("pay_partial", 48000)
		httptest.AssertSuccessResponse(t, s.confirm(placed.OrderNumber, s.customer), http.StatusOK, nil)
		httptest.AssertSuccessResponse(t, httptest.PerformRequest(t, s.Router, http.MethodPost,
			"/api/admin/orders/"+placed.OrderNumber+"/ship", nil, s.admin), http.StatusOK, nil)

		amount := int64(10000)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/orders/"+placed.OrderNumber+"/refund",
			request.CancelOrderRequest{Reason: "damaged bottle", Amount: &amount}, s.admin)
		var refunded resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &refunded)
		assert.Equal(t, "partial_refunded", refunded.Status)
		assert.Equal(t, int64(700), dbtest.StockOf(t, s.DB, "BERGAMOT"))

		too := int64(40000)
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/orders/"+placed.OrderNumber+"/refund",
			request.CancelOrderRequest{Reason: "damaged bottle", Amount: &too}, s.admin)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "refundable balance")
	})
}

func (s *orderSuite) TestOwnership() {
	s.Run("other customers cannot see or cancel", func() {
		t := s.T()
		placed := s.place(s.customer, request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_owned",
			Recipe:      recipe(),
		})
		stranger := s.jwt.GenerateToken(t, uuid.New(), jwt.RoleCustomer)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+placed.OrderNumber, nil, stranger)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+placed.OrderNumber, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+placed.OrderNumber+"/cancel",
			request.CancelOrderRequest{Reason: "not mine"}, stranger)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("expired token is treated as anonymous", func() {
		t := s.T()
		expired := s.jwt.CreateExpiredToken(t, s.customerID, jwt.RoleCustomer)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL, nil, expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("storefront session resolves the owner", func() {
		t := s.T()
		userID := dbtest.CreateSession(t, s.DB, "session-token-1", jwt.RoleCustomer)
		cookie := map[string]string{"Cookie": s.Config.Identity.AuthSessionCookie + "=session-token-1"}

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL, request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_session",
		}, cookie)
		var placed resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &placed)

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodGet, ordersURL, nil, cookie)
		var mine []resdto.OrderListItemResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &mine)
		require.Len(t, mine, 1)
		assert.Equal(t, placed.OrderNumber, mine[0].OrderNumber)

		token := s.jwt.GenerateToken(t, userID, jwt.RoleCustomer)
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+placed.OrderNumber, nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func (s *orderSuite) TestPaymentWebhook() {
	s.Run("webhook settles the order by payment id", func() {
		t := s.T()
		placed := s.place("", request.PlaceOrderRequest{
			ProductType: "perfume_50ml",
			Price:       45000,
			PaymentID:   "pay_hook",
			Recipe:      recipe(),
		})
		s.Gateway.Pay("pay_hook", 48000)

		headers := map[string]string{middleware.WebhookSecretHeader: s.Config.Server.WebhookSecret}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, "/api/webhooks/payments",
			request.PaymentWebhookRequest{PaymentID: "pay_hook", Status: "FAILED"}, headers)
		var res resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		assert.Equal(t, placed.OrderNumber, res.OrderNumber)
		assert.Equal(t, "paid", res.Status)

		var replay resdto.OrderStateResponse
		httptest.AssertSuccessResponse(t, s.confirm(placed.OrderNumber, ""), http.StatusOK, &replay)
		assert.True(t, replay.Replayed)
	})

	s.Run("wrong secret is rejected", func() {
		t := s.T()
		headers := map[string]string{middleware.WebhookSecretHeader: "nope"}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, "/api/webhooks/payments",
			request.PaymentWebhookRequest{PaymentID: "pay_hook"}, headers)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
