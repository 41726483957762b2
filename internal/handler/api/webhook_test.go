//go:build unit

package api_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"strings"
	"testing"

	"scent-fulfillment/internal/handler/api"
	"scent-fulfillment/internal/handler/middleware"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/internal/usecase/shared"
	"scent-fulfillment/tests/common/builder"
	"scent-fulfillment/tests/common/httptest"
	commandsmock "scent-fulfillment/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testWebhookSecret = "whsec_test"

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockOrderCommands
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	router, _ := newTestRouter()
	s.router = router

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockOrderCommands(s.mockCtrl)
	handler := api.NewWebhookHandler(s.mockCommands)

	s.router.POST("/webhooks/payments", middleware.RequireWebhookSecret(testWebhookSecret), handler.Payment)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) post(body any, secret string) *nethttptest.ResponseRecorder {
	headers := map[string]string{}
	if secret != "" {
		headers[middleware.WebhookSecretHeader] = secret
	}
	return httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/webhooks/payments", body, headers)
}

func (s *WebhookHandlerTestSuite) TestPayment() {
	b := builder.NewOrderBuilder().Paid()

	s.Run("success: reconciles by payment id and ignores the pushed status", func() {
		s.mockCommands.EXPECT().ReconcileByPayment(gomock.Any(), b.PaymentID).
			Return(&commands.ReconcileResult{Order: b.BuildDomain()}, nil).Times(1)

		rec := s.post(map[string]any{
			"paymentId": b.PaymentID,
			"status":    "CANCELLED",
			"extra":     map[string]any{"ignored": true},
		}, testWebhookSecret)

		var res resdto.OrderStateResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal("paid", res.Status)
	})

	s.Run("success: gateway fields are accepted while strict JSON binding is on", func() {
		binding.EnableDecoderDisallowUnknownFields = true
		defer func() { binding.EnableDecoderDisallowUnknownFields = false }()

		s.mockCommands.EXPECT().ReconcileByPayment(gomock.Any(), b.PaymentID).
			Return(&commands.ReconcileResult{Order: b.BuildDomain()}, nil).Times(1)

		rec := s.post(map[string]any{
			"paymentId":     b.PaymentID,
			"transactionId": "tx_1",
			"storeId":       "store_1",
		}, testWebhookSecret)

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: a duplicate delivery is replayed", func() {
		s.mockCommands.EXPECT().ReconcileByPayment(gomock.Any(), b.PaymentID).
			Return(&commands.ReconcileResult{Order: b.BuildDomain(), Replayed: true}, nil).Times(1)

		rec := s.post(map[string]any{"paymentId": " " + b.PaymentID + " "}, testWebhookSecret)

		var res resdto.OrderStateResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.True(res.Replayed)
	})

	s.Run("error: 401 on a missing or wrong secret", func() {
		for _, secret := range []string{"", "whsec_wrong"} {
			rec := s.post(map[string]any{"paymentId": b.PaymentID}, secret)
			httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
		}
	})

	s.Run("error: 400 on a malformed body", func() {
		for _, body := range [][]byte{[]byte("{not json"), []byte(`{"status":"PAID"}`), []byte(`{"paymentId":"   "}`)} {
			rec := s.post(body, testWebhookSecret)
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
		}
	})

	s.Run("error: 400 on an oversized body", func() {
		body := []byte(`{"paymentId":"` + strings.Repeat("p", 70<<10) + `"}`)
		rec := s.post(body, testWebhookSecret)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 503 lets the gateway redeliver", func() {
		s.mockCommands.EXPECT().ReconcileByPayment(gomock.Any(), b.PaymentID).
			Return(nil, shared.ErrGatewayUnavailable).Times(1)

		rec := s.post(map[string]any{"paymentId": b.PaymentID}, testWebhookSecret)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusServiceUnavailable, "")
	})

	s.Run("error: 404 for an unknown payment", func() {
		s.mockCommands.EXPECT().ReconcileByPayment(gomock.Any(), "pay_unknown").
			Return(nil, commands.ErrOrderNotFound).Times(1)

		rec := s.post(map[string]any{"paymentId": "pay_unknown"}, testWebhookSecret)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Order not found")
	})
}
