//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/handler/api"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/tests/common/builder"
	"scent-fulfillment/tests/common/httptest"
	commandsmock "scent-fulfillment/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AdminOrderHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockOrderCommands
	adminID      uuid.UUID
	order        *builder.OrderBuilder
}

func (s *AdminOrderHandlerTestSuite) SetupTest() {
	router, identity := newTestRouter()
	s.router = router

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockOrderCommands(s.mockCtrl)
	handler := api.NewAdminOrderHandler(s.mockCommands)
	s.adminID = uuid.New()
	s.order = builder.NewOrderBuilder().Paid()

	admin := s.router.Group("/admin/orders", identity.RequireAdmin())
	admin.POST("/:orderNumber/ship", handler.Ship)
	admin.POST("/:orderNumber/deliver", handler.Deliver)
	admin.POST("/:orderNumber/refund", handler.Refund)
}

func (s *AdminOrderHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAdminOrderHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminOrderHandlerTestSuite))
}

func (s *AdminOrderHandlerTestSuite) url(action string) string {
	return "/admin/orders/" + s.order.Number.String() + "/" + action
}

func (s *AdminOrderHandlerTestSuite) TestAccess() {
	s.Run("error: 401 without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("ship"), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Authentication required")
	})

	s.Run("error: 403 for customers", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("ship"), nil, customerToken(uuid.New()))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Insufficient permissions")
	})

	s.Run("error: 403 for a storefront session with the admin role", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("ship"), nil, sessionAdminToken(uuid.New()))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Insufficient permissions")
	})
}

func (s *AdminOrderHandlerTestSuite) TestShipAndDeliver() {
	shipping := *s.order
	shipping.Status = order.StatusShipping
	delivered := *s.order
	delivered.Status = order.StatusDelivered

	s.Run("success: ship", func() {
		s.mockCommands.EXPECT().Ship(gomock.Any(), s.order.Number).Return(shipping.BuildDomain(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("ship"), nil, adminToken(s.adminID))

		var res resdto.OrderStateResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal("shipping", res.Status)
	})

	s.Run("success: deliver", func() {
		s.mockCommands.EXPECT().Deliver(gomock.Any(), s.order.Number).Return(delivered.BuildDomain(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("deliver"), nil, adminToken(s.adminID))

		var res resdto.OrderStateResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal("delivered", res.Status)
	})

	s.Run("error: 409 on an illegal transition", func() {
		s.mockCommands.EXPECT().Ship(gomock.Any(), s.order.Number).Return(nil, commands.ErrInvalidTransition).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("ship"), nil, adminToken(s.adminID))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "")
	})

	s.Run("error: 409 while a cancellation is in flight", func() {
		s.mockCommands.EXPECT().Ship(gomock.Any(), s.order.Number).Return(nil, commands.ErrStateChanged).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("ship"), nil, adminToken(s.adminID))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "retry")
	})
}

func (s *AdminOrderHandlerTestSuite) TestRefund() {
	refunded := *s.order
	refunded.Status = order.StatusRefunded

	s.Run("success: refunds with the admin flag set", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), commands.CancelInput{
			Number: s.order.Number,
			Actor:  &s.adminID,
			Admin:  true,
			Reason: "damaged in transit",
		}).Return(refunded.BuildDomain(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("refund"),
			map[string]any{"reason": "damaged in transit"}, adminToken(s.adminID))

		var res resdto.OrderStateResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal("refunded", res.Status)
	})

	s.Run("error: 400 without a reason", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, s.url("refund"), map[string]any{}, adminToken(s.adminID))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}
