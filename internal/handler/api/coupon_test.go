//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/handler/api"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/internal/usecase/queries"
	"scent-fulfillment/tests/common/builder"
	"scent-fulfillment/tests/common/httptest"
	commandsmock "scent-fulfillment/tests/mock/commands"
	queriesmock "scent-fulfillment/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CouponHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCouponCommands
	mockQueries  *queriesmock.MockCouponQueries
	userID       uuid.UUID
}

func (s *CouponHandlerTestSuite) SetupTest() {
	router, identity := newTestRouter()
	s.router = router

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCouponCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCouponQueries(s.mockCtrl)
	handler := api.NewCouponHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	coupons := s.router.Group("/coupons", identity.RequireUser())
	coupons.GET("", handler.ListClaimed)
	coupons.GET("/eligibility", handler.Eligibility)
	coupons.POST("/:couponId/claim", handler.Claim)
}

func (s *CouponHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCouponHandlerSuite(t *testing.T) {
	suite.Run(t, new(CouponHandlerTestSuite))
}

func (s *CouponHandlerTestSuite) TestListClaimed() {
	cb := builder.NewCouponBuilder()
	view := cb.BuildClaimedView(cb.BuildClaim(s.userID, 1))

	s.Run("success: lists claims", func() {
		s.mockQueries.EXPECT().ListClaimed(gomock.Any(), s.userID).
			Return([]*queries.ClaimedCouponView{view}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons", nil, customerToken(s.userID))

		var res []resdto.ClaimedCouponResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Require().Len(res, 1)
		s.Equal(view.ID, res[0].ID)
		s.Equal("WELCOME-10", res[0].Code)
		s.Equal(int32(10), res[0].DiscountPercent)
		s.False(res[0].IsUsed)
	})

	s.Run("error: 401 when anonymous", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})
}

func (s *CouponHandlerTestSuite) TestEligibility() {
	s.Run("success: reports eligibility", func() {
		s.mockCommands.EXPECT().CheckEligibility(gomock.Any(), s.userID, coupon.TypeRepurchase).
			Return(coupon.Eligibility{Eligible: true, CompletedOrders: 2}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/eligibility?type=repurchase", nil, customerToken(s.userID))

		var res resdto.EligibilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.True(res.Eligible)
		s.Equal(2, res.CompletedOrders)
	})

	s.Run("error: 400 on an unknown type", func() {
		s.mockCommands.EXPECT().CheckEligibility(gomock.Any(), s.userID, coupon.Type("lottery")).
			Return(coupon.Eligibility{}, coupon.ErrInvalidCouponType).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/eligibility?type=lottery", nil, customerToken(s.userID))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}

func (s *CouponHandlerTestSuite) TestClaim() {
	cb := builder.NewCouponBuilder()
	url := "/coupons/" + cb.ID.String() + "/claim"

	s.Run("success: returns 201 with the claim", func() {
		claim := cb.BuildClaim(s.userID, 1)
		s.mockCommands.EXPECT().Claim(gomock.Any(), s.userID, cb.ID).Return(claim, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, customerToken(s.userID))

		var res resdto.ClaimResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &res)
		s.Equal(claim.ID(), res.ID)
		s.Equal(1, res.ClaimSeq)
	})

	s.Run("error: 400 on a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/coupons/not-a-uuid/claim", nil, customerToken(s.userID))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid coupon id")
	})

	s.Run("error: maps claim outcomes", func() {
		testCases := []struct {
			name           string
			err            error
			expectedStatus int
			expectedMsg    string
		}{
			{"already claimed", coupon.ErrAlreadyClaimed, http.StatusConflict, "already claimed"},
			{"inactive", coupon.ErrCouponInactive, http.StatusUnprocessableEntity, "not active"},
			{"ineligible", commands.ErrIneligible, http.StatusUnprocessableEntity, "Not eligible"},
			{"unknown coupon", commands.ErrCouponNotFound, http.StatusNotFound, "Coupon not found"},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Claim(gomock.Any(), s.userID, cb.ID).Return(nil, tc.err).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, customerToken(s.userID))
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}
