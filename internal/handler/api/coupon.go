package api

import (
	"net/http"

	"scent-fulfillment/internal/domain/coupon"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/handler/httperr"
	"scent-fulfillment/internal/handler/middleware"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CouponHandler struct {
	cmds commands.CouponCommands
	q    queries.CouponQueries
}

func NewCouponHandler(cmds commands.CouponCommands, q queries.CouponQueries) *CouponHandler {
	return &CouponHandler{cmds: cmds, q: q}
}

// @Summary List claimed coupons
// @Tags coupons
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ClaimedCouponResponse
// @Failure 401 {object} httperr.Response
// @Router /coupons [get]
func (h *CouponHandler) ListClaimed(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrUnauthorized, "Unauthorized", nil)
		return
	}

	items, err := h.q.ListClaimed(c.Request.Context(), userID)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to list coupons")
		return
	}
	res, err := resdto.FromClaimedCoupons(items)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render coupons", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Claim coupon
// @Tags coupons
// @Produce json
// @Security BearerAuth
// @Param couponId path string true "Coupon ID"
// @Success 201 {object} resdto.ClaimResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /coupons/{couponId}/claim [post]
func (h *CouponHandler) Claim(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrUnauthorized, "Unauthorized", nil)
		return
	}
	couponID, err := uuid.Parse(c.Param("couponId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon id", nil)
		return
	}

	claim, err := h.cmds.Claim(c.Request.Context(), userID, couponID)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to claim coupon")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromUserCoupon(claim))
}

// @Summary Coupon eligibility
// @Tags coupons
// @Produce json
// @Security BearerAuth
// @Param type query string true "Coupon type" Enums(welcome, birthday, referral, repurchase)
// @Success 200 {object} resdto.EligibilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /coupons/eligibility [get]
func (h *CouponHandler) Eligibility(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrUnauthorized, "Unauthorized", nil)
		return
	}

	elig, err := h.cmds.CheckEligibility(c.Request.Context(), userID, coupon.Type(c.Query("type")))
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to check eligibility")
		return
	}
	c.JSON(http.StatusOK, resdto.FromEligibility(elig))
}
