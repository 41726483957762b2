package api

import (
	"net/http"

	reqdto "scent-fulfillment/internal/handler/dto/request"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/handler/httperr"
	"scent-fulfillment/internal/handler/middleware"
	"scent-fulfillment/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AdminOrderHandler struct {
	cmds commands.OrderCommands
}

func NewAdminOrderHandler(cmds commands.OrderCommands) *AdminOrderHandler {
	return &AdminOrderHandler{cmds: cmds}
}

// @Summary Ship order
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param orderNumber path string true "Order number"
// @Success 200 {object} resdto.OrderStateResponse
// @Failure 409 {object} httperr.Response
// @Router /admin/orders/{orderNumber}/ship [post]
func (h *AdminOrderHandler) Ship(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}
	o, err := h.cmds.Ship(c.Request.Context(), number)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to ship order")
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(o, false))
}

// @Summary Deliver order
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param orderNumber path string true "Order number"
// @Success 200 {object} resdto.OrderStateResponse
// @Failure 409 {object} httperr.Response
// @Router /admin/orders/{orderNumber}/deliver [post]
func (h *AdminOrderHandler) Deliver(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}
	o, err := h.cmds.Deliver(c.Request.Context(), number)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to deliver order")
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(o, false))
}

// @Summary Refund order
// @Description Operator refund, fully or partially, regardless of owner
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderNumber path string true "Order number"
// @Param request body reqdto.CancelOrderRequest true "Refund request"
// @Success 200 {object} resdto.OrderStateResponse
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /admin/orders/{orderNumber}/refund [post]
func (h *AdminOrderHandler) Refund(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}
	var req reqdto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	o, err := h.cmds.Cancel(c.Request.Context(), commands.CancelInput{
		Number: number,
		Actor:  middleware.ViewerID(c),
		Admin:  true,
		Reason: req.Reason,
		Amount: req.Amount,
	})
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to refund order")
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(o, false))
}
