package api

import (
	"net/http"

	"scent-fulfillment/internal/domain/order"
	reqdto "scent-fulfillment/internal/handler/dto/request"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/handler/httperr"
	"scent-fulfillment/internal/handler/middleware"
	"scent-fulfillment/internal/usecase/commands"
	"scent-fulfillment/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	cmds commands.OrderCommands
	q    queries.OrderQueries
}

func NewOrderHandler(cmds commands.OrderCommands, q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, q: q}
}

// @Summary Place order
// @Description Create a pending order for a payment the client is about to make
// @Tags orders
// @Accept json
// @Produce json
// @Param request body reqdto.PlaceOrderRequest true "Place order request"
// @Success 201 {object} resdto.OrderStateResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req reqdto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	o, err := h.cmds.PlaceOrder(c.Request.Context(), req.ToInput(middleware.ViewerID(c)))
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromOrder(o, false))
}

// @Summary Attach recipe
// @Description Set the recipe of a pending order once
// @Tags orders
// @Accept json
// @Produce json
// @Param orderNumber path string true "Order number"
// @Param request body reqdto.RecipeRequest true "Recipe"
// @Success 200 {object} resdto.OrderStateResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /orders/{orderNumber}/recipe [put]
func (h *OrderHandler) AttachRecipe(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}
	var req reqdto.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	o, err := h.cmds.AttachRecipe(c.Request.Context(), number, req.ToDomain(), middleware.ViewerID(c))
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to attach recipe")
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(o, false))
}

// @Summary Get order
// @Description Owner view of one order. Guest orders are visible by number.
// @Tags orders
// @Produce json
// @Param orderNumber path string true "Order number"
// @Success 200 {object} resdto.OrderResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{orderNumber} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}

	view, err := h.q.GetOrder(c.Request.Context(), number.String(), middleware.ViewerID(c))
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to get order")
		return
	}
	res, err := resdto.FromOrderView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render order", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary List my orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.OrderListItemResponse
// @Failure 401 {object} httperr.Response
// @Router /orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrUnauthorized, "Unauthorized", nil)
		return
	}

	items, err := h.q.ListMyOrders(c.Request.Context(), userID)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to list orders")
		return
	}
	res, err := resdto.FromOrderList(items)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render orders", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Confirm payment
// @Description Reconcile the order against the payment gateway. Safe to repeat.
// @Tags orders
// @Produce json
// @Param orderNumber path string true "Order number"
// @Success 200 {object} resdto.OrderStateResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /orders/{orderNumber}/confirm [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}

	if err := h.q.AuthorizeOrder(c.Request.Context(), number.String(), middleware.ViewerID(c)); err != nil {
		abortWithUsecaseError(c, err, "Failed to confirm order")
		return
	}

	res, err := h.cmds.Reconcile(c.Request.Context(), number)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to confirm order")
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(res.Order, res.Replayed))
}

// @Summary Cancel order
// @Description Withdraw a pending or paid order in full. Partial refunds and refunds after shipping go through the admin API
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderNumber path string true "Order number"
// @Param request body reqdto.CancelOrderRequest true "Cancel request"
// @Success 200 {object} resdto.OrderStateResponse
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /orders/{orderNumber}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
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
		Reason: req.Reason,
		Amount: req.Amount,
	})
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to cancel order")
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(o, false))
}

func orderNumberParam(c *gin.Context) (order.Number, bool) {
	number, err := order.ParseNumber(c.Param("orderNumber"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order number", nil)
		return "", false
	}
	return number, true
}
