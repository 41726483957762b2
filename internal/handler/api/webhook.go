package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	reqdto "scent-fulfillment/internal/handler/dto/request"
	resdto "scent-fulfillment/internal/handler/dto/response"
	"scent-fulfillment/internal/handler/httperr"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	cmds commands.OrderCommands
}

func NewWebhookHandler(cmds commands.OrderCommands) *WebhookHandler {
	return &WebhookHandler{cmds: cmds}
}

// @Summary Payment webhook
// @Description Gateway notification. The body only identifies the payment; its state is re-fetched.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared secret"
// @Param request body reqdto.PaymentWebhookRequest true "Webhook body"
// @Success 200 {object} resdto.OrderStateResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /webhooks/payments [post]
func (h *WebhookHandler) Payment(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	req, err := bindWebhook(c.Request.Body)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	res, err := h.cmds.ReconcileByPayment(c.Request.Context(), req.PaymentID)
	if err != nil {
		abortWithUsecaseError(c, err, "Failed to reconcile payment")
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(res.Order, res.Replayed))
}

// bindWebhook decodes without binding.JSON, which rejects unknown fields once
// the process enables that globally; gateway payloads carry many. The binding
// tags are still enforced through gin's validator.
func bindWebhook(body io.Reader) (reqdto.PaymentWebhookRequest, error) {
	var req reqdto.PaymentWebhookRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return req, errs.Wrap(err, "decode webhook")
	}
	req.PaymentID = strings.TrimSpace(req.PaymentID)
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return req, err
	}
	return req, nil
}
