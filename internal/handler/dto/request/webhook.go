package request

// PaymentWebhookRequest only names the payment; its status is never trusted
// and is re-fetched from the gateway.
type PaymentWebhookRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
	Status    string `json:"status"`
}
