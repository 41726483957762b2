package middleware

import (
	"crypto/subtle"
	"net/http"

	"scent-fulfillment/internal/handler/httperr"
	"scent-fulfillment/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

const WebhookSecretHeader = "X-Webhook-Secret"

func RequireWebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(WebhookSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("bad webhook secret"), "Unauthorized", nil)
			return
		}
		c.Next()
	}
}
