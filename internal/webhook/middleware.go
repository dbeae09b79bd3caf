package webhook

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/logger"
)

// SecretHeader carries the shared secret on every callback.
const SecretHeader = "X-Webhook-Secret"

// SharedSecretMiddleware rejects callbacks whose X-Webhook-Secret does not
// match. An empty secret disables the check.
func SharedSecretMiddleware(secret string, log *logger.Logger) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		log.Warn("WEBHOOK_SHARED_SECRET is not set; webhook callbacks are unauthenticated")
		return func(c *gin.Context) { c.Next() }
	}
	expected := []byte(secret)

	return func(c *gin.Context) {
		got := []byte(c.GetHeader(SecretHeader))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			log.WebhookEvent(c.FullPath(), "", false, "invalid shared secret")
			httpkit.WebhookFail(c, apperr.Unauthorized("invalid webhook secret"))
			c.Abort()
			return
		}
		c.Next()
	}
}
