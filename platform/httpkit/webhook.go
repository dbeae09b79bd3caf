package httpkit

import (
	"fmt"
	"net/http"

	"vitelis_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// WebhookResponse is the body returned to workflow and engine callbacks.
// Callers branch on Success, not on the HTTP status.
type WebhookResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WebhookOK answers a callback that was applied.
func WebhookOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: message, Data: data})
}

// WebhookFail answers a callback that was rejected, still with HTTP 200.
// Unexpected errors are reported with a generic message.
func WebhookFail(c *gin.Context, err error) {
	resp := WebhookResponse{Success: false, Error: msgInternalError, Kind: apperr.KindInternal.String()}
	if domainErr, ok := asDomainError(err); ok && domainErr.Kind != apperr.KindInternal && domainErr.Kind != apperr.KindUnknown {
		resp.Error = domainErr.Message
		resp.Kind = domainErr.Kind.String()
	}
	_ = c.Error(err)
	c.JSON(http.StatusOK, resp)
}

// WebhookRecovery converts a panic inside a callback handler into a
// success:false body so the sender never sees a dropped connection.
func WebhookRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				WebhookFail(c, fmt.Errorf("webhook panic: %v", rec))
				c.Abort()
			}
		}()
		c.Next()
	}
}
