package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/go-order-triage/internal/apierr"
)

// writeError renders a taxonomy error as the structured JSON failure body.
// Internal errors additionally echo the request id for correlation and log
// the underlying cause, which is never sent to the caller.
func writeError(c *gin.Context, e *apierr.Error) {
	body := gin.H{"error": e.Code, "message": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	if e.Code == apierr.CodeInternal {
		if rid := c.GetHeader("X-Request-Id"); rid != "" {
			body["requestId"] = rid
		}
		slog.Error("request failed",
			"path", c.FullPath(),
			"request_id", c.GetHeader("X-Request-Id"),
			"error", e.Unwrap())
	}
	if e.Code == apierr.CodeThrottling {
		c.Header("Retry-After", "1")
	}
	c.JSON(e.HTTPStatus(), body)
}
