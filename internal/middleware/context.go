package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
)

// CorrelationMiddleware propagates a correlation ID across the request,
// generating one when the caller did not send any.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = c.GetHeader("X-Request-ID")
		}

		ctx := c.Request.Context()
		if correlationID != "" {
			ctx = context.WithValue(ctx, ctxutil.CorrelationIDKey, correlationID)
		} else {
			correlationID = ctxutil.GetCorrelationID(ctx)
		}

		c.Header("X-Correlation-ID", correlationID)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestTimeoutMiddleware bounds each request's context.
func RequestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := ctxutil.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		select {
		case <-ctx.Done():
			logger.WarnWithContext(ctx, "Request timeout before processing").
				Duration(timeout).
				Log()
			c.JSON(http.StatusRequestTimeout, gin.H{
				"error":   "Request timeout",
				"timeout": timeout.String(),
			})
			c.Abort()
			return
		default:
			c.Next()
		}
	}
}
