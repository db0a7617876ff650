// Package middleware provides the gin middleware of the HTTP API.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/pkg/logger"
)

// Recovery converts a handler panic into an internal error. ErrorHandler must
// be installed before it to render the error and fail any idempotency key.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := []any{
				"panic", rec,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			}
			if key := c.GetString(ctxIdempotencyKey); key != "" {
				fields = append(fields, "idempotency_key", key)
			}
			logger.Error(c.Request.Context(), "handler panicked", fields...)

			_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", rec)).
				WithDetail("request_id", appctx.GetRequestID(c.Request.Context())))
			c.Abort()
		}()
		c.Next()
	}
}
