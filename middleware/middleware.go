package middleware

import (
	"net/http"
	"runtime/debug"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RecoveryMiddleware catches panics and prevents the server from crashing
func RecoveryMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				// Log the panic and stack trace
				zap.L().Error("Panic recovered", zap.Any("panic", r), zap.String("stack", string(debug.Stack())))
				// Respond with a 500 Internal Server Error
				ctx.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error. Please try again later.",
				})
				ctx.Abort()
			}
		}()
		// Continue to the next handler
		ctx.Next()
	}
}

// RequestIDMiddleware keeps the caller's request id or assigns a new one, echoes it
// back and tags the sentry scope of the request with it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx.Set("requestID", requestID)
		ctx.Writer.Header().Set(RequestIDHeader, requestID)

		if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
			hub.Scope().SetTag("request_id", requestID)
		}
		zap.L().Debug("Request received",
			zap.String("requestID", requestID),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path))
		ctx.Next()
	}
}
