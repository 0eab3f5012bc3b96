package middleware

import (
	"go-logstore/internal/logging" // To get the base logger

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger is a middleware that injects a request-scoped logger into
// c.Locals(), including a unique "request_id" field. It also stores the
// request_id string in Locals and echoes it in the response headers.
func RequestLogger(baseLogger *zap.Logger) fiber.Handler {
	if baseLogger == nil {
		baseLogger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		// Generate a unique request ID
		requestID := uuid.NewString()

		// Add request_id to response headers for client-side correlation
		c.Set(RequestIDHeader, requestID)
		c.Locals(RequestIDKey, requestID)

		reqLogger := baseLogger.With(
			zap.String("request_id", requestID),
		)
		c.Locals(RequestLoggerKey, reqLogger)

		return c.Next()
	}
}

// GetRequestLogger retrieves the request-scoped logger from fiber.Ctx.Locals.
// Falls back to the global logger if not found.
func GetRequestLogger(c *fiber.Ctx) *zap.Logger {
	if logger, ok := c.Locals(RequestLoggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return logging.GetLogger()
}
