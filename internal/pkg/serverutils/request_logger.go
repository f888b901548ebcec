package serverutils

import (
	"time"

	"noet-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestId returns the id assigned by the requestid middleware, if any.
func RequestId(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger logs one line per request after the error handler has
// settled the final status.
func RequestLogger(log logger.ILogger, errorHandler fiber.ErrorHandler) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		if err := ctx.Next(); err != nil {
			if handleErr := errorHandler(ctx, err); handleErr != nil {
				return handleErr
			}
		}

		status := ctx.Response().StatusCode()
		details := map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": RequestId(ctx),
			"ip":         ctx.IP(),
		}
		if status >= fiber.StatusInternalServerError {
			log.Warn("HTTP", "request completed with server error", details)
		} else {
			log.Debug("HTTP", "request completed", details)
		}
		return nil
	}
}
