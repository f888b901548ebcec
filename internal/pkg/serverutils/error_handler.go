package serverutils

import (
	"errors"

	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "internal server error"

// NewErrorHandler maps returned errors onto the response envelope. Server
// side failures are logged with the request id and answered with a generic
// message.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if appErr, ok := apperror.As(err); ok {
			if appErr.Status >= fiber.StatusInternalServerError {
				logServerError(log, ctx, err)
				return ctx.Status(appErr.Status).JSON(ErrorResponse(appErr.Status, internalErrorMessage))
			}
			return ctx.Status(appErr.Status).JSON(ErrorResponse(appErr.Status, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code >= fiber.StatusInternalServerError {
				logServerError(log, ctx, err)
				return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, internalErrorMessage))
			}
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		logServerError(log, ctx, err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, internalErrorMessage))
	}
}

func logServerError(log logger.ILogger, ctx *fiber.Ctx, err error) {
	log.Error("HTTP", "request failed", map[string]interface{}{
		"error":      err,
		"method":     ctx.Method(),
		"path":       ctx.Path(),
		"request_id": RequestId(ctx),
	})
}
