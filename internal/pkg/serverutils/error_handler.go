package serverutils

import (
	"errors"

	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/service"
	"ai-meetnotes/pkg/ai/pipeline"
	"ai-meetnotes/pkg/ai/quota"

	"github.com/gofiber/fiber/v2"
)

var knownErrors = []struct {
	err     error
	code    int
	message string
}{
	{pipeline.ErrEmptyMessage, fiber.StatusBadRequest, "Message cannot be empty"},
	{pipeline.ErrGenerationInProgress, fiber.StatusConflict, "A response is already being generated"},
	{pipeline.ErrSessionNotOpen, fiber.StatusConflict, "Session is not open"},
	{service.ErrSessionNotFound, fiber.StatusNotFound, "Session not found"},
	{quota.ErrQuotaExceeded, fiber.StatusTooManyRequests, "Pro License Required"},
}

// ErrorHandler renders handler errors. Clients only ever see the fixed
// messages; the raw error goes to the log.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if limit, ok := dto.AsLimitExceeded(err); ok {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.LimitExceededResponse{
				Success:   false,
				Code:      fiber.StatusTooManyRequests,
				Message:   "Pro License Required",
				ErrorType: "LIMIT_EXCEEDED",
				Data: dto.LimitExceededData{
					Limit:            limit.Limit,
					Used:             limit.Used,
					ShowModalPricing: true,
				},
			})
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validationErr.Error()))
		}

		for _, known := range knownErrors {
			if errors.Is(err, known.err) {
				return ctx.Status(known.code).JSON(ErrorResponse(known.code, known.message))
			}
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

// ErrorHandlerMiddleware renders errors returned further down the chain.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
