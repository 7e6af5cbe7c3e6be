package controller

import (
	"ai-meetnotes/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func currentUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userId, nil
}

// sessionParam reads :id. A malformed id cannot name an existing session.
func sessionParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, service.ErrSessionNotFound
	}
	return id, nil
}
