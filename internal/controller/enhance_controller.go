package controller

import (
	"ai-meetnotes/internal/pkg/serverutils"
	"ai-meetnotes/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEnhanceController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type enhanceController struct {
	enhanceService service.IEnhanceService
}

func NewEnhanceController(enhanceService service.IEnhanceService) IEnhanceController {
	return &enhanceController{
		enhanceService: enhanceService,
	}
}

func (c *enhanceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions/:id/enhance")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Start)
	h.Delete("", c.Cancel)
}

// Start returns once the run is launched; progress arrives over the websocket.
func (c *enhanceController) Start(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.enhanceService.Start(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Enhancement started", res))
}

func (c *enhanceController) Cancel(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.enhanceService.Cancel(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Enhancement cancel requested", res))
}
