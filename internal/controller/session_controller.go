package controller

import (
	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/pkg/serverutils"
	"ai-meetnotes/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Open(ctx *fiber.Ctx) error
	UpdateNote(ctx *fiber.Ctx) error
	Leave(ctx *fiber.Ctx) error
	SetOngoing(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Post(":id/open", c.Open)
	h.Put(":id/note", c.UpdateNote)
	h.Post(":id/leave", c.Leave)

	rec := r.Group("/recording")
	rec.Use(serverutils.JwtMiddleware)
	rec.Put("ongoing", c.SetOngoing)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.List(ctx.UserContext(), userId, ctx.Query("q"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Sessions retrieved", res))
}

func (c *sessionController) Open(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Open(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session opened", res))
}

func (c *sessionController) UpdateNote(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.UpdateNote(ctx.UserContext(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Note updated", res))
}

func (c *sessionController) Leave(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Leave(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}

	msg := "Session closed"
	if res.Deleted {
		msg = "Empty session discarded"
	}
	return ctx.JSON(serverutils.SuccessResponse(msg, res))
}

func (c *sessionController) SetOngoing(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.SetOngoingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetOngoing(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Recording state updated", res))
}
