package controller

import (
	"bufio"
	"context"

	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/pkg/serverutils"
	"ai-meetnotes/internal/service"
	"ai-meetnotes/pkg/ai/commit"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	QuickAction(ctx *fiber.Ctx) error
	ApplyMarkdown(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions/:id/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Send)
	h.Post("quick-action", c.QuickAction)
	h.Post("apply-markdown", c.ApplyMarkdown)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	return c.submit(ctx, false)
}

func (c *chatController) QuickAction(ctx *fiber.Ctx) error {
	return c.submit(ctx, true)
}

// submit streams the reply as SSE unless ?stream=false asks for one JSON body.
func (c *chatController) submit(ctx *fiber.Ctx, quickAction bool) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if !ctx.QueryBool("stream", true) {
		res, err := c.chatService.Send(ctx.UserContext(), userId, sessionId, &req, quickAction)
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
	}

	// Admission errors still get a normal status code.
	turn, err := c.chatService.Begin(ctx.UserContext(), userId, sessionId, &req, quickAction)
	if err != nil {
		return err
	}

	// The reply is committed even if the client goes away mid-stream.
	runCtx := context.WithoutCancel(ctx.UserContext())
	messageID := turn.MessageID()

	setSSEHeaders(ctx)
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// Content is cumulative, so a dropped update is covered by the next one.
		updates := make(chan string, 32)
		unsubscribe := c.chatService.Watch(sessionId, messageID, func(content string) {
			select {
			case updates <- content:
			default:
			}
		})
		defer unsubscribe()

		done := make(chan commit.Outcome, 1)
		go func() { done <- turn.Run(runCtx) }()

		connected := writeEvent(w, dto.ChatStreamEvent{Type: dto.ChatStreamChunk, MessageId: messageID}) == nil
		for {
			select {
			case content := <-updates:
				if connected {
					connected = writeEvent(w, dto.ChatStreamEvent{
						Type:      dto.ChatStreamChunk,
						MessageId: messageID,
						Content:   content,
					}) == nil
				}
			case out := <-done:
				if connected {
					eventType := dto.ChatStreamDone
					if out.Fallback {
						eventType = dto.ChatStreamError
					}
					_ = writeEvent(w, dto.ChatStreamEvent{
						Type:      eventType,
						MessageId: messageID,
						Content:   out.Content,
						Fallback:  out.Fallback,
					})
				}
				return
			}
		}
	})
	return nil
}

func (c *chatController) ApplyMarkdown(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	sessionId, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	var req dto.ApplyMarkdownRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.ApplyMarkdown(ctx.UserContext(), userId, sessionId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Enhanced note replaced", nil))
}
