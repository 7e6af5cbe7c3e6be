package service

import (
	"context"
	"errors"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/pkg/ai/commit"
	"ai-meetnotes/pkg/ai/mention"
	"ai-meetnotes/pkg/ai/pipeline"
	"ai-meetnotes/pkg/ai/quota"
	"ai-meetnotes/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	Send(ctx context.Context, userId, sessionId uuid.UUID, req *dto.SendChatRequest, quickAction bool) (*dto.SendChatResponse, error)
	// Begin admits a submission; the caller must Run the returned turn.
	Begin(ctx context.Context, userId, sessionId uuid.UUID, req *dto.SendChatRequest, quickAction bool) (*pipeline.ChatTurn, error)
	// Watch calls fn with the content of messageID each time it changes.
	Watch(sessionId uuid.UUID, messageID string, fn func(content string)) (unsubscribe func())
	ApplyMarkdown(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ApplyMarkdownRequest) error
}

type chatService struct {
	chat     *pipeline.ChatPipeline
	data     *DataStore
	sessions *memory.SessionStore
	messages *memory.MessageStore
	broker   *memory.Broker
	limit    int
}

func NewChatService(
	chat *pipeline.ChatPipeline,
	data *DataStore,
	sessions *memory.SessionStore,
	messages *memory.MessageStore,
	broker *memory.Broker,
	limit int,
) IChatService {
	return &chatService{
		chat:     chat,
		data:     data,
		sessions: sessions,
		messages: messages,
		broker:   broker,
		limit:    limit,
	}
}

func (c *chatService) Send(ctx context.Context, userId, sessionId uuid.UUID, req *dto.SendChatRequest, quickAction bool) (*dto.SendChatResponse, error) {
	turn, err := c.Begin(ctx, userId, sessionId, req, quickAction)
	if err != nil {
		return nil, err
	}
	return toSendChatResponse(turn.Run(ctx)), nil
}

func (c *chatService) Begin(ctx context.Context, userId, sessionId uuid.UUID, req *dto.SendChatRequest, quickAction bool) (*pipeline.ChatTurn, error) {
	if err := c.ensureOpen(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	in := pipeline.ChatInput{
		SessionID: sessionId.String(),
		UserID:    userId.String(),
		Content:   req.Content,
		Mentions:  toMentions(req.Mentions),
	}

	event := constant.AnalyticsChatMessageSent
	if quickAction {
		event = constant.AnalyticsChatQuickActionSent
	}
	turn, err := c.chat.Begin(ctx, in, event)
	if errors.Is(err, quota.ErrQuotaExceeded) {
		return nil, &dto.LimitExceededError{
			Limit: c.limit,
			Used:  len(c.messages.List(in.SessionID)),
			Cause: err,
		}
	}
	return turn, err
}

func (c *chatService) Watch(sessionId uuid.UUID, messageID string, fn func(content string)) func() {
	key := sessionId.String()
	return c.broker.Subscribe(func(change store.Change) {
		if change.Kind != store.ChangeMessagesUpdated || change.Key != key {
			return
		}
		msgs, ok := change.Payload.([]store.Message)
		if !ok {
			return
		}
		for _, m := range msgs {
			if m.ID == messageID {
				fn(m.Content)
				return
			}
		}
	})
}

func (c *chatService) ApplyMarkdown(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ApplyMarkdownRequest) error {
	if err := c.ensureOpen(ctx, userId, sessionId); err != nil {
		return err
	}
	return c.chat.ApplyMarkdown(ctx, sessionId.String(), req.Markdown)
}

func (c *chatService) ensureOpen(ctx context.Context, userId, sessionId uuid.UUID) error {
	if cached, ok := c.sessions.Get(sessionId.String()); ok {
		if cached.UserId != userId {
			return ErrSessionNotFound
		}
		return nil
	}
	session, err := c.data.OwnedSession(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	c.sessions.Insert(session)
	if len(c.messages.List(sessionId.String())) == 0 {
		loaded, err := c.data.LoadMessages(ctx, userId.String(), sessionId.String())
		if err != nil {
			return err
		}
		if len(loaded) > 0 {
			c.messages.Reset(sessionId.String(), userId.String(), loaded)
		}
	}
	return nil
}

func toMentions(in []dto.MentionDTO) []mention.Mention {
	if len(in) == 0 {
		return nil
	}
	out := make([]mention.Mention, 0, len(in))
	for _, m := range in {
		out = append(out, mention.Mention{ID: m.Id, Type: m.Type, Label: m.Label})
	}
	return out
}

func toSendChatResponse(out commit.Outcome) *dto.SendChatResponse {
	return &dto.SendChatResponse{
		MessageId: out.MessageID,
		Content:   out.Content,
		Fallback:  out.Fallback,
		Persisted: out.Persisted,
	}
}
