package pipeline

import (
	"context"
	"strings"
	"time"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/pkg/ai/assembler"
	"ai-meetnotes/pkg/ai/commit"
	"ai-meetnotes/pkg/ai/mention"
	"ai-meetnotes/pkg/ai/stream"
	"ai-meetnotes/pkg/analytics"
	"ai-meetnotes/pkg/markup"
	"ai-meetnotes/pkg/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("ai-meetnotes/pipeline")

// ChatStore resolves the conversation a session chats in and persists user turns.
type ChatStore interface {
	GetOrCreateChatGroup(ctx context.Context, userID, sessionID string) (uuid.UUID, error)
	UpsertChatMessage(ctx context.Context, msg *entity.ChatMessage) error
}

type ChatInput struct {
	SessionID string
	UserID    string
	Content   string
	Mentions  []mention.Mention
}

type ChatPipeline struct {
	assembler    PromptAssembler
	orchestrator StreamRunner
	committer    MessageCommitter
	quota        QuotaChecker
	tracker      analytics.Tracker
	chats        ChatStore
	messages     *memory.MessageStore
	sessions     *memory.SessionStore
	streams      *memory.StreamStates
	logger       logger.ILogger
	now          func() time.Time
}

type ChatDeps struct {
	Assembler    PromptAssembler
	Orchestrator StreamRunner
	Committer    MessageCommitter
	Quota        QuotaChecker
	Tracker      analytics.Tracker
	Chats        ChatStore
	Messages     *memory.MessageStore
	Sessions     *memory.SessionStore
	Streams      *memory.StreamStates
	Logger       logger.ILogger
}

func NewChatPipeline(d ChatDeps) *ChatPipeline {
	return &ChatPipeline{
		assembler:    d.Assembler,
		orchestrator: d.Orchestrator,
		committer:    d.Committer,
		quota:        d.Quota,
		tracker:      d.Tracker,
		chats:        d.Chats,
		messages:     d.Messages,
		sessions:     d.Sessions,
		streams:      d.Streams,
		logger:       d.Logger,
		now:          time.Now,
	}
}

// ChatTurn is an accepted submission whose placeholder is already visible.
type ChatTurn struct {
	p         *ChatPipeline
	in        ChatInput
	history   []store.Message
	groupID   uuid.UUID
	messageID uuid.UUID
	createdAt time.Time
	key       string
}

func (t *ChatTurn) MessageID() string { return t.messageID.String() }

// Begin validates and admits a submission. After it returns nil the caller
// must call Run exactly once.
func (p *ChatPipeline) Begin(ctx context.Context, in ChatInput, analyticsEvent string) (*ChatTurn, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyMessage
	}

	key := memory.ChatStreamKey(in.SessionID)
	if p.streams.Get(key).IsGenerating {
		return nil, ErrGenerationInProgress
	}

	history := p.messages.List(in.SessionID)
	if err := p.quota.Check(ctx, in.UserID, len(history)); err != nil {
		return nil, err
	}

	p.tracker.Track(ctx, analytics.Event{Name: analyticsEvent, DistinctID: in.UserID})

	if !p.streams.TryBegin(key, in.UserID, "") {
		return nil, ErrGenerationInProgress
	}

	groupID, err := p.chats.GetOrCreateChatGroup(ctx, in.UserID, in.SessionID)
	if err != nil {
		p.streams.Reset(key)
		return nil, err
	}

	userMsg := store.Message{
		ID:        uuid.NewString(),
		Content:   in.Content,
		IsUser:    true,
		Timestamp: p.now(),
	}
	p.messages.Append(in.SessionID, in.UserID, userMsg)

	if err := p.chats.UpsertChatMessage(ctx, &entity.ChatMessage{
		Id:        uuid.MustParse(userMsg.ID),
		GroupId:   groupID,
		Role:      entity.ChatRoleUser,
		Content:   strings.TrimSpace(userMsg.Content),
		CreatedAt: userMsg.Timestamp,
	}); err != nil {
		p.logger.Error("CHAT", "Failed to persist user message", map[string]interface{}{
			"session_id": in.SessionID,
			"error":      err.Error(),
		})
	}

	turn := &ChatTurn{
		p:         p,
		in:        in,
		history:   history,
		groupID:   groupID,
		messageID: uuid.New(),
		createdAt: p.now(),
		key:       key,
	}
	p.messages.Append(in.SessionID, in.UserID, store.Message{
		ID:        turn.MessageID(),
		Content:   constant.ChatPlaceholderContent,
		Timestamp: turn.createdAt,
	})
	p.streams.SetMessageID(key, turn.MessageID())

	return turn, nil
}

// Run assembles the prompt, streams into the placeholder and commits the result.
// The guard is released on every path.
func (t *ChatTurn) Run(ctx context.Context) commit.Outcome {
	p := t.p
	defer p.streams.Reset(t.key)

	ctx, span := tracer.Start(ctx, "chat.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", t.in.SessionID),
		attribute.Int("chat.history", len(t.history)),
		attribute.Int("chat.mentions", len(t.in.Mentions)),
	)

	var res stream.Result
	turns, err := p.assembler.Assemble(ctx, assembler.Input{
		SessionID:   t.in.SessionID,
		UserID:      t.in.UserID,
		History:     t.history,
		UserMessage: t.in.Content,
		Mentions:    t.in.Mentions,
	})
	if err == nil {
		res, err = p.orchestrator.Run(ctx, stream.Request{
			Turns: turns,
			OnChunk: func(acc string) {
				p.streams.Update(t.key, acc)
				p.messages.Replace(t.in.SessionID, t.MessageID(), func(m *store.Message) {
					m.Content = acc
					m.Parts = markup.ParseBlocks(acc)
				})
			},
		})
	}

	// The turn is committed even when ctx ended; a chat reply is never left as a placeholder.
	out := p.committer.CommitMessage(context.WithoutCancel(ctx), commit.Turn{
		MessageID: t.messageID,
		GroupID:   t.groupID,
		SessionID: t.in.SessionID,
		UserID:    t.in.UserID,
		CreatedAt: t.createdAt,
		Text:      res.Final,
	}, err)

	p.messages.Replace(t.in.SessionID, t.MessageID(), func(m *store.Message) {
		m.Content = out.Content
		m.Parts = markup.ParseBlocks(out.Content)
	})
	return out
}

// Process submits a chat message and blocks until the reply is committed.
func (p *ChatPipeline) Process(ctx context.Context, in ChatInput) (commit.Outcome, error) {
	return p.process(ctx, in, constant.AnalyticsChatMessageSent)
}

// QuickAction submits a canned prompt chosen from the chat panel.
func (p *ChatPipeline) QuickAction(ctx context.Context, in ChatInput) (commit.Outcome, error) {
	return p.process(ctx, in, constant.AnalyticsChatQuickActionSent)
}

func (p *ChatPipeline) process(ctx context.Context, in ChatInput, event string) (commit.Outcome, error) {
	turn, err := p.Begin(ctx, in, event)
	if err != nil {
		return commit.Outcome{}, err
	}
	return turn.Run(ctx), nil
}

// ApplyMarkdown replaces the enhanced note with a chat reply rendered as HTML.
func (p *ChatPipeline) ApplyMarkdown(ctx context.Context, sessionID, markdown string) error {
	html, err := markup.ToHTML(markdown)
	if err != nil {
		return err
	}
	if _, ok := p.sessions.Update(sessionID, func(s *entity.Session) {
		s.EnhancedMemoHtml = html
	}); !ok {
		return ErrSessionNotOpen
	}
	p.sessions.MarkDirty(sessionID)
	return nil
}
