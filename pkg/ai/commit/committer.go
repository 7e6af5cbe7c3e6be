// Package commit writes the outcome of a finished generation to the durable
// store exactly once. It never retries.
package commit

import (
	"context"
	"errors"
	"strings"
	"time"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/ai/stream"

	"github.com/google/uuid"
)

type MessageWriter interface {
	UpsertChatMessage(ctx context.Context, msg *entity.ChatMessage) error
}

type SessionWriter interface {
	SaveEnhancedNote(ctx context.Context, sessionID, html string) error
}

type DirtyMarker interface {
	MarkDirty(sessionID string)
}

type Invalidator interface {
	InvalidateSessionList(ctx context.Context, userID string) error
}

// Turn identifies the assistant message a chat generation produced.
type Turn struct {
	MessageID uuid.UUID
	GroupID   uuid.UUID
	SessionID string
	UserID    string
	CreatedAt time.Time
	Text      string
}

// Outcome reports what was written. Err is set when the generation or the
// write failed; Persisted tells which.
type Outcome struct {
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content"`
	Persisted bool   `json:"persisted"`
	Fallback  bool   `json:"fallback"`
	Cancelled bool   `json:"cancelled"`
	Err       error  `json:"-"`
}

type Committer struct {
	messages    MessageWriter
	sessions    SessionWriter
	dirty       DirtyMarker
	invalidator Invalidator
	logger      logger.ILogger
}

func NewCommitter(messages MessageWriter, sessions SessionWriter, dirty DirtyMarker, invalidator Invalidator, logger logger.ILogger) *Committer {
	return &Committer{
		messages:    messages,
		sessions:    sessions,
		dirty:       dirty,
		invalidator: invalidator,
		logger:      logger,
	}
}

// CommitMessage persists the trimmed reply, or the fallback text under the
// same id when genErr is set.
func (c *Committer) CommitMessage(ctx context.Context, turn Turn, genErr error) Outcome {
	out := Outcome{
		MessageID: turn.MessageID.String(),
		Content:   strings.TrimSpace(turn.Text),
	}
	if genErr != nil {
		c.logger.Error("COMMIT", "Generation failed, storing fallback", map[string]interface{}{
			"message_id": out.MessageID,
			"session_id": turn.SessionID,
			"error":      genErr.Error(),
		})
		out.Content = constant.ChatFallbackContent
		out.Fallback = true
		out.Err = genErr
	}

	err := c.messages.UpsertChatMessage(ctx, &entity.ChatMessage{
		Id:        turn.MessageID,
		GroupId:   turn.GroupID,
		Role:      entity.ChatRoleAssistant,
		Content:   out.Content,
		CreatedAt: turn.CreatedAt,
	})
	if err != nil {
		c.logger.Error("COMMIT", "Failed to persist assistant message", map[string]interface{}{
			"message_id": out.MessageID,
			"error":      err.Error(),
		})
		out.Err = errors.Join(out.Err, err)
		return out
	}
	out.Persisted = true

	c.dirty.MarkDirty(turn.SessionID)
	c.invalidate(ctx, turn.UserID)
	return out
}

// CommitEnhancement stores the final HTML. Nothing is written when genErr is set.
func (c *Committer) CommitEnhancement(ctx context.Context, sessionID, userID, html string, genErr error) Outcome {
	out := Outcome{Content: html}
	if genErr != nil {
		out.Err = genErr
		out.Cancelled = errors.Is(genErr, stream.ErrStreamCancelled)
		if !out.Cancelled {
			c.logger.Error("COMMIT", "Enhancement failed", map[string]interface{}{
				"session_id": sessionID,
				"error":      genErr.Error(),
			})
		}
		return out
	}

	if err := c.sessions.SaveEnhancedNote(ctx, sessionID, html); err != nil {
		c.logger.Error("COMMIT", "Failed to persist enhanced note", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		out.Err = err
		return out
	}
	out.Persisted = true

	c.invalidate(ctx, userID)
	return out
}

func (c *Committer) invalidate(ctx context.Context, userID string) {
	if c.invalidator == nil {
		return
	}
	if err := c.invalidator.InvalidateSessionList(ctx, userID); err != nil {
		c.logger.Warn("COMMIT", "Failed to invalidate session list cache", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
