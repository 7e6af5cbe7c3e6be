package commit

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/ai/stream"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	messages    []*entity.ChatMessage
	notes       map[string]string
	dirty       []string
	invalidated []string
	writeErr    error
}

func (r *recorder) UpsertChatMessage(_ context.Context, msg *entity.ChatMessage) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recorder) SaveEnhancedNote(_ context.Context, sessionID, html string) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	if r.notes == nil {
		r.notes = map[string]string{}
	}
	r.notes[sessionID] = html
	return nil
}

func (r *recorder) MarkDirty(sessionID string) { r.dirty = append(r.dirty, sessionID) }

func (r *recorder) InvalidateSessionList(_ context.Context, userID string) error {
	r.invalidated = append(r.invalidated, userID)
	return nil
}

func newCommitter(r *recorder) *Committer {
	return NewCommitter(r, r, r, r, logger.NewNopLogger())
}

func turn(text string) Turn {
	return Turn{
		MessageID: uuid.New(),
		GroupID:   uuid.New(),
		SessionID: "s1",
		UserID:    "u1",
		CreatedAt: time.Now(),
		Text:      text,
	}
}

func TestCommitMessageSuccess(t *testing.T) {
	r := &recorder{}
	tr := turn("  Hello\n")
	out := newCommitter(r).CommitMessage(context.Background(), tr, nil)

	require.NoError(t, out.Err)
	assert.True(t, out.Persisted)
	assert.False(t, out.Fallback)
	assert.Equal(t, "Hello", out.Content)

	require.Len(t, r.messages, 1)
	assert.Equal(t, tr.MessageID, r.messages[0].Id)
	assert.Equal(t, tr.GroupID, r.messages[0].GroupId)
	assert.Equal(t, entity.ChatRoleAssistant, r.messages[0].Role)
	assert.Equal(t, "Hello", r.messages[0].Content)
	assert.Equal(t, []string{"s1"}, r.dirty)
	assert.Equal(t, []string{"u1"}, r.invalidated)
}

func TestCommitMessageFallbackKeepsID(t *testing.T) {
	r := &recorder{}
	tr := turn("Hello")
	out := newCommitter(r).CommitMessage(context.Background(), tr, errors.New("stream broke"))

	assert.True(t, out.Persisted)
	assert.True(t, out.Fallback)
	assert.Error(t, out.Err)
	require.Len(t, r.messages, 1)
	assert.Equal(t, tr.MessageID, r.messages[0].Id)
	assert.Equal(t, constant.ChatFallbackContent, r.messages[0].Content)
}

func TestCommitMessageWriteFailure(t *testing.T) {
	r := &recorder{writeErr: errors.New("disk full")}
	out := newCommitter(r).CommitMessage(context.Background(), turn("x"), nil)

	assert.False(t, out.Persisted)
	assert.ErrorContains(t, out.Err, "disk full")
	assert.Empty(t, r.dirty)
	assert.Empty(t, r.invalidated)
}

func TestCommitEnhancement(t *testing.T) {
	tests := []struct {
		name          string
		genErr        error
		wantPersisted bool
		wantCancelled bool
	}{
		{name: "success", wantPersisted: true},
		{name: "cancelled", genErr: stream.ErrStreamCancelled, wantCancelled: true},
		{name: "failed", genErr: errors.New("model down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			out := newCommitter(r).CommitEnhancement(context.Background(), "s1", "u1", "<p>x</p>", tt.genErr)

			assert.Equal(t, tt.wantPersisted, out.Persisted)
			assert.Equal(t, tt.wantCancelled, out.Cancelled)
			if tt.wantPersisted {
				assert.Equal(t, "<p>x</p>", r.notes["s1"])
				assert.Equal(t, []string{"u1"}, r.invalidated)
			} else {
				assert.Empty(t, r.notes)
				assert.Empty(t, r.invalidated)
			}
		})
	}
}
