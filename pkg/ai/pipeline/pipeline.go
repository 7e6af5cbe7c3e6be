// Package pipeline wires assembler, orchestrator and committer into the two
// user-facing flows: chat replies and note enhancement.
package pipeline

import (
	"context"
	"errors"

	"ai-meetnotes/pkg/ai/assembler"
	"ai-meetnotes/pkg/ai/commit"
	"ai-meetnotes/pkg/ai/stream"
	"ai-meetnotes/pkg/llm"
)

var (
	ErrGenerationInProgress = errors.New("a generation is already running")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrSessionNotOpen       = errors.New("session is not open")
)

type PromptAssembler interface {
	Assemble(ctx context.Context, in assembler.Input) ([]llm.Message, error)
}

type Renderer interface {
	Render(key string, vars map[string]any) (string, error)
}

type StreamRunner interface {
	Run(ctx context.Context, req stream.Request) (stream.Result, error)
}

type MessageCommitter interface {
	CommitMessage(ctx context.Context, turn commit.Turn, genErr error) commit.Outcome
}

type EnhancementCommitter interface {
	CommitEnhancement(ctx context.Context, sessionID, userID, html string, genErr error) commit.Outcome
}

type QuotaChecker interface {
	Check(ctx context.Context, userID string, messageCount int) error
}
