package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/pkg/ai/assembler"
	"ai-meetnotes/pkg/ai/commit"
	"ai-meetnotes/pkg/ai/stream"
	"ai-meetnotes/pkg/analytics"
	"ai-meetnotes/pkg/llm"
	"ai-meetnotes/pkg/markup"

	"go.opentelemetry.io/otel/attribute"
)

type EnhanceSource interface {
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	GetUserConfig(ctx context.Context, userID string) (*entity.UserConfig, error)
}

type EnhancePipeline struct {
	source       EnhanceSource
	renderer     Renderer
	orchestrator StreamRunner
	committer    EnhancementCommitter
	tracker      analytics.Tracker
	sessions     *memory.SessionStore
	streams      *memory.StreamStates
	logger       logger.ILogger

	activeStreams sync.Map // sessionID -> context.CancelFunc
}

type EnhanceDeps struct {
	Source       EnhanceSource
	Renderer     Renderer
	Orchestrator StreamRunner
	Committer    EnhancementCommitter
	Tracker      analytics.Tracker
	Sessions     *memory.SessionStore
	Streams      *memory.StreamStates
	Logger       logger.ILogger
}

func NewEnhancePipeline(d EnhanceDeps) *EnhancePipeline {
	return &EnhancePipeline{
		source:       d.Source,
		renderer:     d.Renderer,
		orchestrator: d.Orchestrator,
		committer:    d.Committer,
		tracker:      d.Tracker,
		sessions:     d.Sessions,
		streams:      d.Streams,
		logger:       d.Logger,
	}
}

// EnhanceRun is an admitted enhancement. It is already cancellable; Run
// must be called exactly once to stream and release it.
type EnhanceRun struct {
	p         *EnhancePipeline
	ctx       context.Context
	cancel    context.CancelFunc
	sessionID string
	userID    string
}

// Begin admits an enhancement for the session and registers it for Cancel.
func (p *EnhancePipeline) Begin(ctx context.Context, sessionID, userID string) (*EnhanceRun, error) {
	key := memory.EnhanceStreamKey(sessionID)
	if !p.streams.TryBegin(key, userID, "") {
		return nil, ErrGenerationInProgress
	}

	p.tracker.Track(ctx, analytics.Event{
		Name:       constant.AnalyticsEnhanceNoteClicked,
		DistinctID: userID,
		SessionID:  sessionID,
	})

	runCtx, cancel := context.WithCancel(ctx)
	p.activeStreams.Store(sessionID, cancel)
	return &EnhanceRun{p: p, ctx: runCtx, cancel: cancel, sessionID: sessionID, userID: userID}, nil
}

// Enhance rewrites the session's raw note. Every chunk updates the enhanced
// note in the session store; only a completed stream is persisted.
func (p *EnhancePipeline) Enhance(ctx context.Context, sessionID, userID string) (commit.Outcome, error) {
	run, err := p.Begin(ctx, sessionID, userID)
	if err != nil {
		return commit.Outcome{}, err
	}
	return run.Run(), nil
}

func (r *EnhanceRun) Run() commit.Outcome {
	p, sessionID := r.p, r.sessionID
	key := memory.EnhanceStreamKey(sessionID)
	defer p.streams.Reset(key)
	defer func() {
		p.activeStreams.Delete(sessionID)
		r.cancel()
	}()

	ctx, span := tracer.Start(r.ctx, "enhance.Run")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	var res stream.Result
	turns, err := p.buildTurns(ctx, sessionID, r.userID)
	if err == nil {
		res, err = p.orchestrator.Run(ctx, stream.Request{
			Turns: turns,
			OnChunk: func(acc string) {
				p.streams.Update(key, acc)
				html, convErr := markup.ToHTML(acc)
				if convErr != nil {
					return
				}
				p.sessions.Update(sessionID, func(s *entity.Session) {
					s.EnhancedMemoHtml = html
				})
			},
			Transform: markup.ToHTML,
		})
	}

	out := p.committer.CommitEnhancement(context.WithoutCancel(ctx), sessionID, r.userID, res.Final, err)
	if out.Persisted {
		p.sessions.Update(sessionID, func(s *entity.Session) {
			s.EnhancedMemoHtml = out.Content
		})
	}
	return out
}

// Cancel stops an active enhancement. The partial note stays visible and
// nothing is written. It reports whether a run was active.
func (p *EnhancePipeline) Cancel(sessionID string) bool {
	v, ok := p.activeStreams.Load(sessionID)
	if !ok {
		return false
	}
	v.(context.CancelFunc)()
	return true
}

func (p *EnhancePipeline) IsRunning(sessionID string) bool {
	_, ok := p.activeStreams.Load(sessionID)
	return ok
}

func (p *EnhancePipeline) buildTurns(ctx context.Context, sessionID, userID string) ([]llm.Message, error) {
	sess, err := p.source.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh session: %v", assembler.ErrAssembly, err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: session %s not found", assembler.ErrAssembly, sessionID)
	}
	// Unsaved edits in the open editor win over the stored copy.
	if open, ok := p.sessions.Get(sessionID); ok {
		sess.RawMemoHtml = open.RawMemoHtml
	}

	cfg, err := p.source.GetUserConfig(ctx, userID)
	if err != nil {
		p.logger.Warn("ENHANCE", "Failed to load user config, using defaults", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	if cfg == nil {
		cfg = &entity.UserConfig{}
	}
	jargons := cfg.Jargons
	if jargons == nil {
		jargons = []string{}
	}

	system, err := p.renderer.Render(constant.TemplateEnhanceSystem, map[string]any{
		"config": map[string]any{
			"displayLanguage": cfg.DisplayLanguage,
			"jargons":         jargons,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assembler.ErrAssembly, err)
	}

	user, err := p.renderer.Render(constant.TemplateEnhanceUser, map[string]any{
		"editor":   sess.RawMemoHtml,
		"timeline": FormatTimeline(sess.Words),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assembler.ErrAssembly, err)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}, nil
}

// FormatTimeline groups consecutive words of one speaker into a line
// prefixed with the start offset, e.g. "[01:05] Jane: hello there".
func FormatTimeline(words []entity.Word) string {
	var sb strings.Builder
	for i := 0; i < len(words); {
		j := i
		var parts []string
		for j < len(words) && words[j].Speaker == words[i].Speaker {
			parts = append(parts, words[j].Text)
			j++
		}

		secs := words[i].StartMs / 1000
		fmt.Fprintf(&sb, "[%02d:%02d] ", secs/60, secs%60)
		if words[i].Speaker != "" {
			sb.WriteString(words[i].Speaker)
			sb.WriteString(": ")
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("\n")
		i = j
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
