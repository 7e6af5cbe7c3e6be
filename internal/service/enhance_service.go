package service

import (
	"context"
	"sync"

	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/pkg/ai/pipeline"

	"github.com/google/uuid"
)

type IEnhanceService interface {
	// Start launches an enhancement detached from the request and returns at once.
	Start(ctx context.Context, userId, sessionId uuid.UUID) (*dto.EnhanceResponse, error)
	Cancel(ctx context.Context, userId, sessionId uuid.UUID) (*dto.CancelEnhanceResponse, error)
	// Wait blocks until every started enhancement has finished.
	Wait()
}

type enhanceService struct {
	enhance  *pipeline.EnhancePipeline
	data     *DataStore
	sessions *memory.SessionStore
	logger   logger.ILogger
	wg       sync.WaitGroup
}

func NewEnhanceService(
	enhance *pipeline.EnhancePipeline,
	data *DataStore,
	sessions *memory.SessionStore,
	logger logger.ILogger,
) IEnhanceService {
	return &enhanceService{
		enhance:  enhance,
		data:     data,
		sessions: sessions,
		logger:   logger,
	}
}

func (e *enhanceService) Start(ctx context.Context, userId, sessionId uuid.UUID) (*dto.EnhanceResponse, error) {
	key := sessionId.String()
	if cached, ok := e.sessions.Get(key); ok {
		if cached.UserId != userId {
			return nil, ErrSessionNotFound
		}
	} else {
		// Chunks are written into the open copy, so there must be one.
		session, err := e.data.OwnedSession(ctx, userId, sessionId)
		if err != nil {
			return nil, err
		}
		e.sessions.Insert(session)
	}

	// Begin registers the run so a Cancel right after this returns reaches it.
	run, err := e.enhance.Begin(context.WithoutCancel(ctx), key, userId.String())
	if err != nil {
		return nil, err
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		out := run.Run()
		e.logger.Info("ENHANCE", "Enhancement finished", map[string]interface{}{
			"session_id": key,
			"persisted":  out.Persisted,
			"cancelled":  out.Cancelled,
		})
	}()

	return &dto.EnhanceResponse{SessionId: key, Status: "started"}, nil
}

func (e *enhanceService) Cancel(ctx context.Context, userId, sessionId uuid.UUID) (*dto.CancelEnhanceResponse, error) {
	if _, err := e.data.OwnedSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}
	return &dto.CancelEnhanceResponse{Cancelled: e.enhance.Cancel(sessionId.String())}, nil
}

func (e *enhanceService) Wait() {
	e.wg.Wait()
}
