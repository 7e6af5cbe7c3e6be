package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-meetnotes/internal/cache"
	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/internal/repository/specification"
	"ai-meetnotes/internal/repository/unitofwork"
	"ai-meetnotes/pkg/markup"

	"github.com/google/uuid"
)

const (
	sessionListLimit = 50
	excerptLength    = 120
)

type ISessionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Open(ctx context.Context, userId, sessionId uuid.UUID) (*dto.OpenSessionResponse, error)
	UpdateNote(ctx context.Context, userId, sessionId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.SessionResponse, error)
	Leave(ctx context.Context, userId, sessionId uuid.UUID) (*dto.LeaveSessionResponse, error)
	List(ctx context.Context, userId uuid.UUID, query string) (*dto.ListSessionsResponse, error)
	SetOngoing(ctx context.Context, userId uuid.UUID, req *dto.SetOngoingRequest) (*dto.OngoingResponse, error)
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	data       *DataStore
	sessions   *memory.SessionStore
	messages   *memory.MessageStore
	ongoing    *memory.OngoingSession
	publisher  IPublisherService
	listCache  cache.SessionListCache
	logger     logger.ILogger
	now        func() time.Time
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	data *DataStore,
	sessions *memory.SessionStore,
	messages *memory.MessageStore,
	ongoing *memory.OngoingSession,
	publisher IPublisherService,
	listCache cache.SessionListCache,
	logger logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		data:       data,
		sessions:   sessions,
		messages:   messages,
		ongoing:    ongoing,
		publisher:  publisher,
		listCache:  listCache,
		logger:     logger,
		now:        time.Now,
	}
}

// ShouldDelete reports whether a session left behind is an abandoned draft.
func ShouldDelete(s *entity.Session, conversations int64, isOngoing bool) bool {
	if s == nil {
		return false
	}
	return s.Title == "" &&
		markup.IsEmptyHTML(s.RawMemoHtml) &&
		markup.IsEmptyHTML(s.EnhancedMemoHtml) &&
		conversations == 0 &&
		!isOngoing
}

func (s *sessionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session := entity.Session{
		Id:              uuid.New(),
		UserId:          userId,
		Title:           req.Title,
		RawMemoHtml:     req.RawMemoHtml,
		CalendarEventId: req.CalendarEventId,
		CreatedAt:       s.now(),
	}
	if err := uow.SessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userId)
	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

// Open records the visit and loads the session and its conversation into the UI stores.
// A copy already in the store wins over the database row: it may hold unsaved edits.
func (s *sessionService) Open(ctx context.Context, userId, sessionId uuid.UUID) (*dto.OpenSessionResponse, error) {
	session, err := s.data.OwnedSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	visitedAt := s.now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().MarkVisited(ctx, sessionId, visitedAt); err != nil {
		s.logger.Warn("SESSION", "Failed to record visit", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}

	key := sessionId.String()
	if cached, ok := s.sessions.Update(key, func(c *entity.Session) { c.VisitedAt = &visitedAt }); ok {
		session = cached
	} else {
		session.VisitedAt = &visitedAt
		s.sessions.Insert(session)
	}

	messages := s.messages.List(key)
	if len(messages) == 0 {
		loaded, err := s.data.LoadMessages(ctx, userId.String(), key)
		if err != nil {
			return nil, err
		}
		if len(loaded) > 0 {
			s.messages.Reset(key, userId.String(), loaded)
		}
		messages = loaded
	}

	return &dto.OpenSessionResponse{
		Session:  toSessionResponse(session),
		Messages: messages,
		Ongoing:  s.ongoing.Is(userId.String(), key),
	}, nil
}

// UpdateNote applies an editor change to the open copy and persists it.
func (s *sessionService) UpdateNote(ctx context.Context, userId, sessionId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.SessionResponse, error) {
	key := sessionId.String()
	if err := s.ensureOpen(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	now := s.now()
	updated, ok := s.sessions.Update(key, func(c *entity.Session) {
		switch req.Field {
		case dto.NoteFieldRaw:
			c.RawMemoHtml = req.Content
		case dto.NoteFieldEnhanced:
			c.EnhancedMemoHtml = req.Content
		case dto.NoteFieldTitle:
			c.Title = req.Content
		}
		c.UpdatedAt = &now
	})
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.sessions.MarkDirty(key)

	if err := s.persist(ctx, updated); err != nil {
		return nil, err
	}
	res := toSessionResponse(updated)
	return &res, nil
}

// Leave runs when the user navigates away from a session. Abandoned empty
// drafts are deleted; anything else is flushed if it has unsaved changes.
func (s *sessionService) Leave(ctx context.Context, userId, sessionId uuid.UUID) (*dto.LeaveSessionResponse, error) {
	key := sessionId.String()
	session, ok := s.sessions.Get(key)
	if !ok {
		var err error
		session, err = s.data.OwnedSession(ctx, userId, sessionId)
		if err != nil {
			return nil, err
		}
	}
	if session.UserId != userId {
		return nil, ErrSessionNotFound
	}

	conversations, err := s.data.CountConversations(ctx, key)
	if err != nil {
		return nil, err
	}

	if !ShouldDelete(session, conversations, s.ongoing.Is(userId.String(), key)) {
		if s.sessions.IsDirty(key) {
			if err := s.persist(ctx, session); err != nil {
				return nil, err
			}
		}
		return &dto.LeaveSessionResponse{Deleted: false}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatGroupRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return nil, err
	}
	if err := uow.SessionRepository().Delete(ctx, sessionId); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.sessions.Delete(key)
	s.messages.Delete(key)
	s.invalidate(ctx, userId)

	s.logger.Info("SESSION", "Deleted empty session", map[string]interface{}{
		"session_id": key,
		"user_id":    userId.String(),
	})
	return &dto.LeaveSessionResponse{Deleted: true}, nil
}

func (s *sessionService) List(ctx context.Context, userId uuid.UUID, query string) (*dto.ListSessionsResponse, error) {
	if payload, ok, err := s.listCache.Get(ctx, userId.String(), query); err == nil && ok {
		var cached dto.ListSessionsResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	} else if err != nil {
		s.logger.Warn("SESSION", "Session list cache read failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.SessionSearchQuery{Query: query},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: sessionListLimit},
	)
	if err != nil {
		return nil, err
	}

	res := dto.ListSessionsResponse{Sessions: make([]dto.SessionListItem, 0, len(sessions))}
	for _, session := range sessions {
		res.Sessions = append(res.Sessions, toSessionListItem(session))
	}

	if payload, err := json.Marshal(res); err == nil {
		if err := s.listCache.Set(ctx, userId.String(), query, payload); err != nil {
			s.logger.Warn("SESSION", "Session list cache write failed", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		}
	}
	return &res, nil
}

// SetOngoing marks the session being recorded; an empty id clears it.
func (s *sessionService) SetOngoing(ctx context.Context, userId uuid.UUID, req *dto.SetOngoingRequest) (*dto.OngoingResponse, error) {
	if req.SessionId != "" {
		sessionId, err := uuid.Parse(req.SessionId)
		if err != nil {
			return nil, ErrSessionNotFound
		}
		if _, err := s.data.OwnedSession(ctx, userId, sessionId); err != nil {
			return nil, err
		}
	}
	s.ongoing.Set(userId.String(), req.SessionId)
	return &dto.OngoingResponse{SessionId: s.ongoing.Get(userId.String())}, nil
}

func (s *sessionService) ensureOpen(ctx context.Context, userId, sessionId uuid.UUID) error {
	if cached, ok := s.sessions.Get(sessionId.String()); ok {
		if cached.UserId != userId {
			return ErrSessionNotFound
		}
		return nil
	}
	session, err := s.data.OwnedSession(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	s.sessions.Insert(session)
	return nil
}

func (s *sessionService) persist(ctx context.Context, session *entity.Session) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return err
	}
	s.sessions.ClearDirty(session.Id.String())
	s.invalidate(ctx, session.UserId)
	return nil
}

func (s *sessionService) invalidate(ctx context.Context, userId uuid.UUID) {
	if err := s.publisher.InvalidateSessionList(ctx, userId.String()); err != nil {
		s.logger.Warn("SESSION", "Failed to publish list invalidation", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
}

func toSessionResponse(s *entity.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Id:                 s.Id,
		Title:              s.Title,
		RawMemoHtml:        s.RawMemoHtml,
		EnhancedMemoHtml:   s.EnhancedMemoHtml,
		PreMeetingMemoHtml: s.PreMeetingMemoHtml,
		CalendarEventId:    s.CalendarEventId,
		VisitedAt:          s.VisitedAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func toSessionListItem(s *entity.Session) dto.SessionListItem {
	body := s.EnhancedMemoHtml
	if markup.IsEmptyHTML(body) {
		body = s.RawMemoHtml
	}
	return dto.SessionListItem{
		Id:        s.Id,
		Title:     s.Title,
		Excerpt:   markup.Truncate(markup.PlainText(body), excerptLength),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		VisitedAt: s.VisitedAt,
	}
}
