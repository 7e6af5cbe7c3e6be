package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-meetnotes/internal/config"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/repository/specification"
	"ai-meetnotes/internal/repository/unitofwork"
	"ai-meetnotes/pkg/markup"
	"ai-meetnotes/pkg/store"

	"github.com/google/uuid"
)

// DataStore answers the pipeline's collaborator queries from the database.
// Malformed ids behave like missing rows.
type DataStore struct {
	uowFactory unitofwork.RepositoryFactory
	connection entity.Connection
	now        func() time.Time
}

func NewDataStore(uowFactory unitofwork.RepositoryFactory, cfg *config.Config) *DataStore {
	return &DataStore{
		uowFactory: uowFactory,
		connection: entity.Connection{
			Type:    cfg.Ai.ConnectionType,
			APIBase: cfg.Ai.BaseURL,
			Model:   cfg.Ai.LLMModel,
		},
		now: time.Now,
	}
}

func (d *DataStore) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	sessionId, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
}

// OwnedSessions loads the given sessions of userID, skipping unknown ids.
func (d *DataStore) OwnedSessions(ctx context.Context, userId uuid.UUID, ids []uuid.UUID) ([]*entity.Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.UserOwnedBy{UserID: userId},
	)
}

// OwnedSession loads a session only if userID owns it.
func (d *DataStore) OwnedSession(ctx context.Context, userId, sessionId uuid.UUID) (*entity.Session, error) {
	uow := d.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (d *DataStore) GetConnection(ctx context.Context) (*entity.Connection, error) {
	if d.connection.Type == "" {
		return nil, errors.New("no model connection configured")
	}
	conn := d.connection
	return &conn, nil
}

func (d *DataStore) ListParticipants(ctx context.Context, sessionID string) ([]*entity.Human, error) {
	sessionId, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.HumanRepository().FindParticipants(ctx, sessionId)
}

func (d *DataStore) GetEvent(ctx context.Context, sessionID string) (*entity.CalendarEvent, error) {
	session, err := d.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.CalendarEventId == nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.CalendarEventRepository().FindOne(ctx, specification.ByID{ID: *session.CalendarEventId})
}

// GetUserSession loads a session of userID. Foreign or malformed ids load nothing.
func (d *DataStore) GetUserSession(ctx context.Context, userID, id string) (*entity.Session, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	sessionId, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
}

// GetUserHuman loads a person from userID's contacts.
func (d *DataStore) GetUserHuman(ctx context.Context, userID, id string) (*entity.Human, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	humanId, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.HumanRepository().FindOne(ctx,
		specification.ByID{ID: humanId},
		specification.UserOwnedBy{UserID: userId},
	)
}

// SearchSessions returns the user's newest sessions matching query.
func (d *DataStore) SearchSessions(ctx context.Context, userID, query string, limit int) ([]*entity.Session, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.SessionSearchQuery{Query: query},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

func (d *DataStore) SearchHumans(ctx context.Context, userID, query string, limit int) ([]*entity.Human, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.HumanRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.HumanSearchQuery{Query: query},
		specification.OrderBy{Field: "full_name"},
		specification.Pagination{Limit: limit},
	)
}

func (d *DataStore) GetUserConfig(ctx context.Context, userID string) (*entity.UserConfig, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.UserConfigRepository().FindByUserId(ctx, userId)
}

// GetOrCreateChatGroup returns the conversation of a session, creating it on first use.
func (d *DataStore) GetOrCreateChatGroup(ctx context.Context, userID, sessionID string) (uuid.UUID, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	sessionId, err := uuid.Parse(sessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session id: %w", err)
	}

	uow := d.uowFactory.NewUnitOfWork(ctx)
	group, err := uow.ChatGroupRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return uuid.Nil, err
	}
	if group != nil {
		return group.Id, nil
	}

	group = &entity.ChatGroup{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: sessionId,
		CreatedAt: d.now(),
	}
	if err := uow.ChatGroupRepository().Create(ctx, group); err != nil {
		return uuid.Nil, err
	}
	return group.Id, nil
}

func (d *DataStore) UpsertChatMessage(ctx context.Context, msg *entity.ChatMessage) error {
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().Upsert(ctx, msg)
}

// SaveEnhancedNote persists only the enhanced memo column of the stored row.
func (d *DataStore) SaveEnhancedNote(ctx context.Context, sessionID, html string) error {
	session, err := d.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	now := d.now()
	session.EnhancedMemoHtml = html
	session.UpdatedAt = &now

	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().Update(ctx, session)
}

func (d *DataStore) HasValidLicense(ctx context.Context, userID string) (bool, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	licenses, err := uow.LicenseRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NotRevoked{},
	)
	if err != nil {
		return false, err
	}
	now := d.now()
	for _, l := range licenses {
		if l.IsValid(now) {
			return true, nil
		}
	}
	return false, nil
}

func (d *DataStore) CountConversations(ctx context.Context, sessionID string) (int64, error) {
	sessionId, err := uuid.Parse(sessionID)
	if err != nil {
		return 0, nil
	}
	uow := d.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatGroupRepository().Count(ctx, specification.BySessionID{SessionID: sessionId})
}

// LoadMessages returns the persisted conversation of a session in creation order.
func (d *DataStore) LoadMessages(ctx context.Context, userID, sessionID string) ([]store.Message, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	sessionId, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, nil
	}

	uow := d.uowFactory.NewUnitOfWork(ctx)
	group, err := uow.ChatGroupRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil || group == nil {
		return nil, err
	}

	rows, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByGroupID{GroupID: group.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	messages := make([]store.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, store.Message{
			ID:        row.Id.String(),
			Content:   row.Content,
			IsUser:    row.Role == entity.ChatRoleUser,
			Timestamp: row.CreatedAt,
			Parts:     markup.ParseBlocks(row.Content),
		})
	}
	return messages, nil
}
