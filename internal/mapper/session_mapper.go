package mapper

import (
	"encoding/json"
	"time"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	// A corrupt transcript column should not hide the rest of the note.
	var words []entity.Word
	if len(s.Words) > 0 {
		_ = json.Unmarshal(s.Words, &words)
	}

	return &entity.Session{
		Id:                 s.Id,
		UserId:             s.UserId,
		Title:              s.Title,
		RawMemoHtml:        s.RawMemoHtml,
		EnhancedMemoHtml:   s.EnhancedMemoHtml,
		PreMeetingMemoHtml: s.PreMeetingMemoHtml,
		Words:              words,
		CalendarEventId:    s.CalendarEventId,
		VisitedAt:          s.VisitedAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
		IsDeleted:          s.DeletedAt.Valid,
	}
}

func (m *SessionMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	words := s.Words
	if words == nil {
		words = []entity.Word{}
	}
	raw, err := json.Marshal(words)
	if err != nil {
		raw = []byte("[]")
	}

	return &model.Session{
		Id:                 s.Id,
		UserId:             s.UserId,
		Title:              s.Title,
		RawMemoHtml:        s.RawMemoHtml,
		EnhancedMemoHtml:   s.EnhancedMemoHtml,
		PreMeetingMemoHtml: s.PreMeetingMemoHtml,
		Words:              datatypes.JSON(raw),
		CalendarEventId:    s.CalendarEventId,
		VisitedAt:          s.VisitedAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
	}
}

func (m *SessionMapper) HumanToEntity(h *model.Human) *entity.Human {
	if h == nil {
		return nil
	}
	return &entity.Human{
		Id:               h.Id,
		UserId:           h.UserId,
		FullName:         h.FullName,
		Email:            h.Email,
		JobTitle:         h.JobTitle,
		LinkedinUsername: h.LinkedinUsername,
		CreatedAt:        h.CreatedAt,
	}
}

func (m *SessionMapper) HumanToModel(h *entity.Human) *model.Human {
	if h == nil {
		return nil
	}
	return &model.Human{
		Id:               h.Id,
		UserId:           h.UserId,
		FullName:         h.FullName,
		Email:            h.Email,
		JobTitle:         h.JobTitle,
		LinkedinUsername: h.LinkedinUsername,
		CreatedAt:        h.CreatedAt,
	}
}

func (m *SessionMapper) CalendarEventToEntity(e *model.CalendarEvent) *entity.CalendarEvent {
	if e == nil {
		return nil
	}
	return &entity.CalendarEvent{
		Id:        e.Id,
		UserId:    e.UserId,
		Name:      e.Name,
		Note:      e.Note,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
	}
}

func (m *SessionMapper) CalendarEventToModel(e *entity.CalendarEvent) *model.CalendarEvent {
	if e == nil {
		return nil
	}
	return &model.CalendarEvent{
		Id:        e.Id,
		UserId:    e.UserId,
		Name:      e.Name,
		Note:      e.Note,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
	}
}
