package dto

import (
	"time"

	"ai-meetnotes/pkg/store"

	"github.com/google/uuid"
)

const (
	NoteFieldRaw      = "raw"
	NoteFieldEnhanced = "enhanced"
	NoteFieldTitle    = "title"
)

type CreateSessionRequest struct {
	Title           string     `json:"title" validate:"max=255"`
	RawMemoHtml     string     `json:"raw_memo_html"`
	CalendarEventId *uuid.UUID `json:"calendar_event_id"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type SessionResponse struct {
	Id                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	RawMemoHtml        string     `json:"raw_memo_html"`
	EnhancedMemoHtml   string     `json:"enhanced_memo_html"`
	PreMeetingMemoHtml string     `json:"pre_meeting_memo_html"`
	CalendarEventId    *uuid.UUID `json:"calendar_event_id"`
	VisitedAt          *time.Time `json:"visited_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

// OpenSessionResponse is the editor's initial state.
type OpenSessionResponse struct {
	Session  SessionResponse `json:"session"`
	Messages []store.Message `json:"messages"`
	Ongoing  bool            `json:"ongoing"`
}

type UpdateNoteRequest struct {
	Field   string `json:"field" validate:"required,oneof=raw enhanced title"`
	Content string `json:"content"`
}

type LeaveSessionResponse struct {
	Deleted bool `json:"deleted"`
}

type SessionListItem struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Excerpt   string     `json:"excerpt"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	VisitedAt *time.Time `json:"visited_at"`
}

type ListSessionsResponse struct {
	Sessions []SessionListItem `json:"sessions"`
}

// SessionListInvalidatedMessage travels on the cache invalidation topic.
type SessionListInvalidatedMessage struct {
	UserId string `json:"user_id"`
}

type SetOngoingRequest struct {
	SessionId string `json:"session_id" validate:"omitempty,uuid"`
}

type OngoingResponse struct {
	SessionId string `json:"session_id"`
}
