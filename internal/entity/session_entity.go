package entity

import (
	"time"

	"github.com/google/uuid"
)

// Word is one transcribed word of a recording.
type Word struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// Session is a single meeting note: user memo, AI memo, transcript.
type Session struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	Title              string
	RawMemoHtml        string
	EnhancedMemoHtml   string
	PreMeetingMemoHtml string
	Words              []Word
	CalendarEventId    *uuid.UUID
	VisitedAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	DeletedAt          *time.Time
	IsDeleted          bool
}

// Clone returns a deep copy safe to hand out of a shared store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Words != nil {
		c.Words = append([]Word(nil), s.Words...)
	}
	if s.CalendarEventId != nil {
		id := *s.CalendarEventId
		c.CalendarEventId = &id
	}
	if s.VisitedAt != nil {
		t := *s.VisitedAt
		c.VisitedAt = &t
	}
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}
