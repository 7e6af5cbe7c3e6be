package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserConfig struct {
	UserId          uuid.UUID
	DisplayLanguage string
	Jargons         []string
}

// License is the paid entitlement. A nil ExpiresAt never expires.
type License struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Key       string
	ExpiresAt *time.Time
	RevokedAt *time.Time
}

func (l *License) IsValid(now time.Time) bool {
	if l == nil || l.Key == "" || l.RevokedAt != nil {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

// Connection is the active model backend as seen by prompts.
type Connection struct {
	Type    string
	APIBase string
	Model   string
}
