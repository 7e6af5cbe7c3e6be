package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatGroup is one conversation attached to a session.
type ChatGroup struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	SessionId uuid.UUID
	Name      string
	CreatedAt time.Time
}
