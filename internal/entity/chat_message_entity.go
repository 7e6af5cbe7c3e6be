package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser      = "User"
	ChatRoleAssistant = "Assistant"
)

type ChatMessage struct {
	Id        uuid.UUID
	GroupId   uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}
