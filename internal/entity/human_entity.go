package entity

import (
	"time"

	"github.com/google/uuid"
)

type Human struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	FullName         string
	Email            string
	JobTitle         string
	LinkedinUsername string
	CreatedAt        time.Time
}

type SessionParticipant struct {
	SessionId uuid.UUID
	HumanId   uuid.UUID
}
