package model

import (
	"time"

	"github.com/google/uuid"
)

type Human struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName         string    `gorm:"type:varchar(255)"`
	Email            string    `gorm:"type:varchar(255);index"`
	JobTitle         string    `gorm:"type:varchar(255)"`
	LinkedinUsername string    `gorm:"type:varchar(255)"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (Human) TableName() string {
	return "humans"
}

type SessionParticipant struct {
	SessionId uuid.UUID `gorm:"type:uuid;primaryKey"`
	HumanId   uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (SessionParticipant) TableName() string {
	return "session_participants"
}
