package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatGroup struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatGroup) TableName() string {
	return "chat_groups"
}

type ChatMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
