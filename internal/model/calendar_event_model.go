package model

import (
	"time"

	"github.com/google/uuid"
)

type CalendarEvent struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:text;not null"`
	Note      string    `gorm:"type:text"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
