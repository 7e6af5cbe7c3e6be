package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Session struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId             uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title              string         `gorm:"type:text"`
	RawMemoHtml        string         `gorm:"type:text"`
	EnhancedMemoHtml   string         `gorm:"type:text"`
	PreMeetingMemoHtml string         `gorm:"type:text"`
	Words              datatypes.JSON `gorm:"default:'[]'"`
	CalendarEventId    *uuid.UUID     `gorm:"type:uuid;index"`
	VisitedAt          *time.Time
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (Session) TableName() string {
	return "sessions"
}
