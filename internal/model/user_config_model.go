package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserConfig struct {
	UserId          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	DisplayLanguage string                      `gorm:"type:varchar(16);default:'en'"`
	Jargons         datatypes.JSONSlice[string] `gorm:"default:'[]'"`
}

func (UserConfig) TableName() string {
	return "user_configs"
}

type License struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Key       string    `gorm:"type:varchar(255);not null"`
	ExpiresAt *time.Time
	RevokedAt *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (License) TableName() string {
	return "licenses"
}
