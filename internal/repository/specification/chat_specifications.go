package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByGroupID struct {
	GroupID uuid.UUID
}

func (s ByGroupID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("group_id = ?", s.GroupID)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}
