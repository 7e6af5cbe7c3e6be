package specification

import (
	"strings"

	"gorm.io/gorm"
)

func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

// SessionSearchQuery matches title or memo text, case-insensitive.
// LOWER(..) LIKE keeps it portable between postgres and sqlite.
type SessionSearchQuery struct {
	Query string
}

func (s SessionSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	if strings.TrimSpace(s.Query) == "" {
		return db
	}
	pattern := likePattern(s.Query)
	return db.Where(
		"LOWER(title) LIKE ? OR LOWER(raw_memo_html) LIKE ? OR LOWER(enhanced_memo_html) LIKE ?",
		pattern, pattern, pattern,
	)
}

// HumanSearchQuery matches full name or email, case-insensitive.
type HumanSearchQuery struct {
	Query string
}

func (s HumanSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	if strings.TrimSpace(s.Query) == "" {
		return db
	}
	pattern := likePattern(s.Query)
	return db.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
}
