package unitofwork

import (
	"context"

	"ai-meetnotes/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	HumanRepository() contract.HumanRepository
	CalendarEventRepository() contract.CalendarEventRepository
	ChatGroupRepository() contract.ChatGroupRepository
	ChatMessageRepository() contract.ChatMessageRepository
	UserConfigRepository() contract.UserConfigRepository
	LicenseRepository() contract.LicenseRepository
}
