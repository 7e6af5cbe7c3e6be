package unitofwork

import (
	"context"
	"fmt"

	"ai-meetnotes/internal/repository/contract"
	"ai-meetnotes/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback is a no-op after Commit so it can always be deferred.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) SessionRepository() contract.SessionRepository {
	return implementation.NewSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) HumanRepository() contract.HumanRepository {
	return implementation.NewHumanRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CalendarEventRepository() contract.CalendarEventRepository {
	return implementation.NewCalendarEventRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChatGroupRepository() contract.ChatGroupRepository {
	return implementation.NewChatGroupRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChatMessageRepository() contract.ChatMessageRepository {
	return implementation.NewChatMessageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UserConfigRepository() contract.UserConfigRepository {
	return implementation.NewUserConfigRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LicenseRepository() contract.LicenseRepository {
	return implementation.NewLicenseRepository(u.getDB())
}
