package contract

import (
	"context"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/repository/specification"

	"github.com/google/uuid"
)

type UserConfigRepository interface {
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserConfig, error)
	Upsert(ctx context.Context, config *entity.UserConfig) error
}

type LicenseRepository interface {
	Create(ctx context.Context, license *entity.License) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.License, error)
}
