package contract

import (
	"context"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatGroupRepository interface {
	Create(ctx context.Context, group *entity.ChatGroup) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatGroup, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatGroup, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
