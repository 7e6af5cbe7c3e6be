package contract

import (
	"context"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	// Upsert inserts or overwrites by id. Streaming replies land here twice at most.
	Upsert(ctx context.Context, message *entity.ChatMessage) error
	DeleteByGroupId(ctx context.Context, groupId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
