package contract

import (
	"context"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/repository/specification"

	"github.com/google/uuid"
)

type HumanRepository interface {
	Create(ctx context.Context, human *entity.Human) error
	Update(ctx context.Context, human *entity.Human) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Human, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Human, error)

	// Participants
	FindParticipants(ctx context.Context, sessionId uuid.UUID) ([]*entity.Human, error)
	AddParticipant(ctx context.Context, sessionId, humanId uuid.UUID) error
	RemoveParticipant(ctx context.Context, sessionId, humanId uuid.UUID) error
}
