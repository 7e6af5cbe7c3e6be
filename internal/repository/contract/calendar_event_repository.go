package contract

import (
	"context"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/repository/specification"
)

type CalendarEventRepository interface {
	Create(ctx context.Context, event *entity.CalendarEvent) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CalendarEvent, error)
}
