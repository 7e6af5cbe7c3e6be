package implementation

import (
	"context"
	"errors"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/mapper"
	"ai-meetnotes/internal/model"
	"ai-meetnotes/internal/repository/contract"
	"ai-meetnotes/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CalendarEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewCalendarEventRepository(db *gorm.DB) contract.CalendarEventRepository {
	return &CalendarEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *CalendarEventRepositoryImpl) Create(ctx context.Context, event *entity.CalendarEvent) error {
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	m := r.mapper.CalendarEventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.CalendarEventToEntity(m)
	return nil
}

func (r *CalendarEventRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CalendarEvent, error) {
	var m model.CalendarEvent
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CalendarEventToEntity(&m), nil
}
