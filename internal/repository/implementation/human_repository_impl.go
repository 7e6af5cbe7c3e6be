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
	"gorm.io/gorm/clause"
)

type HumanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewHumanRepository(db *gorm.DB) contract.HumanRepository {
	return &HumanRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *HumanRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *HumanRepositoryImpl) Create(ctx context.Context, human *entity.Human) error {
	if human.Id == uuid.Nil {
		human.Id = uuid.New()
	}
	m := r.mapper.HumanToModel(human)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*human = *r.mapper.HumanToEntity(m)
	return nil
}

func (r *HumanRepositoryImpl) Update(ctx context.Context, human *entity.Human) error {
	m := r.mapper.HumanToModel(human)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*human = *r.mapper.HumanToEntity(m)
	return nil
}

func (r *HumanRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Human, error) {
	var m model.Human
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.HumanToEntity(&m), nil
}

func (r *HumanRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Human, error) {
	var models []*model.Human
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Human, len(models))
	for i, m := range models {
		entities[i] = r.mapper.HumanToEntity(m)
	}
	return entities, nil
}

func (r *HumanRepositoryImpl) FindParticipants(ctx context.Context, sessionId uuid.UUID) ([]*entity.Human, error) {
	var models []*model.Human
	err := r.db.WithContext(ctx).
		Joins("JOIN session_participants sp ON sp.human_id = humans.id").
		Where("sp.session_id = ?", sessionId).
		Order("humans.full_name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Human, len(models))
	for i, m := range models {
		entities[i] = r.mapper.HumanToEntity(m)
	}
	return entities, nil
}

func (r *HumanRepositoryImpl) AddParticipant(ctx context.Context, sessionId, humanId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SessionParticipant{SessionId: sessionId, HumanId: humanId}).Error
}

func (r *HumanRepositoryImpl) RemoveParticipant(ctx context.Context, sessionId, humanId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND human_id = ?", sessionId, humanId).
		Delete(&model.SessionParticipant{}).Error
}
