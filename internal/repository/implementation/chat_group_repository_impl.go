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

type ChatGroupRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatGroupRepository(db *gorm.DB) contract.ChatGroupRepository {
	return &ChatGroupRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatGroupRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatGroupRepositoryImpl) Create(ctx context.Context, group *entity.ChatGroup) error {
	if group.Id == uuid.Nil {
		group.Id = uuid.New()
	}
	m := r.mapper.ChatGroupToModel(group)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*group = *r.mapper.ChatGroupToEntity(m)
	return nil
}

func (r *ChatGroupRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	subQuery := r.db.Model(&model.ChatGroup{}).Select("id").Where("session_id = ?", sessionId)
	if err := r.db.WithContext(ctx).Where("group_id IN (?)", subQuery).Delete(&model.ChatMessage{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ChatGroup{}).Error
}

func (r *ChatGroupRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatGroup, error) {
	var m model.ChatGroup
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatGroupToEntity(&m), nil
}

func (r *ChatGroupRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatGroup, error) {
	var models []*model.ChatGroup
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatGroup, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatGroupToEntity(m)
	}
	return entities, nil
}

func (r *ChatGroupRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatGroup{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
