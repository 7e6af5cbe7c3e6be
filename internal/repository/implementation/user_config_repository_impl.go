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

type UserConfigRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserConfigMapper
}

func NewUserConfigRepository(db *gorm.DB) contract.UserConfigRepository {
	return &UserConfigRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserConfigMapper(),
	}
}

// FindByUserId returns (nil, nil) when the user never saved settings.
func (r *UserConfigRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserConfig, error) {
	var m model.UserConfig
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserConfigToEntity(&m), nil
}

func (r *UserConfigRepositoryImpl) Upsert(ctx context.Context, config *entity.UserConfig) error {
	m := r.mapper.UserConfigToModel(config)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_language", "jargons"}),
		}).
		Create(m).Error
}

type LicenseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserConfigMapper
}

func NewLicenseRepository(db *gorm.DB) contract.LicenseRepository {
	return &LicenseRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserConfigMapper(),
	}
}

func (r *LicenseRepositoryImpl) Create(ctx context.Context, license *entity.License) error {
	if license.Id == uuid.Nil {
		license.Id = uuid.New()
	}
	m := r.mapper.LicenseToModel(license)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*license = *r.mapper.LicenseToEntity(m)
	return nil
}

func (r *LicenseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.License, error) {
	var models []*model.License
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.License, len(models))
	for i, m := range models {
		entities[i] = r.mapper.LicenseToEntity(m)
	}
	return entities, nil
}
