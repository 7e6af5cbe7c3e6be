package mapper

import (
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/model"
)

type UserConfigMapper struct{}

func NewUserConfigMapper() *UserConfigMapper {
	return &UserConfigMapper{}
}

func (m *UserConfigMapper) UserConfigToEntity(c *model.UserConfig) *entity.UserConfig {
	if c == nil {
		return nil
	}
	return &entity.UserConfig{
		UserId:          c.UserId,
		DisplayLanguage: c.DisplayLanguage,
		Jargons:         []string(c.Jargons),
	}
}

func (m *UserConfigMapper) UserConfigToModel(c *entity.UserConfig) *model.UserConfig {
	if c == nil {
		return nil
	}
	return &model.UserConfig{
		UserId:          c.UserId,
		DisplayLanguage: c.DisplayLanguage,
		Jargons:         c.Jargons,
	}
}

func (m *UserConfigMapper) LicenseToEntity(l *model.License) *entity.License {
	if l == nil {
		return nil
	}
	return &entity.License{
		Id:        l.Id,
		UserId:    l.UserId,
		Key:       l.Key,
		ExpiresAt: l.ExpiresAt,
		RevokedAt: l.RevokedAt,
	}
}

func (m *UserConfigMapper) LicenseToModel(l *entity.License) *model.License {
	if l == nil {
		return nil
	}
	return &model.License{
		Id:        l.Id,
		UserId:    l.UserId,
		Key:       l.Key,
		ExpiresAt: l.ExpiresAt,
		RevokedAt: l.RevokedAt,
	}
}
