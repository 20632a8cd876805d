package repository

import (
	"context"
	"encoding/json"
	"errors"

	"golang-stock-selector/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	// GetScoringWeights returns the stored weight table, or nil when none
	// has been saved yet.
	GetScoringWeights(ctx context.Context) (map[string]float64, error)
	SaveScoringWeights(ctx context.Context, weights map[string]float64) error
	GetActivePreset(ctx context.Context) (string, error)
	SaveActivePreset(ctx context.Context, preset string) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) get(ctx context.Context, key string, out interface{}) (bool, error) {
	var setting entity.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(setting.Value, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *settingsRepository) upsert(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	setting := entity.Setting{Key: key, Value: datatypes.JSON(data)}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}

func (r *settingsRepository) GetScoringWeights(ctx context.Context) (map[string]float64, error) {
	var weights map[string]float64
	found, err := r.get(ctx, entity.SettingScoringWeights, &weights)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return weights, nil
}

func (r *settingsRepository) SaveScoringWeights(ctx context.Context, weights map[string]float64) error {
	return r.upsert(ctx, entity.SettingScoringWeights, weights)
}

func (r *settingsRepository) GetActivePreset(ctx context.Context) (string, error) {
	var preset string
	found, err := r.get(ctx, entity.SettingActivePreset, &preset)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return preset, nil
}

func (r *settingsRepository) SaveActivePreset(ctx context.Context, preset string) error {
	return r.upsert(ctx, entity.SettingActivePreset, preset)
}
