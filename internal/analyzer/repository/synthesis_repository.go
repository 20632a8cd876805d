package repository

import (
	"context"
	"errors"
	"strings"

	"golang-stock-selector/internal/entity"

	"gorm.io/gorm"
)

type SynthesisRepository interface {
	Create(ctx context.Context, synthesis *entity.Synthesis) error
	GetLatest(ctx context.Context, symbol string) (*entity.Synthesis, error)
	GetHistory(ctx context.Context, symbol string, limit int) ([]entity.Synthesis, error)
}

type synthesisRepository struct {
	db *gorm.DB
}

func NewSynthesisRepository(db *gorm.DB) SynthesisRepository {
	return &synthesisRepository{db: db}
}

func (r *synthesisRepository) Create(ctx context.Context, synthesis *entity.Synthesis) error {
	synthesis.Symbol = strings.ToUpper(synthesis.Symbol)
	return r.db.WithContext(ctx).Create(synthesis).Error
}

func (r *synthesisRepository) GetLatest(ctx context.Context, symbol string) (*entity.Synthesis, error) {
	var synthesis entity.Synthesis
	err := r.db.WithContext(ctx).
		Where("symbol = ?", strings.ToUpper(symbol)).
		Order("created_at DESC").
		First(&synthesis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &synthesis, nil
}

func (r *synthesisRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]entity.Synthesis, error) {
	var syntheses []entity.Synthesis
	err := r.db.WithContext(ctx).
		Where("symbol = ?", strings.ToUpper(symbol)).
		Order("created_at DESC").
		Limit(limit).
		Find(&syntheses).Error
	if err != nil {
		return nil, err
	}
	return syntheses, nil
}
