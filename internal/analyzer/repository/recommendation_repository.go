package repository

import (
	"context"
	"strings"

	"golang-stock-selector/internal/entity"

	"gorm.io/gorm"
)

type RecommendationRepository interface {
	Create(ctx context.Context, rec *entity.Recommendation) error
	// Get returns historical recommendations, optionally filtered by symbol.
	Get(ctx context.Context, symbol string) ([]entity.Recommendation, error)
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *entity.Recommendation) error {
	rec.Symbol = strings.ToUpper(rec.Symbol)
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recommendationRepository) Get(ctx context.Context, symbol string) ([]entity.Recommendation, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if symbol != "" {
		query = query.Where("symbol = ?", strings.ToUpper(symbol))
	}
	var recs []entity.Recommendation
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
