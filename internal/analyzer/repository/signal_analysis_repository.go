package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang-stock-selector/internal/entity"

	"gorm.io/gorm"
)

type SignalAnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.SignalAnalysis) error
	// GetCached returns the most recent analysis matching (symbol, category,
	// inputHash) created within maxAge, or nil when there is no fresh match.
	GetCached(ctx context.Context, symbol string, category entity.SignalCategory, inputHash string, maxAge time.Duration) (*entity.SignalAnalysis, error)
	GetLatest(ctx context.Context, symbol string) ([]entity.SignalAnalysis, error)
}

type signalAnalysisRepository struct {
	db *gorm.DB
}

func NewSignalAnalysisRepository(db *gorm.DB) SignalAnalysisRepository {
	return &signalAnalysisRepository{db: db}
}

func (r *signalAnalysisRepository) Create(ctx context.Context, analysis *entity.SignalAnalysis) error {
	analysis.Symbol = strings.ToUpper(analysis.Symbol)
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *signalAnalysisRepository) GetCached(ctx context.Context, symbol string, category entity.SignalCategory, inputHash string, maxAge time.Duration) (*entity.SignalAnalysis, error) {
	var analysis entity.SignalAnalysis
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND category = ? AND input_hash = ? AND created_at > ?",
			strings.ToUpper(symbol), category, inputHash, time.Now().Add(-maxAge)).
		Order("created_at DESC").
		First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetLatest returns the analyses belonging to the most recent run for a
// symbol: one row per category, newest first within each category.
func (r *signalAnalysisRepository) GetLatest(ctx context.Context, symbol string) ([]entity.SignalAnalysis, error) {
	var analyses []entity.SignalAnalysis
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (category) *
		     FROM signal_analyses
		     WHERE symbol = ?
		     ORDER BY category, created_at DESC`, strings.ToUpper(symbol)).
		Scan(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}
