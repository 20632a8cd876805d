package repository

import (
	"context"
	"errors"
	"strings"

	"golang-stock-selector/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTickerNotFound is returned when a symbol is not tracked.
var ErrTickerNotFound = errors.New("ticker not found")

type TickersRepository interface {
	Create(ctx context.Context, ticker *entity.Ticker) error
	Get(ctx context.Context, symbol string) (*entity.Ticker, error)
	List(ctx context.Context) ([]entity.Ticker, error)
	UpdateResolution(ctx context.Context, symbol, resolvedSymbol, market string) error
	Delete(ctx context.Context, symbol string) error
}

type tickersRepository struct {
	db *gorm.DB
}

func NewTickersRepository(db *gorm.DB) TickersRepository {
	return &tickersRepository{db: db}
}

func (r *tickersRepository) Create(ctx context.Context, ticker *entity.Ticker) error {
	ticker.Symbol = strings.ToUpper(ticker.Symbol)
	if ticker.Market == "" {
		ticker.Market = entity.MarketUS
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "symbol"}}, DoNothing: true}).
		Create(ticker).Error
}

func (r *tickersRepository) Get(ctx context.Context, symbol string) (*entity.Ticker, error) {
	var ticker entity.Ticker
	err := r.db.WithContext(ctx).
		Where("symbol = ?", strings.ToUpper(symbol)).
		First(&ticker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTickerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticker, nil
}

func (r *tickersRepository) List(ctx context.Context) ([]entity.Ticker, error) {
	var tickers []entity.Ticker
	if err := r.db.WithContext(ctx).Order("symbol").Find(&tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

func (r *tickersRepository) UpdateResolution(ctx context.Context, symbol, resolvedSymbol, market string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Ticker{}).
		Where("symbol = ?", strings.ToUpper(symbol)).
		Updates(map[string]interface{}{
			"resolved_symbol": resolvedSymbol,
			"market":          market,
		}).Error
}

// Delete removes the ticker and all dependent rows.
func (r *tickersRepository) Delete(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(symbol)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symbol = ?", symbol).Delete(&entity.SignalAnalysis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("symbol = ?", symbol).Delete(&entity.Synthesis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("symbol = ?", symbol).Delete(&entity.Recommendation{}).Error; err != nil {
			return err
		}
		return tx.Where("symbol = ?", symbol).Delete(&entity.Ticker{}).Error
	})
}
