package service

import (
	"context"
	"errors"
	"math"
	"time"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/internal/entity"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/utils"
)

// backtestHorizons are the evaluation horizons in days.
var backtestHorizons = []int{30, 90, 180}

// holdBandPct is the band within which a hold call counts as correct.
const holdBandPct = 5.0

// BacktestService evaluates historical recommendations against the price
// movement that followed them.
type BacktestService interface {
	// Run evaluates all recommendations, or only one ticker's when symbol
	// is non-empty.
	Run(ctx context.Context, symbol string) (*dto.BacktestSummary, error)
}

type backtestService struct {
	log            *logger.Logger
	marketData     repository.MarketDataRepository
	tickersRepo    repository.TickersRepository
	recommendation repository.RecommendationRepository
}

func NewBacktestService(
	log *logger.Logger,
	marketData repository.MarketDataRepository,
	tickersRepo repository.TickersRepository,
	recommendation repository.RecommendationRepository,
) BacktestService {
	return &backtestService{
		log:            log,
		marketData:     marketData,
		tickersRepo:    tickersRepo,
		recommendation: recommendation,
	}
}

func (s *backtestService) Run(ctx context.Context, symbol string) (*dto.BacktestSummary, error) {
	recs, err := s.recommendation.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	summary := &dto.BacktestSummary{
		Results:  []dto.BacktestResult{},
		HitRates: map[int]dto.HitRate{},
	}
	for _, h := range backtestHorizons {
		summary.HitRates[h] = dto.HitRate{}
	}

	now := time.Now().UTC()

	for _, rec := range recs {
		// No entry price, nothing to measure against.
		if rec.PriceAtRec == nil {
			continue
		}

		resolved, name := s.resolveRecommendation(ctx, rec.Symbol)
		outcomes := map[int]dto.HorizonOutcome{}

		for _, horizon := range backtestHorizons {
			targetDate := rec.CreatedAt.AddDate(0, 0, horizon)
			if targetDate.After(now) {
				// Not enough time has passed for this horizon.
				continue
			}

			priceThen, err := s.marketData.GetHistoricalPrice(ctx, resolved, utils.FormatDate(targetDate))
			if err != nil {
				s.log.Warn("Historical price lookup failed",
					logger.StringField("symbol", rec.Symbol),
					logger.IntField("horizon_days", horizon),
					logger.ErrorField(err),
				)
				continue
			}
			if priceThen == nil {
				continue
			}

			pctChange := (*priceThen - *rec.PriceAtRec) / *rec.PriceAtRec * 100
			correct := isCorrectCall(rec.Recommendation, pctChange)

			outcomes[horizon] = dto.HorizonOutcome{
				PriceThen: round2(*priceThen),
				PctChange: round2(pctChange),
				Correct:   correct,
			}

			bucket := summary.HitRates[horizon]
			bucket.Total++
			if correct {
				bucket.Correct++
			}
			summary.HitRates[horizon] = bucket
		}

		summary.Results = append(summary.Results, dto.BacktestResult{
			ID:             rec.ID,
			Symbol:         rec.Symbol,
			Name:           name,
			Recommendation: string(rec.Recommendation),
			OverallScore:   rec.OverallScore,
			PriceAtRec:     rec.PriceAtRec,
			CreatedAt:      rec.CreatedAt,
			Outcomes:       outcomes,
		})
	}

	for _, h := range backtestHorizons {
		bucket := summary.HitRates[h]
		if bucket.Total > 0 {
			bucket.Rate = round1(float64(bucket.Correct) / float64(bucket.Total) * 100)
		}
		summary.HitRates[h] = bucket
	}

	summary.Total = len(summary.Results)
	for _, result := range summary.Results {
		for _, outcome := range result.Outcomes {
			if outcome.Correct {
				summary.Correct++
				break
			}
		}
	}

	return summary, nil
}

// resolveRecommendation maps a recommendation back to its ticker's resolved
// symbol and display name. The ticker may have been deleted since.
func (s *backtestService) resolveRecommendation(ctx context.Context, symbol string) (resolved, name string) {
	ticker, err := s.tickersRepo.Get(ctx, symbol)
	if err != nil {
		if !errors.Is(err, repository.ErrTickerNotFound) {
			s.log.Warn("Ticker lookup failed during backtest", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
		return symbol, symbol
	}
	return ticker.EffectiveSymbol(), ticker.Name
}

// isCorrectCall judges a recommendation against realized movement: buy needs
// a gain, sell needs a loss, hold needs the price within the band.
func isCorrectCall(recommendation entity.RecommendationLabel, pctChange float64) bool {
	switch recommendation {
	case entity.RecommendationBuy:
		return pctChange > 0
	case entity.RecommendationSell:
		return pctChange < 0
	default:
		return math.Abs(pctChange) <= holdBandPct
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
