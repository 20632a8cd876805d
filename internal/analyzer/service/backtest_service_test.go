package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-selector/internal/entity"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBacktestFixture(recs []entity.Recommendation, prices map[string]*float64, tickers ...*entity.Ticker) BacktestService {
	recRepo := &fakeRecommendationRepo{}
	for i := range recs {
		rec := recs[i]
		_ = recRepo.Create(context.Background(), &rec)
	}
	return NewBacktestService(
		logger.NewNop(),
		&fakeMarketData{prices: prices},
		newFakeTickersRepo(tickers...),
		recRepo,
	)
}

func price(v float64) *float64 { return &v }

func TestBacktest_CorrectBuyAtThirtyDays(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -60)
	target30 := utils.FormatDate(created.AddDate(0, 0, 30))

	svc := newBacktestFixture(
		[]entity.Recommendation{{
			Symbol:         "AAPL",
			Recommendation: entity.RecommendationBuy,
			OverallScore:   5.0,
			PriceAtRec:     price(100.0),
			CreatedAt:      created,
		}},
		map[string]*float64{target30: price(110.0)},
		testTicker(),
	)

	summary, err := svc.Run(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	result := summary.Results[0]
	outcome, ok := result.Outcomes[30]
	require.True(t, ok)
	assert.Equal(t, 110.0, outcome.PriceThen)
	assert.Equal(t, 10.0, outcome.PctChange)
	assert.True(t, outcome.Correct)

	// 90 and 180 day horizons have no price data, so they are absent.
	_, ok = result.Outcomes[90]
	assert.False(t, ok)
	_, ok = result.Outcomes[180]
	assert.False(t, ok)

	assert.Equal(t, 1, summary.HitRates[30].Total)
	assert.Equal(t, 1, summary.HitRates[30].Correct)
	assert.Equal(t, 100.0, summary.HitRates[30].Rate)
	assert.Equal(t, 0, summary.HitRates[90].Total)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Correct)
}

func TestBacktest_TooRecentRecommendationHasNoOutcomes(t *testing.T) {
	svc := newBacktestFixture(
		[]entity.Recommendation{{
			Symbol:         "AAPL",
			Recommendation: entity.RecommendationBuy,
			PriceAtRec:     price(100.0),
			CreatedAt:      time.Now().UTC(),
		}},
		map[string]*float64{},
		testTicker(),
	)

	summary, err := svc.Run(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Empty(t, summary.Results[0].Outcomes)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 0, summary.Correct)
}

func TestBacktest_MissingEntryPriceSkipsRecommendation(t *testing.T) {
	svc := newBacktestFixture(
		[]entity.Recommendation{{
			Symbol:         "AAPL",
			Recommendation: entity.RecommendationBuy,
			PriceAtRec:     nil,
			CreatedAt:      time.Now().UTC().AddDate(0, 0, -90),
		}},
		map[string]*float64{},
		testTicker(),
	)

	summary, err := svc.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Equal(t, 0, summary.Total)
}

func TestBacktest_HoldBand(t *testing.T) {
	assert.True(t, isCorrectCall(entity.RecommendationHold, 4.9))
	assert.True(t, isCorrectCall(entity.RecommendationHold, -5.0))
	assert.False(t, isCorrectCall(entity.RecommendationHold, 5.01))
	assert.False(t, isCorrectCall(entity.RecommendationHold, -7.3))
}

func TestBacktest_BuySellDirection(t *testing.T) {
	assert.True(t, isCorrectCall(entity.RecommendationBuy, 0.01))
	assert.False(t, isCorrectCall(entity.RecommendationBuy, 0.0))
	assert.False(t, isCorrectCall(entity.RecommendationBuy, -1.0))
	assert.True(t, isCorrectCall(entity.RecommendationSell, -0.01))
	assert.False(t, isCorrectCall(entity.RecommendationSell, 0.0))
}

func TestBacktest_AnyHorizonCorrectCountsOnce(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -200)
	target30 := utils.FormatDate(created.AddDate(0, 0, 30))
	target90 := utils.FormatDate(created.AddDate(0, 0, 90))
	target180 := utils.FormatDate(created.AddDate(0, 0, 180))

	svc := newBacktestFixture(
		[]entity.Recommendation{{
			Symbol:         "AAPL",
			Recommendation: entity.RecommendationBuy,
			PriceAtRec:     price(100.0),
			CreatedAt:      created,
		}},
		map[string]*float64{
			target30:  price(95.0),  // wrong
			target90:  price(108.0), // correct
			target180: price(90.0),  // wrong
		},
		testTicker(),
	)

	summary, err := svc.Run(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Len(t, summary.Results[0].Outcomes, 3)
	assert.Equal(t, 1, summary.Correct)
	assert.Equal(t, 0.0, summary.HitRates[30].Rate)
	assert.Equal(t, 100.0, summary.HitRates[90].Rate)
	assert.Equal(t, 0.0, summary.HitRates[180].Rate)
}

func TestBacktest_UnknownTickerFallsBackToSymbol(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -40)
	target30 := utils.FormatDate(created.AddDate(0, 0, 30))

	// No ticker row for the symbol: the evaluator falls back to the raw
	// symbol for name and price lookup.
	svc := newBacktestFixture(
		[]entity.Recommendation{{
			Symbol:         "GONE",
			Recommendation: entity.RecommendationSell,
			PriceAtRec:     price(50.0),
			CreatedAt:      created,
		}},
		map[string]*float64{target30: price(45.0)},
	)

	summary, err := svc.Run(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "GONE", summary.Results[0].Name)
	assert.True(t, summary.Results[0].Outcomes[30].Correct)
}

func TestBacktest_SymbolFilter(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -40)
	svc := newBacktestFixture(
		[]entity.Recommendation{
			{Symbol: "AAPL", Recommendation: entity.RecommendationBuy, PriceAtRec: price(100.0), CreatedAt: created},
			{Symbol: "MSFT", Recommendation: entity.RecommendationBuy, PriceAtRec: price(200.0), CreatedAt: created},
		},
		map[string]*float64{},
		testTicker(),
	)

	summary, err := svc.Run(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "AAPL", summary.Results[0].Symbol)
}
