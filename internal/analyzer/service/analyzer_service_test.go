package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/entity"
	"golang-stock-selector/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	ai             *fakeAI
	marketData     *fakeMarketData
	insiderUS      *fakeInsider
	insiderUK      *fakeInsider
	news           *fakeNews
	sector         *fakeSector
	tickers        *fakeTickersRepo
	analyses       *fakeAnalysisRepo
	syntheses      *fakeSynthesisRepo
	recommendation *fakeRecommendationRepo
	settings       *fakeSettingsRepo
	svc            AnalyzerService
}

func newPipelineFixture(tickers ...*entity.Ticker) *pipelineFixture {
	quote := 100.0
	f := &pipelineFixture{
		ai: &fakeAI{
			result: dto.LLMResult{"score": 5.0, "confidence": "high", "narrative": "good"},
			synthesisResult: dto.LLMResult{
				"overall_score":  4.0,
				"recommendation": "buy",
				"narrative":      "synthesis",
			},
		},
		marketData: &fakeMarketData{
			fundamentals: map[string]string{"P/E": "20"},
			technicals:   map[string]string{"RSI (14)": "55"},
			analyst:      map[string]string{"Target Price": "150"},
			news:         []dto.NewsArticle{{Title: "provider news"}},
			quote:        &quote,
		},
		insiderUS: &fakeInsider{data: dto.InsiderData{InsiderTrades: []dto.InsiderTrade{{Date: "2026-08-01", Insider: "CEO", Type: "P - Purchase"}}}},
		insiderUK: &fakeInsider{data: dto.InsiderData{InsiderTrades: []dto.InsiderTrade{}}},
		news:      &fakeNews{data: dto.NewsData{NewsArticles: []dto.NewsArticle{{Title: "headline"}}}},
		sector: &fakeSector{data: dto.SectorData{
			SectorPerformance: []dto.SectorPerformanceRow{{Name: "Technology", Change: "+1.2%"}},
			SectorNews:        []dto.NewsArticle{},
		}},
		tickers:        newFakeTickersRepo(tickers...),
		analyses:       &fakeAnalysisRepo{},
		syntheses:      &fakeSynthesisRepo{},
		recommendation: &fakeRecommendationRepo{},
		settings:       &fakeSettingsRepo{},
	}
	cfg := &config.Config{}
	cfg.Analyzer.CacheFreshness = 24 * time.Hour
	f.svc = NewAnalyzerService(
		cfg, logger.NewNop(),
		f.ai, f.marketData,
		f.insiderUS, f.insiderUK, f.news, f.sector,
		f.tickers, f.analyses, f.syntheses, f.recommendation, f.settings,
		nil,
	)
	return f
}

func testTicker() *entity.Ticker {
	sector := "Technology"
	resolved := "AAPL"
	return &entity.Ticker{
		Symbol:         "AAPL",
		Name:           "Apple Inc.",
		Sector:         &sector,
		Market:         entity.MarketUS,
		ResolvedSymbol: &resolved,
	}
}

func drain(ch <-chan dto.RefreshProgress) []dto.RefreshProgress {
	var events []dto.RefreshProgress
	for event := range ch {
		events = append(events, event)
	}
	return events
}

func TestAnalyze_UnknownTickerEmitsTerminalError(t *testing.T) {
	f := newPipelineFixture()
	events := drain(f.svc.Analyze(context.Background(), "NOPE"))
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Step)
	assert.True(t, events[0].Done)
	assert.Equal(t, 0, f.ai.calls())
}

func TestAnalyze_FullRun(t *testing.T) {
	f := newPipelineFixture(testTicker())
	events := drain(f.svc.Analyze(context.Background(), "AAPL"))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "Complete", last.Step)
	assert.True(t, last.Done)
	for _, event := range events[:len(events)-1] {
		assert.False(t, event.Done)
	}

	// Seven categories analyzed plus one synthesis call.
	assert.Equal(t, 8, f.ai.calls())
	assert.Equal(t, 7, f.analyses.count())

	synthesis, err := f.syntheses.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, synthesis)
	assert.Equal(t, 4.0, synthesis.OverallScore)
	assert.Equal(t, entity.RecommendationBuy, synthesis.Recommendation)

	recs, err := f.recommendation.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].PriceAtRec)
	assert.Equal(t, 100.0, *recs[0].PriceAtRec)
}

func TestAnalyze_SecondRunHitsCache(t *testing.T) {
	f := newPipelineFixture(testTicker())
	drain(f.svc.Analyze(context.Background(), "AAPL"))
	firstCalls := f.ai.calls()
	require.Equal(t, 8, firstCalls)

	events := drain(f.svc.Analyze(context.Background(), "AAPL"))

	// Only the synthesis is re-run; every category digest matches.
	assert.Equal(t, firstCalls+1, f.ai.calls())
	assert.Equal(t, 7, f.analyses.count())

	var cachedSteps int
	for _, event := range events {
		if len(event.Step) > 12 && event.Step[:12] == "Using cached" {
			cachedSteps++
		}
	}
	assert.Equal(t, 7, cachedSteps)
	assert.Equal(t, "Complete", events[len(events)-1].Step)
}

func TestAnalyze_ChangedInputInvalidatesCache(t *testing.T) {
	f := newPipelineFixture(testTicker())
	drain(f.svc.Analyze(context.Background(), "AAPL"))
	require.Equal(t, 8, f.ai.calls())

	// New insider data changes the insider digest and, through the
	// aggregate, the risk digest.
	f.insiderUS.data = dto.InsiderData{InsiderTrades: []dto.InsiderTrade{{Date: "2026-08-27", Insider: "CFO", Type: "S - Sale"}}}
	drain(f.svc.Analyze(context.Background(), "AAPL"))

	// insider_activity + risk_assessment re-analyzed, plus synthesis.
	assert.Equal(t, 11, f.ai.calls())
	assert.Equal(t, 9, f.analyses.count())
}

func TestAnalyze_AllFetchesFailStillCompletes(t *testing.T) {
	f := newPipelineFixture(testTicker())
	f.marketData.failAll = true
	f.insiderUS.err = errFetch
	f.news.err = errFetch
	f.sector.err = errFetch
	f.ai.result = dto.LLMResult{"error": "LLM unavailable"}
	f.ai.synthesisResult = dto.LLMResult{"error": "LLM unavailable"}

	events := drain(f.svc.Analyze(context.Background(), "AAPL"))

	last := events[len(events)-1]
	assert.Equal(t, "Complete", last.Step)
	assert.True(t, last.Done)

	// Synthesis fell back to the weighted score of all-zero signals.
	synthesis, err := f.syntheses.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, synthesis)
	assert.Equal(t, 0.0, synthesis.OverallScore)
	assert.Equal(t, entity.RecommendationHold, synthesis.Recommendation)

	// The recommendation row has no price because the quote failed.
	recs, err := f.recommendation.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].PriceAtRec)
}

func TestAnalyze_OutOfRangeScoresAreClamped(t *testing.T) {
	f := newPipelineFixture(testTicker())
	f.ai.result = dto.LLMResult{"score": 50.0, "confidence": "high", "narrative": "wild"}
	f.ai.synthesisResult = dto.LLMResult{"overall_score": -99.0, "recommendation": "sell", "narrative": "doom"}

	drain(f.svc.Analyze(context.Background(), "AAPL"))

	analyses, err := f.analyses.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotEmpty(t, analyses)
	for _, analysis := range analyses {
		assert.Equal(t, 10.0, analysis.Score)
	}

	synthesis, err := f.syntheses.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, synthesis)
	assert.Equal(t, -10.0, synthesis.OverallScore)
}

func TestAnalyze_SynthesisFallbackRecommendation(t *testing.T) {
	f := newPipelineFixture(testTicker())
	// Scores of 5.0 across the board and no synthesis verdict: the weighted
	// fallback lands at 5.0, which maps to buy.
	f.ai.synthesisResult = dto.LLMResult{"narrative": "no structured output"}

	drain(f.svc.Analyze(context.Background(), "AAPL"))

	synthesis, err := f.syntheses.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, synthesis)
	assert.Equal(t, 5.0, synthesis.OverallScore)
	assert.Equal(t, entity.RecommendationBuy, synthesis.Recommendation)
}

func TestAnalyze_TechnicalsNarrativeGetsLevels(t *testing.T) {
	f := newPipelineFixture(testTicker())
	f.ai.result = dto.LLMResult{
		"score":             2.0,
		"confidence":        "medium",
		"narrative":         "base",
		"support_levels":    []interface{}{"$90 - SMA50", "$85 - 52W low"},
		"resistance_levels": []interface{}{"$110 - 52W high"},
		"entry_price":       "$95-$98",
		"stop_loss":         "$88",
	}

	drain(f.svc.Analyze(context.Background(), "AAPL"))

	analyses, err := f.analyses.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	var technicals *entity.SignalAnalysis
	for i := range analyses {
		if analyses[i].Category == entity.CategoryTechnicals {
			technicals = &analyses[i]
		}
	}
	require.NotNil(t, technicals)
	assert.Contains(t, technicals.Narrative, "**Support Levels:** $90 - SMA50 | $85 - 52W low")
	assert.Contains(t, technicals.Narrative, "**Resistance Levels:** $110 - 52W high")
	assert.Contains(t, technicals.Narrative, "**Suggested Entry:** $95-$98")
	assert.Contains(t, technicals.Narrative, "**Stop-Loss:** $88")
}

func TestAnalyze_UKMarketUsesUKInsiderSource(t *testing.T) {
	sector := "Mining"
	resolved := "RIO.L"
	ticker := &entity.Ticker{
		Symbol:         "RIO",
		Name:           "Rio Tinto",
		Sector:         &sector,
		Market:         entity.MarketUK,
		ResolvedSymbol: &resolved,
	}
	f := newPipelineFixture(ticker)
	ukCalled := false
	f.insiderUK = &fakeInsider{data: dto.InsiderData{InsiderTrades: []dto.InsiderTrade{}}}
	f.insiderUS = &fakeInsider{err: errFetch}

	cfg := &config.Config{}
	cfg.Analyzer.CacheFreshness = 24 * time.Hour
	f.svc = NewAnalyzerService(
		cfg, logger.NewNop(),
		f.ai, f.marketData,
		&fakeInsiderSpy{inner: f.insiderUS}, &fakeInsiderSpy{inner: f.insiderUK, called: &ukCalled},
		f.news, f.sector,
		f.tickers, f.analyses, f.syntheses, f.recommendation, f.settings,
		nil,
	)

	events := drain(f.svc.Analyze(context.Background(), "RIO"))
	assert.True(t, ukCalled)
	assert.Equal(t, "Complete", events[len(events)-1].Step)
}

type fakeInsiderSpy struct {
	inner  *fakeInsider
	called *bool
}

func (f *fakeInsiderSpy) Scrape(ctx context.Context, symbol string) (dto.InsiderData, error) {
	if f.called != nil {
		*f.called = true
	}
	return f.inner.Scrape(ctx, symbol)
}

func TestAnalyze_CanceledContextStopsStream(t *testing.T) {
	f := newPipelineFixture(testTicker())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		drain(f.svc.Analyze(ctx, "AAPL"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not terminate after cancellation")
	}
}
