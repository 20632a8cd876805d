package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/internal/entity"
)

// fakeAI returns canned results and records every prompt it sees.
type fakeAI struct {
	mu      sync.Mutex
	prompts []string
	// result applies to every call unless synthesisResult is set and the
	// prompt is the synthesis one (detected by the marker substring).
	result          dto.LLMResult
	synthesisResult dto.LLMResult
}

const synthesisMarker = "Synthesize all signals"

func (f *fakeAI) Analyze(_ context.Context, prompt string) dto.LLMResult {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.synthesisResult != nil && strings.Contains(prompt, synthesisMarker) {
		return f.synthesisResult.Clone()
	}
	return f.result.Clone()
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// fakeMarketData serves fixed payloads and optional per-date prices.
type fakeMarketData struct {
	fundamentals map[string]string
	technicals   map[string]string
	analyst      map[string]string
	news         []dto.NewsArticle
	quote        *float64
	prices       map[string]*float64 // date -> close
	failAll      bool
}

var errFetch = errFetchType{}

type errFetchType struct{}

func (errFetchType) Error() string { return "fetch failed" }

func (f *fakeMarketData) GetFundamentals(context.Context, string) (map[string]string, error) {
	if f.failAll {
		return nil, errFetch
	}
	return f.fundamentals, nil
}

func (f *fakeMarketData) GetTechnicals(context.Context, string) (map[string]string, error) {
	if f.failAll {
		return nil, errFetch
	}
	return f.technicals, nil
}

func (f *fakeMarketData) GetAnalystData(context.Context, string) (map[string]string, error) {
	if f.failAll {
		return nil, errFetch
	}
	return f.analyst, nil
}

func (f *fakeMarketData) GetNews(context.Context, string) ([]dto.NewsArticle, error) {
	if f.failAll {
		return nil, errFetch
	}
	return f.news, nil
}

func (f *fakeMarketData) GetQuote(context.Context, string) (*float64, error) {
	if f.failAll {
		return nil, errFetch
	}
	return f.quote, nil
}

func (f *fakeMarketData) GetHistoricalPrice(_ context.Context, _, date string) (*float64, error) {
	if f.failAll {
		return nil, errFetch
	}
	return f.prices[date], nil
}

func (f *fakeMarketData) ClearCache(string) {}

type fakeInsider struct {
	data dto.InsiderData
	err  error
}

func (f *fakeInsider) Scrape(context.Context, string) (dto.InsiderData, error) {
	return f.data, f.err
}

type fakeNews struct {
	data dto.NewsData
	err  error
}

func (f *fakeNews) Scrape(context.Context, string) (dto.NewsData, error) {
	return f.data, f.err
}

type fakeSector struct {
	data dto.SectorData
	err  error
}

func (f *fakeSector) Scrape(context.Context, string, *string, string) (dto.SectorData, error) {
	return f.data, f.err
}

// fakeTickersRepo is an in-memory TickersRepository.
type fakeTickersRepo struct {
	mu      sync.Mutex
	tickers map[string]*entity.Ticker
}

func newFakeTickersRepo(tickers ...*entity.Ticker) *fakeTickersRepo {
	repo := &fakeTickersRepo{tickers: map[string]*entity.Ticker{}}
	for _, ticker := range tickers {
		repo.tickers[ticker.Symbol] = ticker
	}
	return repo
}

func (f *fakeTickersRepo) Create(_ context.Context, ticker *entity.Ticker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickers[ticker.Symbol]; !ok {
		f.tickers[ticker.Symbol] = ticker
	}
	return nil
}

func (f *fakeTickersRepo) Get(_ context.Context, symbol string) (*entity.Ticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker, ok := f.tickers[symbol]
	if !ok {
		return nil, repository.ErrTickerNotFound
	}
	copied := *ticker
	return &copied, nil
}

func (f *fakeTickersRepo) List(context.Context) ([]entity.Ticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Ticker, 0, len(f.tickers))
	for _, ticker := range f.tickers {
		out = append(out, *ticker)
	}
	return out, nil
}

func (f *fakeTickersRepo) UpdateResolution(_ context.Context, symbol, resolved, market string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticker, ok := f.tickers[symbol]; ok {
		ticker.ResolvedSymbol = &resolved
		ticker.Market = market
	}
	return nil
}

func (f *fakeTickersRepo) Delete(_ context.Context, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tickers, symbol)
	return nil
}

// fakeAnalysisRepo is an in-memory SignalAnalysisRepository with the same
// cache semantics as the real one.
type fakeAnalysisRepo struct {
	mu       sync.Mutex
	analyses []entity.SignalAnalysis
}

func (f *fakeAnalysisRepo) Create(_ context.Context, analysis *entity.SignalAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}
	f.analyses = append(f.analyses, *analysis)
	return nil
}

func (f *fakeAnalysisRepo) GetCached(_ context.Context, symbol string, category entity.SignalCategory, inputHash string, maxAge time.Duration) (*entity.SignalAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for i := len(f.analyses) - 1; i >= 0; i-- {
		a := f.analyses[i]
		if a.Symbol == symbol && a.Category == category && a.InputHash == inputHash && a.CreatedAt.After(cutoff) {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAnalysisRepo) GetLatest(_ context.Context, symbol string) ([]entity.SignalAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := map[entity.SignalCategory]entity.SignalAnalysis{}
	for _, a := range f.analyses {
		if a.Symbol == symbol {
			latest[a.Category] = a
		}
	}
	out := make([]entity.SignalAnalysis, 0, len(latest))
	for _, a := range latest {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAnalysisRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.analyses)
}

type fakeSynthesisRepo struct {
	mu        sync.Mutex
	syntheses []entity.Synthesis
}

func (f *fakeSynthesisRepo) Create(_ context.Context, synthesis *entity.Synthesis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if synthesis.CreatedAt.IsZero() {
		synthesis.CreatedAt = time.Now()
	}
	f.syntheses = append(f.syntheses, *synthesis)
	return nil
}

func (f *fakeSynthesisRepo) GetLatest(_ context.Context, symbol string) (*entity.Synthesis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.syntheses) - 1; i >= 0; i-- {
		if f.syntheses[i].Symbol == symbol {
			s := f.syntheses[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSynthesisRepo) GetHistory(_ context.Context, symbol string, limit int) ([]entity.Synthesis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Synthesis
	for i := len(f.syntheses) - 1; i >= 0 && len(out) < limit; i-- {
		if f.syntheses[i].Symbol == symbol {
			out = append(out, f.syntheses[i])
		}
	}
	return out, nil
}

type fakeRecommendationRepo struct {
	mu   sync.Mutex
	recs []entity.Recommendation
}

func (f *fakeRecommendationRepo) Create(_ context.Context, rec *entity.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.ID = int64(len(f.recs) + 1)
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeRecommendationRepo) Get(_ context.Context, symbol string) ([]entity.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Recommendation
	for _, rec := range f.recs {
		if symbol == "" || rec.Symbol == symbol {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	mu      sync.Mutex
	weights map[string]float64
	preset  string
}

func (f *fakeSettingsRepo) GetScoringWeights(context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.weights, nil
}

func (f *fakeSettingsRepo) SaveScoringWeights(_ context.Context, weights map[string]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weights = weights
	return nil
}

func (f *fakeSettingsRepo) GetActivePreset(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preset, nil
}

func (f *fakeSettingsRepo) SaveActivePreset(_ context.Context, preset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preset = preset
	return nil
}

func mustJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
