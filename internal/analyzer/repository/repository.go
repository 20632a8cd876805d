package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"
)

// ErrSymbolNotFound is returned by ResolveSymbol when no listing matches on
// any known exchange.
var ErrSymbolNotFound = errors.New("symbol not found on any known exchange")

// AIRepository is the reasoning provider capability. Provider failures are
// never returned as Go errors: they are encoded in the result under an
// "error" key so the pipeline can continue with safe defaults.
type AIRepository interface {
	Analyze(ctx context.Context, prompt string) dto.LLMResult
}

// MarketDataRepository supplies fundamentals, technicals, analyst and news
// data for a resolved symbol, plus price lookups for recommendations and
// backtesting.
type MarketDataRepository interface {
	GetFundamentals(ctx context.Context, symbol string) (map[string]string, error)
	GetTechnicals(ctx context.Context, symbol string) (map[string]string, error)
	GetAnalystData(ctx context.Context, symbol string) (map[string]string, error)
	GetNews(ctx context.Context, symbol string) ([]dto.NewsArticle, error)
	GetQuote(ctx context.Context, symbol string) (*float64, error)
	GetHistoricalPrice(ctx context.Context, symbol, date string) (*float64, error)
	// ClearCache drops the per-run memo for a symbol so a new pipeline
	// invocation never reuses another run's data.
	ClearCache(symbol string)
}

// SymbolResolver resolves a bare ticker into an exchange-qualified symbol.
// Market data sources that do not support resolution simply do not implement
// this interface.
type SymbolResolver interface {
	ResolveSymbol(ctx context.Context, raw, preferredMarket string) (resolved, market string, err error)
}

// InsiderRepository supplies insider-trading activity for a symbol.
type InsiderRepository interface {
	Scrape(ctx context.Context, symbol string) (dto.InsiderData, error)
}

// NewsScraperRepository supplies supplementary news for a symbol.
type NewsScraperRepository interface {
	Scrape(ctx context.Context, symbol string) (dto.NewsData, error)
}

// SectorRepository supplies sector performance and sector news.
type SectorRepository interface {
	Scrape(ctx context.Context, symbol string, sector *string, market string) (dto.SectorData, error)
}

// NewAIRepository selects the reasoning provider backend by name.
func NewAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	switch cfg.AI.Provider {
	case "claude":
		return NewClaudeCLIRepository(cfg, log), nil
	case "codex":
		return NewCodexCLIRepository(cfg, log), nil
	case "opencode":
		return NewOpencodeCLIRepository(cfg, log), nil
	case "gemini":
		return NewGeminiAIRepository(cfg, log)
	default:
		return nil, fmt.Errorf("ai.provider must be 'claude', 'codex', 'opencode' or 'gemini', got %q", cfg.AI.Provider)
	}
}
