package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/internal/entity"
	"golang-stock-selector/pkg/logger"
)

// ErrInvalidTicker is returned for malformed create requests.
var ErrInvalidTicker = errors.New("invalid ticker")

// synthesisHistoryLimit caps the synthesis history returned on the detail view.
const synthesisHistoryLimit = 10

// TickerService manages the tracked ticker list and the dashboard view.
type TickerService interface {
	Create(ctx context.Context, req dto.CreateTickerRequest) (*entity.Ticker, error)
	List(ctx context.Context) ([]entity.Ticker, error)
	GetDetail(ctx context.Context, symbol string) (*dto.TickerDetail, error)
	Delete(ctx context.Context, symbol string) error
	Dashboard(ctx context.Context) (*dto.Dashboard, error)
}

type tickerService struct {
	cfg           *config.Config
	log           *logger.Logger
	tickersRepo   repository.TickersRepository
	analysisRepo  repository.SignalAnalysisRepository
	synthesisRepo repository.SynthesisRepository
}

func NewTickerService(
	cfg *config.Config,
	log *logger.Logger,
	tickersRepo repository.TickersRepository,
	analysisRepo repository.SignalAnalysisRepository,
	synthesisRepo repository.SynthesisRepository,
) TickerService {
	return &tickerService{
		cfg:           cfg,
		log:           log,
		tickersRepo:   tickersRepo,
		analysisRepo:  analysisRepo,
		synthesisRepo: synthesisRepo,
	}
}

func (s *tickerService) Create(ctx context.Context, req dto.CreateTickerRequest) (*entity.Ticker, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidTicker)
	}
	market := strings.ToUpper(strings.TrimSpace(req.Market))
	if market == "" {
		market = entity.MarketUS
	}
	if market != entity.MarketUS && market != entity.MarketUK {
		return nil, fmt.Errorf("%w: market must be US or UK", ErrInvalidTicker)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = symbol
	}

	ticker := &entity.Ticker{
		Symbol: symbol,
		Name:   name,
		Sector: req.Sector,
		Market: market,
	}
	if err := s.tickersRepo.Create(ctx, ticker); err != nil {
		return nil, err
	}
	return s.tickersRepo.Get(ctx, symbol)
}

func (s *tickerService) List(ctx context.Context) ([]entity.Ticker, error) {
	return s.tickersRepo.List(ctx)
}

func (s *tickerService) GetDetail(ctx context.Context, symbol string) (*dto.TickerDetail, error) {
	ticker, err := s.tickersRepo.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	analyses, err := s.analysisRepo.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	synthesis, err := s.synthesisRepo.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	history, err := s.synthesisRepo.GetHistory(ctx, symbol, synthesisHistoryLimit)
	if err != nil {
		return nil, err
	}
	return &dto.TickerDetail{
		Ticker:    *ticker,
		Analyses:  analyses,
		Synthesis: synthesis,
		History:   history,
	}, nil
}

func (s *tickerService) Delete(ctx context.Context, symbol string) error {
	if _, err := s.tickersRepo.Get(ctx, symbol); err != nil {
		return err
	}
	return s.tickersRepo.Delete(ctx, symbol)
}

// Dashboard lists every tracked ticker with its latest synthesis. Stale is
// set when any ticker has no synthesis within the cache freshness window.
func (s *tickerService) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	tickers, err := s.tickersRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.Dashboard{Rows: make([]dto.DashboardRow, 0, len(tickers))}
	cutoff := time.Now().Add(-s.cfg.Analyzer.CacheFreshness)

	for _, ticker := range tickers {
		row := dto.DashboardRow{
			Symbol: ticker.Symbol,
			Name:   ticker.Name,
			Sector: ticker.Sector,
			Market: ticker.Market,
		}
		synthesis, err := s.synthesisRepo.GetLatest(ctx, ticker.Symbol)
		if err != nil {
			return nil, err
		}
		if synthesis == nil {
			dashboard.Stale = true
		} else {
			score := synthesis.OverallScore
			rec := string(synthesis.Recommendation)
			refreshed := synthesis.CreatedAt
			row.OverallScore = &score
			row.Recommendation = &rec
			row.LastRefreshed = &refreshed
			if refreshed.Before(cutoff) {
				dashboard.Stale = true
			}
		}
		dashboard.Rows = append(dashboard.Rows, row)
	}
	return dashboard, nil
}
