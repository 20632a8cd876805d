package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/internal/entity"
	"golang-stock-selector/internal/scoring"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/telegram"
	"golang-stock-selector/pkg/utils"

	"gorm.io/datatypes"
)

// AnalyzerService runs the full analysis pipeline for a tracked ticker.
type AnalyzerService interface {
	// Analyze starts a pipeline run and returns its progress stream. The
	// channel always ends with a done event and is then closed, no matter
	// how the run went.
	Analyze(ctx context.Context, symbol string) <-chan dto.RefreshProgress
}

type analyzerService struct {
	cfg            *config.Config
	log            *logger.Logger
	ai             repository.AIRepository
	marketData     repository.MarketDataRepository
	insiderUS      repository.InsiderRepository
	insiderUK      repository.InsiderRepository
	news           repository.NewsScraperRepository
	sector         repository.SectorRepository
	tickersRepo    repository.TickersRepository
	analysisRepo   repository.SignalAnalysisRepository
	synthesisRepo  repository.SynthesisRepository
	recommendation repository.RecommendationRepository
	settingsRepo   repository.SettingsRepository
	telegramBot    telegram.Notifier
}

func NewAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	ai repository.AIRepository,
	marketData repository.MarketDataRepository,
	insiderUS repository.InsiderRepository,
	insiderUK repository.InsiderRepository,
	news repository.NewsScraperRepository,
	sector repository.SectorRepository,
	tickersRepo repository.TickersRepository,
	analysisRepo repository.SignalAnalysisRepository,
	synthesisRepo repository.SynthesisRepository,
	recommendation repository.RecommendationRepository,
	settingsRepo repository.SettingsRepository,
	telegramBot telegram.Notifier,
) AnalyzerService {
	return &analyzerService{
		cfg:            cfg,
		log:            log,
		ai:             ai,
		marketData:     marketData,
		insiderUS:      insiderUS,
		insiderUK:      insiderUK,
		news:           news,
		sector:         sector,
		tickersRepo:    tickersRepo,
		analysisRepo:   analysisRepo,
		synthesisRepo:  synthesisRepo,
		recommendation: recommendation,
		settingsRepo:   settingsRepo,
		telegramBot:    telegramBot,
	}
}

func (s *analyzerService) Analyze(ctx context.Context, symbol string) <-chan dto.RefreshProgress {
	progress := make(chan dto.RefreshProgress, 1)
	go func() {
		defer close(progress)
		s.run(ctx, symbol, progress)
	}()
	return progress
}

// emit sends a progress event, giving up when the consumer is gone.
func emit(ctx context.Context, ch chan<- dto.RefreshProgress, event dto.RefreshProgress) bool {
	select {
	case ch <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func category(c entity.SignalCategory) *string {
	s := string(c)
	return &s
}

func (s *analyzerService) run(ctx context.Context, symbol string, progress chan<- dto.RefreshProgress) {
	ticker, err := s.tickersRepo.Get(ctx, symbol)
	if err != nil {
		s.log.Error("Ticker lookup failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "error", Done: true})
		return
	}

	market := ticker.Market
	resolved := s.resolveSymbol(ctx, ticker, &market)
	s.marketData.ClearCache(resolved)

	signalResults := map[string]dto.SignalResult{}

	// 1. Primary market data. A provider failure degrades to empty payloads
	// so the pipeline still reaches synthesis.
	if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Fetching market data...", Category: category(entity.CategoryFundamentals)}) {
		return
	}
	primary := s.fetchPrimary(ctx, symbol, resolved)

	// 2. Insider activity, source depends on market.
	if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Scraping insider data...", Category: category(entity.CategoryInsiderActivity)}) {
		return
	}
	insiderSource := s.insiderUS
	if market == entity.MarketUK {
		insiderSource = s.insiderUK
	}
	insiderData, err := insiderSource.Scrape(ctx, symbol)
	if err != nil {
		s.log.Error("Insider scrape failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		insiderData = dto.InsiderData{InsiderTrades: []dto.InsiderTrade{}}
	}

	// 3. Supplementary news.
	if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Scraping news...", Category: category(entity.CategorySentiment)}) {
		return
	}
	newsData, err := s.news.Scrape(ctx, symbol)
	if err != nil {
		s.log.Error("News scrape failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		newsData = dto.NewsData{NewsArticles: []dto.NewsArticle{}}
	}

	// 4. Sector context.
	if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Scraping sector data...", Category: category(entity.CategorySectorContext)}) {
		return
	}
	sectorData, err := s.sector.Scrape(ctx, symbol, ticker.Sector, market)
	if err != nil {
		s.log.Error("Sector scrape failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		sectorData = dto.SectorData{
			SectorPerformance: []dto.SectorPerformanceRow{},
			SectorNews:        []dto.NewsArticle{},
		}
	}

	allScraped := dto.AggregatedData{
		Primary: primary,
		Insider: insiderData,
		News:    newsData,
		Sector:  sectorData,
	}

	// 5. Per-category scoring, cache keyed by content digest.
	primaryCategories := []struct {
		category    entity.SignalCategory
		buildPrompt func(string, interface{}) string
		data        interface{}
	}{
		{entity.CategoryFundamentals, repository.BuildFundamentalsPrompt, primary.Fundamentals},
		{entity.CategoryAnalystConsensus, repository.BuildAnalystPrompt, primary.Analyst},
		{entity.CategoryInsiderActivity, repository.BuildInsiderPrompt, insiderData},
		{entity.CategoryTechnicals, repository.BuildTechnicalsPrompt, primary.Technicals},
		{entity.CategorySentiment, repository.BuildSentimentPrompt, dto.SentimentInput{
			NewsArticles: newsData.NewsArticles,
			ProviderNews: primary.News,
		}},
	}

	for _, c := range primaryCategories {
		inputHash := utils.StableDigest(c.data)
		cached := s.lookupCache(ctx, symbol, c.category, inputHash)
		if cached != nil {
			if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: fmt.Sprintf("Using cached %s...", c.category), Category: category(c.category)}) {
				return
			}
			signalResults[string(c.category)] = dto.SignalResult{
				Score:      cached.Score,
				Confidence: string(cached.Confidence),
				Narrative:  cached.Narrative,
			}
			continue
		}

		if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: fmt.Sprintf("Analyzing %s...", c.category), Category: category(c.category)}) {
			return
		}
		result := validateSignalResult(s.log, s.ai.Analyze(ctx, c.buildPrompt(symbol, c.data)))
		score, _ := result.Score()
		narrative := result.Narrative()
		if narrative == "" {
			narrative = "Analysis unavailable."
		}
		if c.category == entity.CategoryTechnicals {
			narrative = appendTechnicalLevels(narrative, result)
		}

		s.saveAnalysis(ctx, symbol, c.category, score, result.Confidence(), narrative, c.data, inputHash)
		signalResults[string(c.category)] = dto.SignalResult{
			Score:      score,
			Confidence: result.Confidence(),
			Narrative:  narrative,
		}
	}

	// Sector context needs the sector name, so it runs outside the loop.
	sectorHash := utils.StableDigest(sectorData)
	if cached := s.lookupCache(ctx, symbol, entity.CategorySectorContext, sectorHash); cached != nil {
		if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Using cached sector context...", Category: category(entity.CategorySectorContext)}) {
			return
		}
		signalResults[string(entity.CategorySectorContext)] = dto.SignalResult{
			Score:      cached.Score,
			Confidence: string(cached.Confidence),
			Narrative:  cached.Narrative,
		}
	} else {
		if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Analyzing sector context...", Category: category(entity.CategorySectorContext)}) {
			return
		}
		sectorName := "Unknown"
		if ticker.Sector != nil && *ticker.Sector != "" {
			sectorName = *ticker.Sector
		}
		result := validateSignalResult(s.log, s.ai.Analyze(ctx, repository.BuildSectorPrompt(symbol, sectorName, sectorData)))
		score, _ := result.Score()
		s.saveAnalysis(ctx, symbol, entity.CategorySectorContext, score, result.Confidence(), result.Narrative(), sectorData, sectorHash)
		signalResults[string(entity.CategorySectorContext)] = dto.SignalResult{
			Score:      score,
			Confidence: result.Confidence(),
			Narrative:  result.Narrative(),
		}
	}

	// Risk assessment hashes over everything scraped, so any upstream data
	// change forces a fresh risk run.
	riskHash := utils.StableDigest(allScraped)
	if cached := s.lookupCache(ctx, symbol, entity.CategoryRiskAssessment, riskHash); cached != nil {
		if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Using cached risk assessment...", Category: category(entity.CategoryRiskAssessment)}) {
			return
		}
		signalResults[string(entity.CategoryRiskAssessment)] = dto.SignalResult{
			Score:      cached.Score,
			Confidence: string(cached.Confidence),
			Narrative:  cached.Narrative,
		}
	} else {
		if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Analyzing risk...", Category: category(entity.CategoryRiskAssessment)}) {
			return
		}
		result := validateSignalResult(s.log, s.ai.Analyze(ctx, repository.BuildRiskPrompt(symbol, allScraped)))
		score, _ := result.Score()
		s.saveAnalysis(ctx, symbol, entity.CategoryRiskAssessment, score, result.Confidence(), result.Narrative(), allScraped, riskHash)
		signalResults[string(entity.CategoryRiskAssessment)] = dto.SignalResult{
			Score:      score,
			Confidence: result.Confidence(),
			Narrative:  result.Narrative(),
			BullCase:   result.GetString("bull_case"),
			BearCase:   result.GetString("bear_case"),
		}
	}

	// 6. Synthesis. Never cached: it must reflect the run's actual inputs.
	if !emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Generating overall recommendation...", Category: nil}) {
		return
	}
	s.synthesize(ctx, symbol, ticker, resolved, signalResults)

	emit(ctx, progress, dto.RefreshProgress{Symbol: symbol, Step: "Complete", Done: true})
}

// resolveSymbol fills in the exchange-qualified symbol once, persisting the
// outcome. Resolution failures fall back to the raw symbol.
func (s *analyzerService) resolveSymbol(ctx context.Context, ticker *entity.Ticker, market *string) string {
	if ticker.ResolvedSymbol != nil && *ticker.ResolvedSymbol != "" {
		return *ticker.ResolvedSymbol
	}
	resolver, ok := s.marketData.(repository.SymbolResolver)
	if !ok {
		return ticker.Symbol
	}
	resolved, resolvedMarket, err := resolver.ResolveSymbol(ctx, ticker.Symbol, *market)
	if err != nil {
		s.log.Warn("Could not resolve symbol, using as-is", logger.StringField("symbol", ticker.Symbol), logger.ErrorField(err))
		return ticker.Symbol
	}
	*market = resolvedMarket
	if err := s.tickersRepo.UpdateResolution(ctx, ticker.Symbol, resolved, resolvedMarket); err != nil {
		s.log.Error("Failed to persist symbol resolution", logger.StringField("symbol", ticker.Symbol), logger.ErrorField(err))
	}
	return resolved
}

func (s *analyzerService) fetchPrimary(ctx context.Context, symbol, resolved string) dto.PrimaryData {
	primary := dto.PrimaryData{
		Fundamentals: map[string]string{},
		Analyst:      map[string]string{},
		Technicals:   map[string]string{},
		News:         []dto.NewsArticle{},
	}

	fundamentals, err := s.marketData.GetFundamentals(ctx, resolved)
	if err != nil {
		s.log.Error("Data provider scrape failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return primary
	}
	primary.Fundamentals = fundamentals

	if technicals, err := s.marketData.GetTechnicals(ctx, resolved); err != nil {
		s.log.Error("Technicals fetch failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
	} else {
		primary.Technicals = technicals
	}
	if analyst, err := s.marketData.GetAnalystData(ctx, resolved); err != nil {
		s.log.Error("Analyst data fetch failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
	} else {
		primary.Analyst = analyst
	}
	if news, err := s.marketData.GetNews(ctx, resolved); err != nil {
		s.log.Error("Provider news fetch failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
	} else {
		primary.News = news
	}
	return primary
}

func (s *analyzerService) lookupCache(ctx context.Context, symbol string, cat entity.SignalCategory, inputHash string) *entity.SignalAnalysis {
	cached, err := s.analysisRepo.GetCached(ctx, symbol, cat, inputHash, s.cfg.Analyzer.CacheFreshness)
	if err != nil {
		s.log.Error("Analysis cache lookup failed",
			logger.StringField("symbol", symbol),
			logger.StringField("category", string(cat)),
			logger.ErrorField(err),
		)
		return nil
	}
	return cached
}

func (s *analyzerService) saveAnalysis(ctx context.Context, symbol string, cat entity.SignalCategory, score float64, confidence, narrative string, data interface{}, inputHash string) {
	rawData, err := json.Marshal(data)
	if err != nil {
		rawData = []byte("{}")
	}
	analysis := &entity.SignalAnalysis{
		Symbol:     symbol,
		Category:   cat,
		Score:      score,
		Confidence: entity.Confidence(confidence),
		Narrative:  narrative,
		RawData:    datatypes.JSON(rawData),
		InputHash:  inputHash,
	}
	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		s.log.Error("Failed to save analysis",
			logger.StringField("symbol", symbol),
			logger.StringField("category", string(cat)),
			logger.ErrorField(err),
		)
	}
}

func (s *analyzerService) synthesize(ctx context.Context, symbol string, ticker *entity.Ticker, resolved string, signalResults map[string]dto.SignalResult) {
	synthesis := s.ai.Analyze(ctx, repository.BuildSynthesisPrompt(symbol, signalResults))

	signalScores := make(map[string]float64, len(signalResults))
	for cat, result := range signalResults {
		signalScores[cat] = result.Score
	}
	weights, err := s.settingsRepo.GetScoringWeights(ctx)
	if err != nil {
		s.log.Error("Failed to load scoring weights, using defaults", logger.ErrorField(err))
		weights = nil
	}

	rawOverall, ok := synthesis.GetFloat("overall_score")
	if !ok {
		rawOverall = scoring.WeightedScore(signalScores, weights)
	}
	overallScore := clampScore(rawOverall)
	if overallScore != rawOverall {
		s.log.Warn("Overall score out of range [-10, +10], clamped",
			logger.Float64Field("raw_score", rawOverall),
			logger.Float64Field("clamped_score", overallScore),
		)
	}

	recommendation := synthesis.GetString("recommendation")
	if recommendation == "" {
		recommendation = scoring.ScoreToRecommendation(overallScore)
	}

	narrative := synthesis.Narrative()
	if entryStrategy := synthesis.GetString("entry_strategy"); entryStrategy != "" {
		narrative += "\n\n## Entry Strategy\n\n" + entryStrategy
	}

	scoresJSON, err := json.Marshal(signalScores)
	if err != nil {
		scoresJSON = []byte("{}")
	}
	if err := s.synthesisRepo.Create(ctx, &entity.Synthesis{
		Symbol:         symbol,
		OverallScore:   overallScore,
		Recommendation: entity.RecommendationLabel(recommendation),
		Narrative:      narrative,
		SignalScores:   datatypes.JSON(scoresJSON),
	}); err != nil {
		s.log.Error("Failed to save synthesis", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	price, err := s.marketData.GetQuote(ctx, resolved)
	if err != nil {
		s.log.Warn("Quote fetch failed, recommendation saved without price",
			logger.StringField("symbol", symbol), logger.ErrorField(err))
		price = nil
	}
	if err := s.recommendation.Create(ctx, &entity.Recommendation{
		Symbol:         symbol,
		Recommendation: entity.RecommendationLabel(recommendation),
		OverallScore:   overallScore,
		PriceAtRec:     price,
	}); err != nil {
		s.log.Error("Failed to save recommendation", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	if s.telegramBot != nil {
		msg := telegram.FormatRecommendation(symbol, ticker.Name, recommendation, overallScore, price)
		if err := s.telegramBot.SendMessage(msg); err != nil {
			s.log.Error("Failed to send Telegram notification", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
	}
}

// appendTechnicalLevels folds the structured price levels from a technicals
// result into its narrative, mirroring how they are rendered elsewhere.
func appendTechnicalLevels(narrative string, result dto.LLMResult) string {
	var extras []string
	if levels := result.GetStringSlice("support_levels"); len(levels) > 0 {
		extras = append(extras, "**Support Levels:** "+joinLevels(levels))
	}
	if levels := result.GetStringSlice("resistance_levels"); len(levels) > 0 {
		extras = append(extras, "**Resistance Levels:** "+joinLevels(levels))
	}
	if entry := result.GetString("entry_price"); entry != "" {
		extras = append(extras, "**Suggested Entry:** "+entry)
	}
	if stop := result.GetString("stop_loss"); stop != "" {
		extras = append(extras, "**Stop-Loss:** "+stop)
	}
	for _, extra := range extras {
		narrative += "\n\n" + extra
	}
	return narrative
}

func joinLevels(levels []string) string {
	out := ""
	for i, level := range levels {
		if i > 0 {
			out += " | "
		}
		out += level
	}
	return out
}
