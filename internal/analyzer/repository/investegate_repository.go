package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/ratelimit"

	"github.com/PuerkitoBio/goquery"
)

// investegateRepository scrapes UK director dealings from investegate.co.uk
// RNS announcements.
type investegateRepository struct {
	scraper *scrapeClient
	logger  *logger.Logger
}

// NewInvestegateRepository creates the UK insider-activity source.
func NewInvestegateRepository(cacheRepo ScrapeCacheRepository, limiter *ratelimit.DomainLimiter, cacheTTL time.Duration, log *logger.Logger) InsiderRepository {
	return &investegateRepository{
		scraper: newScrapeClient(cacheRepo, limiter, cacheTTL, log),
		logger:  log,
	}
}

var dealingPattern = regexp.MustCompile(`(?i)(director|pdmr).*(dealing|shareholding|transaction)`)

func (r *investegateRepository) Scrape(ctx context.Context, symbol string) (dto.InsiderData, error) {
	symbol = strings.ToUpper(strings.TrimSuffix(symbol, ".L"))
	pageURL := fmt.Sprintf("https://www.investegate.co.uk/company/%s", symbol)
	body, err := r.scraper.Fetch(ctx, pageURL)
	if err != nil {
		return dto.InsiderData{}, fmt.Errorf("failed to fetch investegate page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return dto.InsiderData{}, fmt.Errorf("failed to parse investegate page: %w", err)
	}

	trades := []dto.InsiderTrade{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		title := strings.TrimSpace(cells.Last().Text())
		if !dealingPattern.MatchString(title) {
			return
		}
		trades = append(trades, dto.InsiderTrade{
			Date:    strings.TrimSpace(cells.Eq(0).Text()),
			Insider: strings.TrimSpace(cells.Eq(1).Text()),
			Type:    title,
		})
	})

	r.logger.Debug("Scraped UK director dealings",
		logger.StringField("symbol", symbol),
		logger.IntField("count", len(trades)),
	)
	return dto.InsiderData{InsiderTrades: trades}, nil
}
