package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/ratelimit"

	"github.com/PuerkitoBio/goquery"
)

// openInsiderRepository scrapes US insider transactions from openinsider.com.
type openInsiderRepository struct {
	scraper *scrapeClient
	logger  *logger.Logger
}

// NewOpenInsiderRepository creates the default insider-activity source.
func NewOpenInsiderRepository(cacheRepo ScrapeCacheRepository, limiter *ratelimit.DomainLimiter, cacheTTL time.Duration, log *logger.Logger) InsiderRepository {
	return &openInsiderRepository{
		scraper: newScrapeClient(cacheRepo, limiter, cacheTTL, log),
		logger:  log,
	}
}

func (r *openInsiderRepository) Scrape(ctx context.Context, symbol string) (dto.InsiderData, error) {
	pageURL := fmt.Sprintf("http://openinsider.com/screener?s=%s&o=&pl=&ph=&ll=&lh=&fd=365&td=0&cnt=25", strings.ToUpper(symbol))
	body, err := r.scraper.Fetch(ctx, pageURL)
	if err != nil {
		return dto.InsiderData{}, fmt.Errorf("failed to fetch openinsider page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return dto.InsiderData{}, fmt.Errorf("failed to parse openinsider page: %w", err)
	}

	trades := []dto.InsiderTrade{}
	doc.Find("table.tinytable tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 13 {
			return
		}
		cell := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}
		trades = append(trades, dto.InsiderTrade{
			Date:    cell(2),
			Insider: cell(5),
			Role:    cell(6),
			Type:    cell(7),
			Shares:  cell(9),
			Value:   cell(12),
		})
	})

	r.logger.Debug("Scraped insider trades",
		logger.StringField("symbol", symbol),
		logger.IntField("count", len(trades)),
	)
	return dto.InsiderData{InsiderTrades: trades}, nil
}
