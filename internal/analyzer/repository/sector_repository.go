package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/ratelimit"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const maxSectorNews = 5

// sectorRepository combines finviz sector group performance with sector
// headlines from Google News RSS.
type sectorRepository struct {
	scraper *scrapeClient
	parser  *gofeed.Parser
	logger  *logger.Logger
}

// NewSectorRepository creates the sector-context source.
func NewSectorRepository(cacheRepo ScrapeCacheRepository, limiter *ratelimit.DomainLimiter, cacheTTL time.Duration, log *logger.Logger) SectorRepository {
	return &sectorRepository{
		scraper: newScrapeClient(cacheRepo, limiter, cacheTTL, log),
		parser:  gofeed.NewParser(),
		logger:  log,
	}
}

func (r *sectorRepository) Scrape(ctx context.Context, symbol string, sector *string, market string) (dto.SectorData, error) {
	data := dto.SectorData{
		SectorPerformance: []dto.SectorPerformanceRow{},
		SectorNews:        []dto.NewsArticle{},
	}

	performance, err := r.scrapePerformance(ctx)
	if err != nil {
		// Sector news can still provide context on its own.
		r.logger.Warn("Sector performance scrape failed", logger.ErrorField(err), logger.StringField("symbol", symbol))
	} else {
		data.SectorPerformance = performance
	}

	news, err := r.scrapeNews(ctx, sector, market)
	if err != nil {
		return data, err
	}
	data.SectorNews = news
	return data, nil
}

func (r *sectorRepository) scrapePerformance(ctx context.Context) ([]dto.SectorPerformanceRow, error) {
	body, err := r.scraper.Fetch(ctx, "https://finviz.com/groups.ashx?g=sector&v=140&o=name")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sector performance: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse sector performance: %w", err)
	}

	rows := []dto.SectorPerformanceRow{}
	doc.Find("table.groups_table tr, table.table-light tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		name := strings.TrimSpace(cells.Eq(1).Text())
		change := strings.TrimSpace(cells.Eq(2).Text())
		if name == "" || !strings.ContainsAny(change, "%") {
			return
		}
		rows = append(rows, dto.SectorPerformanceRow{Name: name, Change: change})
	})
	return rows, nil
}

func (r *sectorRepository) scrapeNews(ctx context.Context, sector *string, market string) ([]dto.NewsArticle, error) {
	topic := "stock market"
	if sector != nil && *sector != "" {
		topic = *sector + " sector"
	}
	if market == "UK" {
		topic += " UK"
	}

	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", url.QueryEscape(topic))
	body, err := r.scraper.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sector news: %w", err)
	}

	feed, err := r.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sector news: %w", err)
	}

	articles := []dto.NewsArticle{}
	for i, item := range feed.Items {
		if i >= maxSectorNews {
			break
		}
		article := dto.NewsArticle{Title: item.Title, Link: item.Link}
		if item.PublishedParsed != nil {
			article.Published = item.PublishedParsed.UTC().Format("2006-01-02")
		}
		articles = append(articles, article)
	}
	return articles, nil
}
