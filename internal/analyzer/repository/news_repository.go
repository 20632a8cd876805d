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
	readability "github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	maxNewsArticles = 10
	maxSummaryRunes = 500
)

// newsScraperRepository pulls supplementary headlines from Google News RSS
// and extracts readable article bodies for the first few items.
type newsScraperRepository struct {
	scraper    *scrapeClient
	parser     *gofeed.Parser
	logger     *logger.Logger
	maxExtract int
}

// NewNewsScraperRepository creates the supplementary news source.
func NewNewsScraperRepository(cacheRepo ScrapeCacheRepository, limiter *ratelimit.DomainLimiter, cacheTTL time.Duration, log *logger.Logger) NewsScraperRepository {
	return &newsScraperRepository{
		scraper:    newScrapeClient(cacheRepo, limiter, cacheTTL, log),
		parser:     gofeed.NewParser(),
		logger:     log,
		maxExtract: 3,
	}
}

func (r *newsScraperRepository) Scrape(ctx context.Context, symbol string) (dto.NewsData, error) {
	query := url.QueryEscape(fmt.Sprintf("%s stock", symbol))
	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", query)

	body, err := r.scraper.Fetch(ctx, feedURL)
	if err != nil {
		return dto.NewsData{}, fmt.Errorf("failed to fetch news feed: %w", err)
	}

	feed, err := r.parser.ParseString(body)
	if err != nil {
		return dto.NewsData{}, fmt.Errorf("failed to parse news feed: %w", err)
	}

	articles := []dto.NewsArticle{}
	for i, item := range feed.Items {
		if i >= maxNewsArticles {
			break
		}
		article := dto.NewsArticle{
			Title: item.Title,
			Link:  item.Link,
		}
		if item.PublishedParsed != nil {
			article.Published = item.PublishedParsed.UTC().Format("2006-01-02")
		}
		if item.Author != nil {
			article.Publisher = item.Author.Name
		}
		if i < r.maxExtract {
			article.Summary = r.extractSummary(ctx, item.Link)
		}
		articles = append(articles, article)
	}

	return dto.NewsData{NewsArticles: articles}, nil
}

// extractSummary pulls a short readable excerpt from the article page. Any
// failure just yields an empty summary; headlines alone are still useful.
func (r *newsScraperRepository) extractSummary(ctx context.Context, link string) string {
	body, err := r.scraper.Fetch(ctx, link)
	if err != nil {
		r.logger.Debug("Article fetch failed", logger.StringField("link", link), logger.ErrorField(err))
		return ""
	}

	return readableExcerpt(body)
}

// readableExcerpt extracts the readable article text from an HTML page and
// caps it at maxSummaryRunes characters, cutting on a rune boundary.
func readableExcerpt(body string) string {
	doc, err := readability.NewDocument(body)
	if err != nil {
		return ""
	}
	content, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Content()))
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(content.Text())
	runes := []rune(text)
	if len(runes) > maxSummaryRunes {
		runes = runes[:maxSummaryRunes]
	}
	return string(runes)
}
