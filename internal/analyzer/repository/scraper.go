package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/ratelimit"
)

var scraperHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// scrapeClient is the shared fetcher for all HTML/RSS scrapers. It checks the
// durable scrape cache first, and on a miss serializes requests per origin
// domain through the domain limiter before hitting the network.
type scrapeClient struct {
	client    *http.Client
	cacheRepo ScrapeCacheRepository
	limiter   *ratelimit.DomainLimiter
	cacheTTL  time.Duration
	logger    *logger.Logger
}

func newScrapeClient(cacheRepo ScrapeCacheRepository, limiter *ratelimit.DomainLimiter, cacheTTL time.Duration, log *logger.Logger) *scrapeClient {
	return &scrapeClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cacheRepo: cacheRepo,
		limiter:   limiter,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Fetch returns the body of rawURL, from cache when fresh.
func (c *scrapeClient) Fetch(ctx context.Context, rawURL string) (string, error) {
	if c.cacheRepo != nil {
		cached, err := c.cacheRepo.Get(ctx, rawURL)
		if err != nil {
			c.logger.Warn("Scrape cache lookup failed", logger.ErrorField(err), logger.StringField("url", rawURL))
		} else if cached != nil {
			c.logger.Debug("Scrape cache hit", logger.StringField("url", rawURL))
			return cached.Content, nil
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	release, err := c.limiter.Acquire(ctx, parsed.Host)
	if err != nil {
		return "", err
	}

	body, err := c.get(ctx, rawURL)
	release()
	if err != nil {
		return "", err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Save(ctx, rawURL, body, c.cacheTTL); err != nil {
			c.logger.Warn("Scrape cache save failed", logger.ErrorField(err), logger.StringField("url", rawURL))
		}
	}
	return body, nil
}

func (c *scrapeClient) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	for key, value := range scraperHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
