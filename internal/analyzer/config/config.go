package config

import (
	"time"

	"golang-stock-selector/pkg/config"
)

// Analyzer holds analyzer pipeline configuration.
type Analyzer struct {
	// CacheFreshness is the window within which a cached per-category
	// analysis is reused without re-invoking the reasoning provider.
	CacheFreshness time.Duration `mapstructure:"cache_freshness"`
	// RefreshCron schedules the daily batch refresh enqueue.
	RefreshCron string `mapstructure:"refresh_cron"`
}

// AI selects the reasoning provider backend.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Claude holds the configuration for the Claude CLI provider.
type Claude struct {
	Bin string `mapstructure:"bin"`
}

// Codex holds the configuration for the Codex CLI provider. Cmd is a command
// template; a {prompt} placeholder is substituted, otherwise the prompt is
// passed on stdin.
type Codex struct {
	Bin string `mapstructure:"bin"`
	Cmd string `mapstructure:"cmd"`
}

// Opencode holds the configuration for the Opencode CLI provider.
type Opencode struct {
	Bin string `mapstructure:"bin"`
	Cmd string `mapstructure:"cmd"`
}

// Gemini holds the configuration for the Gemini API provider.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// YahooFinance holds the configuration for the Yahoo Finance API.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Scraper holds shared settings for the HTML/RSS scrapers.
type Scraper struct {
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analyzer service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Analyzer     Analyzer        `mapstructure:"analyzer"`
	AI           AI              `mapstructure:"ai"`
	Claude       Claude          `mapstructure:"claude"`
	Codex        Codex           `mapstructure:"codex"`
	Opencode     Opencode        `mapstructure:"opencode"`
	Gemini       Gemini          `mapstructure:"gemini"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Scraper      Scraper         `mapstructure:"scraper"`
	Telegram     Telegram        `mapstructure:"telegram"`
}

// Load loads the analyzer configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Analyzer.CacheFreshness == 0 {
		cfg.Analyzer.CacheFreshness = 24 * time.Hour
	}
	if cfg.Scraper.MinRequestInterval == 0 {
		cfg.Scraper.MinRequestInterval = time.Second
	}
	if cfg.Scraper.CacheTTL == 0 {
		cfg.Scraper.CacheTTL = 24 * time.Hour
	}
	return &cfg, nil
}
