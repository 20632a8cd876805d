package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/delivery/consumer"
	delivery "golang-stock-selector/internal/analyzer/delivery/http"
	_ "golang-stock-selector/internal/analyzer/docs"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/internal/analyzer/service"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/postgres"
	"golang-stock-selector/pkg/ratelimit"
	"golang-stock-selector/pkg/redis"
	"golang-stock-selector/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analyzer service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analyzer Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	tickersRepo := repository.NewTickersRepository(db.DB)
	analysisRepo := repository.NewSignalAnalysisRepository(db.DB)
	synthesisRepo := repository.NewSynthesisRepository(db.DB)
	recommendationRepo := repository.NewRecommendationRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)
	scrapeCacheRepo := repository.NewScrapeCacheRepository(db.DB)

	aiRepo, err := repository.NewAIRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize AI provider", logger.ErrorField(err))
	}
	marketDataRepo, err := repository.NewYahooFinanceRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize market data provider", logger.ErrorField(err))
	}

	domainLimiter := ratelimit.NewDomainLimiter(cfg.Scraper.MinRequestInterval)
	openInsiderRepo := repository.NewOpenInsiderRepository(scrapeCacheRepo, domainLimiter, cfg.Scraper.CacheTTL, appLogger)
	investegateRepo := repository.NewInvestegateRepository(scrapeCacheRepo, domainLimiter, cfg.Scraper.CacheTTL, appLogger)
	newsRepo := repository.NewNewsScraperRepository(scrapeCacheRepo, domainLimiter, cfg.Scraper.CacheTTL, appLogger)
	sectorRepo := repository.NewSectorRepository(scrapeCacheRepo, domainLimiter, cfg.Scraper.CacheTTL, appLogger)

	// Initialize Telegram notifier
	var telegramBot telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramBot, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	analyzerSvc := service.NewAnalyzerService(
		cfg, appLogger,
		aiRepo, marketDataRepo,
		openInsiderRepo, investegateRepo, newsRepo, sectorRepo,
		tickersRepo, analysisRepo, synthesisRepo, recommendationRepo, settingsRepo,
		telegramBot,
	)
	tickerSvc := service.NewTickerService(cfg, appLogger, tickersRepo, analysisRepo, synthesisRepo)
	backtestSvc := service.NewBacktestService(appLogger, marketDataRepo, tickersRepo, recommendationRepo)
	settingsSvc := service.NewSettingsService(appLogger, settingsRepo)
	queueSvc := service.NewRefreshQueueService(appLogger, redisClient.Client, tickersRepo, analyzerSvc)

	// Start the stream consumer for batch refreshes
	redisConsumer := consumer.NewRedisConsumer(redisClient.Client, queueSvc, appLogger, 30*time.Minute)
	redisConsumer.Start(ctx)
	defer redisConsumer.Stop()

	// Schedule the daily batch refresh
	if cfg.Analyzer.RefreshCron != "" {
		cronRunner := cron.New()
		_, err := cronRunner.AddFunc(cfg.Analyzer.RefreshCron, func() {
			if _, err := queueSvc.EnqueueAll(ctx); err != nil {
				appLogger.Error("Scheduled refresh enqueue failed", logger.ErrorField(err))
			}
		})
		if err != nil {
			appLogger.Fatal("Invalid refresh cron expression", logger.ErrorField(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	tickerHandler := delivery.NewTickerHandler(tickerSvc, analyzerSvc, queueSvc, appLogger)
	tickerHandler.RegisterRoutes(apiV1.Group("/tickers"))
	tickerHandler.RegisterDashboardRoutes(apiV1)

	backtestHandler := delivery.NewBacktestHandler(backtestSvc, appLogger)
	backtestHandler.RegisterRoutes(apiV1.Group("/backtest"))

	settingsHandler := delivery.NewSettingsHandler(settingsSvc, appLogger)
	settingsHandler.RegisterRoutes(apiV1.Group("/settings"))

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Selector API
// @version 1.0
// @description Multi-signal stock analysis and recommendation service.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "analyzer-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analyzer-service CLI: %s\n", err)
		os.Exit(1)
	}
}
