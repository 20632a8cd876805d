package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/internal/analyzer/service"
	"golang-stock-selector/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TickerHandler handles HTTP requests for tracked tickers.
type TickerHandler struct {
	tickerService   service.TickerService
	analyzerService service.AnalyzerService
	queueService    service.RefreshQueueService
	logger          *logger.Logger
}

// NewTickerHandler creates a new TickerHandler.
func NewTickerHandler(
	tickerService service.TickerService,
	analyzerService service.AnalyzerService,
	queueService service.RefreshQueueService,
	log *logger.Logger,
) *TickerHandler {
	return &TickerHandler{
		tickerService:   tickerService,
		analyzerService: analyzerService,
		queueService:    queueService,
		logger:          log,
	}
}

// RegisterRoutes registers the ticker routes to the Echo group.
func (h *TickerHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateTicker)
	g.GET("", h.GetAllTickers)
	g.GET("/:symbol", h.GetTickerDetail)
	g.DELETE("/:symbol", h.DeleteTicker)
	g.GET("/:symbol/refresh", h.RefreshTicker)
}

// RegisterDashboardRoutes registers the dashboard and batch refresh routes.
func (h *TickerHandler) RegisterDashboardRoutes(g *echo.Group) {
	g.GET("/dashboard", h.GetDashboard)
	g.POST("/refresh", h.RefreshAll)
}

// CreateTicker godoc
// @Summary Add a tracked ticker
// @Description Add a stock symbol to the tracked list
// @Tags tickers
// @Accept  json
// @Produce  json
// @Param   ticker  body    dto.CreateTickerRequest   true    "Ticker to track"
// @Success 201 {object} entity.Ticker
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers [post]
func (h *TickerHandler) CreateTicker(c echo.Context) error {
	var req dto.CreateTickerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	ticker, err := h.tickerService.Create(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTicker) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to create ticker", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create ticker"})
	}

	return c.JSON(http.StatusCreated, ticker)
}

// GetAllTickers godoc
// @Summary List tracked tickers
// @Tags tickers
// @Produce  json
// @Success 200 {array} entity.Ticker
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers [get]
func (h *TickerHandler) GetAllTickers(c echo.Context) error {
	tickers, err := h.tickerService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list tickers", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list tickers"})
	}
	return c.JSON(http.StatusOK, tickers)
}

// GetTickerDetail godoc
// @Summary Get a ticker with its latest analyses and synthesis
// @Tags tickers
// @Produce  json
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} dto.TickerDetail
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers/{symbol} [get]
func (h *TickerHandler) GetTickerDetail(c echo.Context) error {
	detail, err := h.tickerService.GetDetail(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, repository.ErrTickerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Ticker not found"})
		}
		h.logger.Error("Failed to get ticker detail", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get ticker"})
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteTicker godoc
// @Summary Delete a tracked ticker and all of its analysis history
// @Tags tickers
// @Produce  json
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers/{symbol} [delete]
func (h *TickerHandler) DeleteTicker(c echo.Context) error {
	if err := h.tickerService.Delete(c.Request().Context(), c.Param("symbol")); err != nil {
		if errors.Is(err, repository.ErrTickerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Ticker not found"})
		}
		h.logger.Error("Failed to delete ticker", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete ticker"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RefreshTicker godoc
// @Summary Run the analysis pipeline for a ticker
// @Description Streams pipeline progress as Server-Sent Events
// @Tags tickers
// @Produce  text/event-stream
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} dto.RefreshProgress
// @Router /tickers/{symbol}/refresh [get]
func (h *TickerHandler) RefreshTicker(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for event := range h.analyzerService.Analyze(ctx, c.Param("symbol")) {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			// Client disconnected; the pipeline stops on ctx cancellation.
			return nil
		}
		w.Flush()
	}
	return nil
}

// GetDashboard godoc
// @Summary Dashboard of all tracked tickers with their latest recommendations
// @Tags dashboard
// @Produce  json
// @Success 200 {object} dto.Dashboard
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (h *TickerHandler) GetDashboard(c echo.Context) error {
	dashboard, err := h.tickerService.Dashboard(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to build dashboard"})
	}
	return c.JSON(http.StatusOK, dashboard)
}

// RefreshAll godoc
// @Summary Queue a refresh for every tracked ticker
// @Tags dashboard
// @Produce  json
// @Success 202 {object} map[string]int
// @Failure 500 {object} dto.ErrorResponse
// @Router /refresh [post]
func (h *TickerHandler) RefreshAll(c echo.Context) error {
	queued, err := h.queueService.EnqueueAll(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to queue refreshes", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to queue refreshes"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"queued": queued})
}
