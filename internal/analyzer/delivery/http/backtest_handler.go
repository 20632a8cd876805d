package http

import (
	"net/http"

	"golang-stock-selector/internal/analyzer/service"
	"golang-stock-selector/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BacktestHandler handles HTTP requests for recommendation backtesting.
type BacktestHandler struct {
	backtestService service.BacktestService
	logger          *logger.Logger
}

// NewBacktestHandler creates a new BacktestHandler.
func NewBacktestHandler(backtestService service.BacktestService, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{backtestService: backtestService, logger: log}
}

// RegisterRoutes registers the backtest routes to the Echo group.
func (h *BacktestHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.RunBacktest)
}

// RunBacktest godoc
// @Summary Evaluate historical recommendations against realized prices
// @Tags backtest
// @Produce  json
// @Param   symbol  query    string false    "Restrict to one ticker"
// @Success 200 {object} dto.BacktestSummary
// @Failure 500 {object} dto.ErrorResponse
// @Router /backtest [get]
func (h *BacktestHandler) RunBacktest(c echo.Context) error {
	summary, err := h.backtestService.Run(c.Request().Context(), c.QueryParam("symbol"))
	if err != nil {
		h.logger.Error("Backtest failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Backtest failed"})
	}
	return c.JSON(http.StatusOK, summary)
}
