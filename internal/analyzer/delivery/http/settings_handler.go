package http

import (
	"errors"
	"net/http"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/service"
	"golang-stock-selector/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SettingsHandler handles HTTP requests for scoring configuration.
type SettingsHandler struct {
	settingsService service.SettingsService
	logger          *logger.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: log}
}

// RegisterRoutes registers the settings routes to the Echo group.
func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/scoring", h.GetScoringSettings)
	g.PUT("/scoring", h.UpdateScoringSettings)
	g.GET("/presets", h.GetPresets)
}

// GetScoringSettings godoc
// @Summary Get the active scoring weights
// @Tags settings
// @Produce  json
// @Success 200 {object} dto.ScoringSettings
// @Failure 500 {object} dto.ErrorResponse
// @Router /settings/scoring [get]
func (h *SettingsHandler) GetScoringSettings(c echo.Context) error {
	settings, err := h.settingsService.Get(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to load scoring settings", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load settings"})
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateScoringSettings godoc
// @Summary Update scoring weights, either from a preset or a custom table
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   settings  body    dto.UpdateWeightsRequest   true    "Weights or preset id"
// @Success 200 {object} dto.ScoringSettings
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /settings/scoring [put]
func (h *SettingsHandler) UpdateScoringSettings(c echo.Context) error {
	var req dto.UpdateWeightsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	settings, err := h.settingsService.Update(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWeights) || errors.Is(err, service.ErrUnknownPreset) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to update scoring settings", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update settings"})
	}
	return c.JSON(http.StatusOK, settings)
}

// GetPresets godoc
// @Summary List the available scoring presets
// @Tags settings
// @Produce  json
// @Success 200 {object} map[string]scoring.Preset
// @Router /settings/presets [get]
func (h *SettingsHandler) GetPresets(c echo.Context) error {
	return c.JSON(http.StatusOK, h.settingsService.Presets())
}
