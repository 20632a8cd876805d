package service

import (
	"context"
	"errors"
	"fmt"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/internal/scoring"
	"golang-stock-selector/pkg/logger"
)

var (
	// ErrInvalidWeights is returned when a custom weight table fails
	// validation.
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrUnknownPreset is returned for a preset id that does not exist.
	ErrUnknownPreset = errors.New("unknown preset")
)

// SettingsService manages the scoring weight configuration.
type SettingsService interface {
	Get(ctx context.Context) (*dto.ScoringSettings, error)
	Update(ctx context.Context, req dto.UpdateWeightsRequest) (*dto.ScoringSettings, error)
	Presets() map[string]scoring.Preset
}

type settingsService struct {
	log          *logger.Logger
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(log *logger.Logger, settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{log: log, settingsRepo: settingsRepo}
}

func (s *settingsService) Get(ctx context.Context) (*dto.ScoringSettings, error) {
	weights, err := s.settingsRepo.GetScoringWeights(ctx)
	if err != nil {
		return nil, err
	}
	preset, err := s.settingsRepo.GetActivePreset(ctx)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		weights = scoring.NormalizeWeights(scoring.DefaultCategoryWeights)
		if preset == "" {
			preset = "balanced"
		}
	}
	return &dto.ScoringSettings{Weights: weights, Preset: preset}, nil
}

// Update applies either a named preset or a custom weight table. Custom
// weights are validated and normalized before saving.
func (s *settingsService) Update(ctx context.Context, req dto.UpdateWeightsRequest) (*dto.ScoringSettings, error) {
	var weights map[string]float64
	preset := req.Preset

	if preset != "" && preset != "custom" {
		p, ok := scoring.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, preset)
		}
		weights = scoring.NormalizeWeights(p.Weights)
	} else {
		valid, msg := scoring.ValidateWeights(req.Weights)
		if !valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidWeights, msg)
		}
		weights = scoring.NormalizeWeights(req.Weights)
		preset = "custom"
	}

	if err := s.settingsRepo.SaveScoringWeights(ctx, weights); err != nil {
		return nil, err
	}
	if err := s.settingsRepo.SaveActivePreset(ctx, preset); err != nil {
		return nil, err
	}
	s.log.Info("Scoring weights updated", logger.StringField("preset", preset))
	return &dto.ScoringSettings{Weights: weights, Preset: preset}, nil
}

func (s *settingsService) Presets() map[string]scoring.Preset {
	return scoring.Presets
}
