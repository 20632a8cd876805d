package service

import (
	"context"
	"testing"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/scoring"
	"golang-stock-selector/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_DefaultsWhenUnset(t *testing.T) {
	svc := NewSettingsService(logger.NewNop(), &fakeSettingsRepo{})
	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "balanced", settings.Preset)
	assert.InDelta(t, 0.20, settings.Weights["fundamentals"], 1e-9)
}

func TestSettings_ApplyPreset(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(logger.NewNop(), repo)

	settings, err := svc.Update(context.Background(), dto.UpdateWeightsRequest{Preset: "momentum"})
	require.NoError(t, err)
	assert.Equal(t, "momentum", settings.Preset)
	assert.Equal(t, scoring.Presets["momentum"].Weights["technicals"], settings.Weights["technicals"])

	stored, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "momentum", stored.Preset)
}

func TestSettings_UnknownPreset(t *testing.T) {
	svc := NewSettingsService(logger.NewNop(), &fakeSettingsRepo{})
	_, err := svc.Update(context.Background(), dto.UpdateWeightsRequest{Preset: "yolo"})
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestSettings_CustomWeights(t *testing.T) {
	svc := NewSettingsService(logger.NewNop(), &fakeSettingsRepo{})
	weights := map[string]float64{}
	for category, weight := range scoring.DefaultCategoryWeights {
		weights[category] = weight
	}
	settings, err := svc.Update(context.Background(), dto.UpdateWeightsRequest{Weights: weights})
	require.NoError(t, err)
	assert.Equal(t, "custom", settings.Preset)
}

func TestSettings_InvalidCustomWeights(t *testing.T) {
	svc := NewSettingsService(logger.NewNop(), &fakeSettingsRepo{})
	_, err := svc.Update(context.Background(), dto.UpdateWeightsRequest{
		Weights: map[string]float64{"fundamentals": 1.0},
	})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}
