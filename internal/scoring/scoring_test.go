package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedScore_UniformScores(t *testing.T) {
	scores := map[string]float64{}
	for category := range DefaultCategoryWeights {
		scores[category] = 5.0
	}
	assert.Equal(t, 5.0, WeightedScore(scores, nil))
}

func TestWeightedScore_EmptyScores(t *testing.T) {
	assert.Equal(t, 0.0, WeightedScore(map[string]float64{}, nil))
}

func TestWeightedScore_SubsetRenormalizes(t *testing.T) {
	scores := map[string]float64{
		"fundamentals": 8.0,
		"technicals":   4.0,
	}
	// Both categories weigh 0.20, so the result is the plain average.
	assert.Equal(t, 6.0, WeightedScore(scores, nil))
}

func TestWeightedScore_UnknownCategoryUsesFallbackWeight(t *testing.T) {
	scores := map[string]float64{
		"fundamentals": 10.0,
		"mystery":      0.0,
	}
	// 10*0.2 + 0*0.1 over 0.3 total weight.
	assert.InDelta(t, 6.67, WeightedScore(scores, nil), 0.001)
}

func TestWeightedScore_CustomWeights(t *testing.T) {
	scores := map[string]float64{"fundamentals": 10.0, "technicals": -10.0}
	weights := map[string]float64{"fundamentals": 0.75, "technicals": 0.25}
	assert.Equal(t, 5.0, WeightedScore(scores, weights))
}

func TestScoreToRecommendation_Boundaries(t *testing.T) {
	assert.Equal(t, "buy", ScoreToRecommendation(3.0))
	assert.Equal(t, "buy", ScoreToRecommendation(10.0))
	assert.Equal(t, "hold", ScoreToRecommendation(2.99))
	assert.Equal(t, "hold", ScoreToRecommendation(0.0))
	assert.Equal(t, "hold", ScoreToRecommendation(-2.99))
	assert.Equal(t, "sell", ScoreToRecommendation(-3.0))
	assert.Equal(t, "sell", ScoreToRecommendation(-10.0))
}

func TestValidateWeights_Valid(t *testing.T) {
	valid, msg := ValidateWeights(DefaultCategoryWeights)
	assert.True(t, valid)
	assert.Empty(t, msg)
}

func TestValidateWeights_WithinTolerance(t *testing.T) {
	weights := map[string]float64{}
	for category, weight := range DefaultCategoryWeights {
		weights[category] = weight
	}
	weights["fundamentals"] += 0.009
	valid, _ := ValidateWeights(weights)
	assert.True(t, valid)
}

func TestValidateWeights_MissingCategory(t *testing.T) {
	weights := map[string]float64{}
	for category, weight := range DefaultCategoryWeights {
		weights[category] = weight
	}
	delete(weights, "sentiment")
	valid, msg := ValidateWeights(weights)
	assert.False(t, valid)
	assert.Equal(t, "Missing categories: sentiment", msg)
}

func TestValidateWeights_UnknownCategory(t *testing.T) {
	weights := map[string]float64{}
	for category, weight := range DefaultCategoryWeights {
		weights[category] = weight
	}
	weights["astrology"] = 0.0
	valid, msg := ValidateWeights(weights)
	assert.False(t, valid)
	assert.Equal(t, "Unknown categories: astrology", msg)
}

func TestValidateWeights_Negative(t *testing.T) {
	weights := map[string]float64{}
	for category, weight := range DefaultCategoryWeights {
		weights[category] = weight
	}
	weights["fundamentals"] = -0.20
	valid, msg := ValidateWeights(weights)
	assert.False(t, valid)
	assert.Equal(t, "Weight for fundamentals cannot be negative", msg)
}

func TestValidateWeights_BadSum(t *testing.T) {
	weights := map[string]float64{}
	for category := range DefaultCategoryWeights {
		weights[category] = 0.10
	}
	valid, msg := ValidateWeights(weights)
	assert.False(t, valid)
	assert.Equal(t, "Weights must sum to 100% (currently 70.0%)", msg)
}

func TestNormalizeWeights(t *testing.T) {
	normalized := NormalizeWeights(map[string]float64{"a": 1, "b": 1, "c": 2})
	assert.Equal(t, 0.25, normalized["a"])
	assert.Equal(t, 0.25, normalized["b"])
	assert.Equal(t, 0.5, normalized["c"])
}

func TestNormalizeWeights_ZeroTotalFallsBackToDefault(t *testing.T) {
	normalized := NormalizeWeights(map[string]float64{"a": 0})
	assert.Equal(t, DefaultCategoryWeights, normalized)
}

func TestPresets_AllValid(t *testing.T) {
	require.Contains(t, Presets, "balanced")
	for id, preset := range Presets {
		valid, msg := ValidateWeights(preset.Weights)
		assert.True(t, valid, "preset %s: %s", id, msg)
	}
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	var total float64
	for _, weight := range DefaultCategoryWeights {
		total += weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}
