// Package scoring contains the pure weighting and recommendation functions
// used by the analyzer pipeline and by the settings API. Everything here is
// deterministic and side-effect free.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// fallbackWeight applies to categories that appear in a score map but are
// missing from the weight table.
const fallbackWeight = 0.1

// DefaultCategoryWeights is the balanced seven-category weight table. The
// values sum to 1.0.
var DefaultCategoryWeights = map[string]float64{
	"fundamentals":      0.20,
	"analyst_consensus": 0.15,
	"insider_activity":  0.10,
	"technicals":        0.20,
	"sentiment":         0.10,
	"sector_context":    0.10,
	"risk_assessment":   0.15,
}

// Preset is a named weight configuration for an investment strategy.
type Preset struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Weights     map[string]float64 `json:"weights"`
}

// Presets holds the fixed strategy presets keyed by preset id.
var Presets = map[string]Preset{
	"balanced": {
		Name:        "Balanced",
		Description: "Default balanced approach for general investing",
		Weights:     copyWeights(DefaultCategoryWeights),
	},
	"growth": {
		Name:        "Growth",
		Description: "Prioritizes fundamentals, analyst consensus, and technical momentum",
		Weights: map[string]float64{
			"fundamentals":      0.25,
			"analyst_consensus": 0.20,
			"insider_activity":  0.05,
			"technicals":        0.25,
			"sentiment":         0.10,
			"sector_context":    0.05,
			"risk_assessment":   0.10,
		},
	},
	"value": {
		Name:        "Value",
		Description: "Focuses on fundamentals, risk assessment, and insider confidence",
		Weights: map[string]float64{
			"fundamentals":      0.30,
			"analyst_consensus": 0.10,
			"insider_activity":  0.15,
			"technicals":        0.10,
			"sentiment":         0.05,
			"sector_context":    0.10,
			"risk_assessment":   0.20,
		},
	},
	"income": {
		Name:        "Income/Dividend",
		Description: "Emphasizes fundamentals stability and risk assessment for dividend stocks",
		Weights: map[string]float64{
			"fundamentals":      0.30,
			"analyst_consensus": 0.10,
			"insider_activity":  0.10,
			"technicals":        0.05,
			"sentiment":         0.10,
			"sector_context":    0.15,
			"risk_assessment":   0.20,
		},
	},
	"momentum": {
		Name:        "Momentum",
		Description: "Weights technicals and sentiment heavily for trend-following",
		Weights: map[string]float64{
			"fundamentals":      0.10,
			"analyst_consensus": 0.20,
			"insider_activity":  0.05,
			"technicals":        0.35,
			"sentiment":         0.15,
			"sector_context":    0.05,
			"risk_assessment":   0.10,
		},
	},
}

// WeightedScore computes the weighted average of signalScores restricted to
// the categories present in the map. A nil weights map uses
// DefaultCategoryWeights; categories absent from the weight table use the
// fallback weight. Returns 0.0 for an empty score map. The result is rounded
// to 2 decimal places.
func WeightedScore(signalScores map[string]float64, weights map[string]float64) float64 {
	categoryWeights := weights
	if categoryWeights == nil {
		categoryWeights = DefaultCategoryWeights
	}

	var totalWeight, weightedSum float64
	for category, score := range signalScores {
		weight, ok := categoryWeights[category]
		if !ok {
			weight = fallbackWeight
		}
		weightedSum += score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0.0
	}
	return round2(weightedSum / totalWeight)
}

// ScoreToRecommendation maps a score to a buy/hold/sell label. Boundaries are
// inclusive: 3.0 is buy and -3.0 is sell.
func ScoreToRecommendation(score float64) string {
	switch {
	case score >= 3.0:
		return "buy"
	case score <= -3.0:
		return "sell"
	default:
		return "hold"
	}
}

// ValidateWeights checks that weights covers exactly the seven fixed
// categories, contains no negative values, and sums to 1.0 within the
// [0.99, 1.01] tolerance band.
func ValidateWeights(weights map[string]float64) (bool, string) {
	var missing, extra []string
	for category := range DefaultCategoryWeights {
		if _, ok := weights[category]; !ok {
			missing = append(missing, category)
		}
	}
	for category := range weights {
		if _, ok := DefaultCategoryWeights[category]; !ok {
			extra = append(extra, category)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return false, fmt.Sprintf("Missing categories: %s", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return false, fmt.Sprintf("Unknown categories: %s", strings.Join(extra, ", "))
	}

	var total float64
	for category, weight := range weights {
		if weight < 0 {
			return false, fmt.Sprintf("Weight for %s cannot be negative", category)
		}
		total += weight
	}
	if total < 0.99 || total > 1.01 {
		return false, fmt.Sprintf("Weights must sum to 100%% (currently %.1f%%)", total*100)
	}

	return true, ""
}

// NormalizeWeights rescales a positive weight map so values sum to 1.0,
// rounding to 4 decimal places. A zero-total map yields the default table.
func NormalizeWeights(weights map[string]float64) map[string]float64 {
	var total float64
	for _, weight := range weights {
		total += weight
	}
	if total == 0 {
		return copyWeights(DefaultCategoryWeights)
	}
	normalized := make(map[string]float64, len(weights))
	for category, weight := range weights {
		normalized[category] = math.Round(weight/total*10000) / 10000
	}
	return normalized
}

func copyWeights(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
