package service

import (
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"
)

var validConfidenceLevels = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// validateSignalResult clamps the score to [-10, +10] and forces unknown
// confidence levels down to "low". The input is not mutated.
func validateSignalResult(log *logger.Logger, result dto.LLMResult) dto.LLMResult {
	validated := result.Clone()

	rawScore, _ := validated.Score()
	clamped := clampScore(rawScore)
	if clamped != rawScore {
		log.Warn("Score out of range [-10, +10], clamped",
			logger.Float64Field("raw_score", rawScore),
			logger.Float64Field("clamped_score", clamped),
		)
	}
	validated["score"] = clamped

	confidence := validated.Confidence()
	if confidence == "" {
		confidence = "low"
	}
	if !validConfidenceLevels[confidence] {
		log.Warn("Invalid confidence level, defaulting to low",
			logger.StringField("confidence", confidence),
		)
		confidence = "low"
	}
	validated["confidence"] = confidence

	return validated
}

func clampScore(score float64) float64 {
	if score > 10 {
		return 10
	}
	if score < -10 {
		return -10
	}
	return score
}
