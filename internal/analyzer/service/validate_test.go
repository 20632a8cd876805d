package service

import (
	"testing"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignalResult_ClampsHigh(t *testing.T) {
	result := validateSignalResult(logger.NewNop(), dto.LLMResult{"score": 42.0, "confidence": "high"})
	score, _ := result.Score()
	assert.Equal(t, 10.0, score)
}

func TestValidateSignalResult_ClampsLow(t *testing.T) {
	result := validateSignalResult(logger.NewNop(), dto.LLMResult{"score": -42.0, "confidence": "low"})
	score, _ := result.Score()
	assert.Equal(t, -10.0, score)
}

func TestValidateSignalResult_MissingScoreDefaultsToZero(t *testing.T) {
	result := validateSignalResult(logger.NewNop(), dto.LLMResult{"confidence": "medium"})
	score, _ := result.Score()
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "medium", result.Confidence())
}

func TestValidateSignalResult_InvalidConfidence(t *testing.T) {
	result := validateSignalResult(logger.NewNop(), dto.LLMResult{"score": 1.0, "confidence": "certain"})
	assert.Equal(t, "low", result.Confidence())
}

func TestValidateSignalResult_MissingConfidence(t *testing.T) {
	result := validateSignalResult(logger.NewNop(), dto.LLMResult{"score": 1.0})
	assert.Equal(t, "low", result.Confidence())
}

func TestValidateSignalResult_DoesNotMutateInput(t *testing.T) {
	original := dto.LLMResult{"score": 99.0, "confidence": "high"}
	validateSignalResult(logger.NewNop(), original)
	score, _ := original.Score()
	assert.Equal(t, 99.0, score)
}
