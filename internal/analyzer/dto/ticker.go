package dto

import (
	"time"

	"golang-stock-selector/internal/entity"
)

// CreateTickerRequest is the payload for adding a tracked ticker.
type CreateTickerRequest struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Sector *string `json:"sector"`
	Market string  `json:"market"`
}

// DashboardRow is one ticker with its latest synthesis, if any.
type DashboardRow struct {
	Symbol         string     `json:"symbol"`
	Name           string     `json:"name"`
	Sector         *string    `json:"sector"`
	Market         string     `json:"market"`
	OverallScore   *float64   `json:"overall_score"`
	Recommendation *string    `json:"recommendation"`
	LastRefreshed  *time.Time `json:"last_refreshed"`
}

// Dashboard is the dashboard payload with the staleness flag.
type Dashboard struct {
	Rows  []DashboardRow `json:"rows"`
	Stale bool           `json:"stale"`
}

// TickerDetail is one ticker with its latest per-category analyses, latest
// synthesis and recent synthesis history.
type TickerDetail struct {
	Ticker    entity.Ticker           `json:"ticker"`
	Analyses  []entity.SignalAnalysis `json:"analyses"`
	Synthesis *entity.Synthesis       `json:"synthesis"`
	History   []entity.Synthesis      `json:"history"`
}

// UpdateWeightsRequest is the payload for the settings endpoint.
type UpdateWeightsRequest struct {
	Weights map[string]float64 `json:"weights"`
	Preset  string             `json:"preset"`
}

// ScoringSettings is the current weight configuration.
type ScoringSettings struct {
	Weights map[string]float64 `json:"weights"`
	Preset  string             `json:"preset"`
}

// StreamDataTickerRefresh is the payload carried on the ticker refresh
// stream.
type StreamDataTickerRefresh struct {
	Symbol string `json:"symbol"`
}
