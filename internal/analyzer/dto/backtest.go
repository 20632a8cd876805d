package dto

import "time"

// HorizonOutcome records how a recommendation fared at one horizon.
type HorizonOutcome struct {
	PriceThen float64 `json:"price_then"`
	PctChange float64 `json:"pct_change"`
	Correct   bool    `json:"correct"`
}

// BacktestResult is the evaluation of a single historical recommendation.
// Outcomes holds only the horizons that were actually evaluated.
type BacktestResult struct {
	ID             int64                  `json:"id"`
	Symbol         string                 `json:"symbol"`
	Name           string                 `json:"name"`
	Recommendation string                 `json:"recommendation"`
	OverallScore   float64                `json:"overall_score"`
	PriceAtRec     *float64               `json:"price_at_rec"`
	CreatedAt      time.Time              `json:"created_at"`
	Outcomes       map[int]HorizonOutcome `json:"outcomes"`
}

// HitRate is the per-horizon aggregate.
type HitRate struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Rate    float64 `json:"rate"`
}

// BacktestSummary is the aggregate over all evaluated recommendations. A
// recommendation counts toward Correct when any of its evaluated horizons was
// correct.
type BacktestSummary struct {
	Total    int              `json:"total"`
	Correct  int              `json:"correct"`
	Results  []BacktestResult `json:"results"`
	HitRates map[int]HitRate  `json:"hit_rates"`
}
