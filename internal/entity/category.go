package entity

// SignalCategory is one of the seven analytical dimensions scored before
// synthesis.
type SignalCategory string

const (
	CategoryFundamentals     SignalCategory = "fundamentals"
	CategoryAnalystConsensus SignalCategory = "analyst_consensus"
	CategoryInsiderActivity  SignalCategory = "insider_activity"
	CategoryTechnicals       SignalCategory = "technicals"
	CategorySentiment        SignalCategory = "sentiment"
	CategorySectorContext    SignalCategory = "sector_context"
	CategoryRiskAssessment   SignalCategory = "risk_assessment"
)

// AllCategories lists every category in synthesis order.
var AllCategories = []SignalCategory{
	CategoryFundamentals,
	CategoryAnalystConsensus,
	CategoryInsiderActivity,
	CategoryTechnicals,
	CategorySentiment,
	CategorySectorContext,
	CategoryRiskAssessment,
}

// Confidence is the LLM's self-reported confidence for a category score.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// RecommendationLabel is the final buy/hold/sell call.
type RecommendationLabel string

const (
	RecommendationBuy  RecommendationLabel = "buy"
	RecommendationHold RecommendationLabel = "hold"
	RecommendationSell RecommendationLabel = "sell"
)

const (
	MarketUS = "US"
	MarketUK = "UK"
)
