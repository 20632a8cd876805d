package entity

import "time"

// Recommendation is the lightweight historical record consumed by the
// backtester. PriceAtRec is nil when no quote was available at
// recommendation time, which excludes the row from backtesting.
type Recommendation struct {
	ID             int64               `gorm:"primaryKey" json:"id"`
	Symbol         string              `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Recommendation RecommendationLabel `gorm:"type:varchar(10);not null" json:"recommendation"`
	OverallScore   float64             `json:"overall_score"`
	PriceAtRec     *float64            `json:"price_at_rec"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Recommendation model.
func (Recommendation) TableName() string {
	return "recommendations"
}
