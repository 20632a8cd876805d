package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Synthesis is the final recommendation for a ticker at one point in time.
// Append-only; the current state is the most recent row per symbol.
type Synthesis struct {
	ID             int64               `gorm:"primaryKey" json:"id"`
	Symbol         string              `gorm:"type:varchar(20);not null;index" json:"symbol"`
	OverallScore   float64             `json:"overall_score"`
	Recommendation RecommendationLabel `gorm:"type:varchar(10);not null" json:"recommendation"`
	Narrative      string              `gorm:"type:text" json:"narrative"`
	SignalScores   datatypes.JSON      `gorm:"type:jsonb" json:"signal_scores"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Synthesis model.
func (Synthesis) TableName() string {
	return "syntheses"
}
