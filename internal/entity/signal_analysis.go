package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SignalAnalysis is one LLM-scored category result for a ticker. Rows are
// append-only: every analysis run inserts, nothing updates. InputHash is the
// content digest of RawData and doubles as the cache key.
type SignalAnalysis struct {
	ID         int64          `gorm:"primaryKey" json:"id"`
	Symbol     string         `gorm:"type:varchar(20);not null;index:idx_analyses_cache" json:"symbol"`
	Category   SignalCategory `gorm:"type:varchar(30);not null;index:idx_analyses_cache" json:"category"`
	Score      float64        `json:"score"`
	Confidence Confidence     `gorm:"type:varchar(10);not null" json:"confidence"`
	Narrative  string         `gorm:"type:text" json:"narrative"`
	RawData    datatypes.JSON `gorm:"type:jsonb" json:"raw_data"`
	InputHash  string         `gorm:"type:varchar(64);not null;index:idx_analyses_cache" json:"input_hash"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the SignalAnalysis model.
func (SignalAnalysis) TableName() string {
	return "signal_analyses"
}
