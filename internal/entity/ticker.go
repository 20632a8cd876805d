package entity

import (
	"time"
)

// Ticker is a tracked stock symbol. Symbol is stored uppercase and unique;
// ResolvedSymbol is filled lazily once exchange resolution succeeds.
type Ticker struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Symbol         string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"symbol"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Sector         *string   `gorm:"type:varchar(100)" json:"sector"`
	Market         string    `gorm:"type:varchar(5);not null;default:US" json:"market"`
	ResolvedSymbol *string   `gorm:"type:varchar(20)" json:"resolved_symbol"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Ticker model.
func (Ticker) TableName() string {
	return "tickers"
}

// EffectiveSymbol returns the exchange-qualified symbol when resolved,
// otherwise the raw symbol.
func (t *Ticker) EffectiveSymbol() string {
	if t.ResolvedSymbol != nil && *t.ResolvedSymbol != "" {
		return *t.ResolvedSymbol
	}
	return t.Symbol
}
