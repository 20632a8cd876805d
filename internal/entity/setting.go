package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Setting keys for the settings table.
const (
	SettingScoringWeights = "scoring_weights"
	SettingActivePreset   = "active_preset"
)

// Setting is a key-value row for configurable state such as scoring weights
// and the active preset name. Writes are idempotent upserts.
type Setting struct {
	Key       string         `gorm:"primaryKey;type:varchar(50)" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}
