package entity

import "time"

// ScrapeCacheEntry is a URL-keyed cached HTTP response body. A hit requires
// ExpiresAt to be in the future.
type ScrapeCacheEntry struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"type:text;not null;index" json:"url"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	FetchedAt time.Time `gorm:"autoCreateTime" json:"fetched_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// TableName specifies the table name for the ScrapeCacheEntry model.
func (ScrapeCacheEntry) TableName() string {
	return "scrape_cache"
}
