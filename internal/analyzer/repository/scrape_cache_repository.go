package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-selector/internal/entity"

	"gorm.io/gorm"
)

type ScrapeCacheRepository interface {
	// Get returns the freshest unexpired entry for url, or nil on a miss.
	Get(ctx context.Context, url string) (*entity.ScrapeCacheEntry, error)
	Save(ctx context.Context, url, content string, ttl time.Duration) error
}

type scrapeCacheRepository struct {
	db *gorm.DB
}

func NewScrapeCacheRepository(db *gorm.DB) ScrapeCacheRepository {
	return &scrapeCacheRepository{db: db}
}

func (r *scrapeCacheRepository) Get(ctx context.Context, url string) (*entity.ScrapeCacheEntry, error) {
	var entry entity.ScrapeCacheEntry
	err := r.db.WithContext(ctx).
		Where("url = ? AND expires_at > ?", url, time.Now()).
		Order("fetched_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scrapeCacheRepository) Save(ctx context.Context, url, content string, ttl time.Duration) error {
	entry := entity.ScrapeCacheEntry{
		URL:       url,
		Content:   content,
		ExpiresAt: time.Now().Add(ttl),
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}
