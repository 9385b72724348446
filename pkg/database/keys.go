package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultRateLimit is the daily request quota of a new key
const DefaultRateLimit = 10000

// KeyPreview masks a key for listings, e.g. "ws-...ab12"
func KeyPreview(key string) string {
	if len(key) > 8 {
		return key[:3] + "..." + key[len(key)-4:]
	}
	return "****"
}

// FindOrCreateKey returns the record of a verified key, creating it on first use
func (s *Store) FindOrCreateKey(ctx context.Context, key, workspace string) (*APIKey, error) {
	var apiKey APIKey
	err := s.DB.WithContext(ctx).Where(APIKey{Key: key}).Attrs(APIKey{
		Name:       workspace,
		KeyPreview: KeyPreview(key),
		RateLimit:  DefaultRateLimit,
	}).FirstOrCreate(&apiKey).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s.DB.WithContext(ctx).Model(&apiKey).Update("last_used", &now)
	return &apiKey, nil
}

// CreateKey stores a freshly issued key
func (s *Store) CreateKey(ctx context.Context, key, workspace string, rateLimit int) (*APIKey, error) {
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	apiKey := APIKey{Key: key, Name: workspace, KeyPreview: KeyPreview(key), RateLimit: rateLimit}
	if err := s.DB.WithContext(ctx).Create(&apiKey).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

// ListKeys returns all API keys
func (s *Store) ListKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	err := s.DB.WithContext(ctx).Order("id").Find(&keys).Error
	return keys, err
}

// DeleteKey revokes a key by id
func (s *Store) DeleteKey(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&APIKey{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateKeyLimit changes the daily quota of a key
func (s *Store) UpdateKeyLimit(ctx context.Context, id uint, limit int) error {
	res := s.DB.WithContext(ctx).Model(&APIKey{}).Where("id = ?", id).Update("rate_limit", limit)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordUsage records API usage in the database using an efficient upsert
func (s *Store) RecordUsage(ctx context.Context, keyID uint, weeks, slots int) error {
	today := time.Now().UTC().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_weeks":   gorm.Expr("total_weeks + ?", weeks),
			"total_slots":   gorm.Expr("total_slots + ?", slots),
		}),
	}).Create(&APIUsage{
		KeyID:        keyID,
		Date:         today,
		RequestCount: 1,
		TotalWeeks:   weeks,
		TotalSlots:   slots,
	}).Error
}

// Usage returns the latest daily usage rows of a key
func (s *Store) Usage(ctx context.Context, keyID uint, days int) ([]APIUsage, error) {
	var usage []APIUsage
	err := s.DB.WithContext(ctx).Where("key_id = ?", keyID).Order("date desc").Limit(days).Find(&usage).Error
	return usage, err
}

// FindUser looks up an admin by username
func (s *Store) FindUser(ctx context.Context, username string) (*MasterUser, error) {
	var user MasterUser
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CountUsers returns the number of admins
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&MasterUser{}).Count(&n).Error
	return n, err
}

// CreateUser stores an admin
func (s *Store) CreateUser(ctx context.Context, user *MasterUser) error {
	return s.DB.WithContext(ctx).Create(user).Error
}
