package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a workspace row does not exist
var ErrNotFound = errors.New("record not found")

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"` // workspace the key belongs to
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalWeeks   int    `gorm:"default:0" json:"total_weeks"`
	TotalSlots   int    `gorm:"default:0" json:"total_slots"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ParticipantList is one named role list of a workspace
type ParticipantList struct {
	ID           uint           `gorm:"primaryKey"`
	Workspace    string         `gorm:"uniqueIndex:idx_ws_list;not null"`
	Key          string         `gorm:"uniqueIndex:idx_ws_list;not null"`
	Name         string         `gorm:"not null;default:''"`
	Participants datatypes.JSON `gorm:"not null"`
	UpdatedAt    time.Time
}

// RotationState keeps the rotation cursors of a workspace between runs
type RotationState struct {
	ID        uint           `gorm:"primaryKey"`
	Workspace string         `gorm:"unique;not null"`
	Cursors   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// Draft is the schedule a workspace is currently editing
type Draft struct {
	ID        uint           `gorm:"primaryKey"`
	Workspace string         `gorm:"unique;not null"`
	Weeks     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// ScheduleRecord is an archived schedule
type ScheduleRecord struct {
	ID               string `gorm:"primaryKey;size:64"`
	Workspace        string `gorm:"index;not null"`
	Title            string
	SavedAt          time.Time `gorm:"index"`
	WeekCount        int
	Weeks            datatypes.JSON
	ParticipantLists datatypes.JSON
	RotationState    datatypes.JSON
	AssignmentCounts datatypes.JSON
	CreatedAt        time.Time
}

// Open connects to Postgres when cfg.URL is set, SQLite at cfg.Path
// otherwise, and migrates the schema
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var db *gorm.DB
	var err error
	driver := "postgres"
	if cfg.URL != "" {
		gcfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		}), gcfg)
	} else {
		driver = "sqlite"
		path := cfg.Path
		if path == "" {
			path = "rotation.db"
		}
		db, err = gorm.Open(sqlite.Open(path), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection keeps :memory: databases shared and writes serialized
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(
		&APIKey{}, &APIUsage{}, &MasterUser{},
		&ParticipantList{}, &RotationState{}, &Draft{}, &ScheduleRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if logger != nil {
		logger.Info("database ready", zap.String("driver", driver))
	}
	return db, nil
}
