package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"billdocs/internal/logger"
)

// KVSlot is one row of the kv_slots table.
type KVSlot struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KVSlot) TableName() string {
	return "kv_slots"
}

// SQLiteSlot persists slots in a single SQLite table.
type SQLiteSlot struct {
	db  *gorm.DB
	log zerolog.Logger
}

// OpenSQLiteSlot opens (or creates) the database at dsn and migrates the slot table.
func OpenSQLiteSlot(dsn string) (*SQLiteSlot, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	return NewSQLiteSlot(db)
}

// NewSQLiteSlot wraps an existing gorm handle.
func NewSQLiteSlot(db *gorm.DB) (*SQLiteSlot, error) {
	if err := db.AutoMigrate(&KVSlot{}); err != nil {
		return nil, fmt.Errorf("migrate kv_slots: %w", err)
	}
	return &SQLiteSlot{
		db:  db,
		log: logger.WithComponent("sqlite-slot"),
	}, nil
}

func (s *SQLiteSlot) Get(ctx context.Context, key string) (string, bool, error) {
	var row KVSlot
	err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %q: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQLiteSlot) Set(ctx context.Context, key, value string) error {
	row := KVSlot{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}

	s.log.Debug().
		Str("key", key).
		Int("bytes", len(value)).
		Msg("Slot written")
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
