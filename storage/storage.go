package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Query is one answered time question.
type Query struct {
	ID        string `gorm:"primaryKey;size:36"`
	ChatID    int64  `gorm:"index:idx_queries_chat_created,priority:1;not null"`
	Input     string `gorm:"not null"`
	Source    string `gorm:"size:16;not null"` // grammar, fallback or rewrite
	Hour      int
	Minute    int
	At        time.Time // always stored in UTC
	Relative  bool
	CreatedAt time.Time `gorm:"index:idx_queries_chat_created,priority:2"`
}

// Store defines the persistence operations used by the service.
type Store interface {
	SaveQuery(ctx context.Context, q Query) error
	RecentQueries(ctx context.Context, chatID int64, limit int) ([]Query, error)
}

// SQLiteStore is a concrete implementation of Store backed by SQLite via gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates it.
func Open(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := InitSchema(db); err != nil {
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore constructs a new SQLiteStore.
func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// InitSchema creates the required tables if they do not already exist.
// This function is idempotent and safe to call on every startup.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&Query{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveQuery stores a single answered query. A missing ID is generated and a
// missing CreatedAt is set to now.
func (s *SQLiteStore) SaveQuery(ctx context.Context, q Query) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	q.CreatedAt = q.CreatedAt.UTC()
	q.At = q.At.UTC()
	return s.db.WithContext(ctx).Create(&q).Error
}

// RecentQueries returns the newest queries for a chat, newest first.
// A hard limit is applied to avoid unbounded memory usage.
func (s *SQLiteStore) RecentQueries(ctx context.Context, chatID int64, limit int) ([]Query, error) {
	if limit <= 0 {
		limit = 100
	}

	var out []Query
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].At = out[i].At.UTC()
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}
