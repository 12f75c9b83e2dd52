// Package events persists a local journal of notable session events: fired
// alerts and trading actions. The journal backs the notification history feed
// and survives restarts; it is never consulted for valuation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Event kinds recorded in the journal.
const (
	KindAlertTriggered = "alert_triggered"
	KindTradeExecuted  = "trade_executed"
	KindPositionClosed = "position_closed"
	KindCloseAll       = "close_all"
	KindReset          = "challenge_reset"
)

// Event is one journal row.
type Event struct {
	ID        int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind      string         `json:"kind" gorm:"size:32;index"`
	Symbol    string         `json:"symbol" gorm:"size:20;index"`
	TraceID   string         `json:"trace_id" gorm:"size:40"`
	Message   string         `json:"message"`
	Detail    datatypes.JSON `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

func (Event) TableName() string { return "session_events" }

// Store wraps the SQLite-backed journal.
type Store struct {
	db *gorm.DB
}

// Open creates or migrates the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("event store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating event store dir failed: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Append writes one event. Detail may be any JSON-encodable value.
func (s *Store) Append(ctx context.Context, kind, symbol, traceID, message string, detail any) error {
	if s == nil || s.db == nil {
		return nil
	}
	evt := Event{
		Kind:      kind,
		Symbol:    symbol,
		TraceID:   traceID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("encoding event detail failed: %w", err)
		}
		evt.Detail = datatypes.JSON(raw)
	}
	return s.db.WithContext(ctx).Create(&evt).Error
}

// Recent returns the newest events, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []Event
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
