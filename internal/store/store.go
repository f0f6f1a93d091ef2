// Package store records alert events.
package store

import (
	"context"
	"io"
	"time"

	"stock-notifier/internal/config"
	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
)

// Recorder persists alert events.
type Recorder interface {
	Record(ctx context.Context, ev models.AlertEvent) error
}

// Historian reads back recorded alert events, newest first.
type Historian interface {
	History(ctx context.Context, filter HistoryFilter) ([]models.AlertEvent, error)
}

// HistoryFilter narrows a history query.
type HistoryFilter struct {
	Ticker string
	Since  time.Time
	Limit  int
}

// MultiRecorder records each event to every recorder in order.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// Record attempts every recorder and joins their errors.
func (m *MultiRecorder) Record(ctx context.Context, ev models.AlertEvent) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return apperrors.Join(errs...)
}

// Close closes every recorder that holds resources.
func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return apperrors.Join(errs...)
}

// Open opens the event log and alert database named in cfg.
// The SQLite store is nil when no db_path is configured.
func Open(cfg config.StorageConfig) (*MultiRecorder, *SQLiteStore, error) {
	var recorders []Recorder

	if cfg.EventLog != "" {
		fl, err := NewFileLog(FileLogConfig{
			Path:       cfg.EventLog,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
		if err != nil {
			return nil, nil, err
		}
		recorders = append(recorders, fl)
	}

	var db *SQLiteStore
	if cfg.DBPath != "" {
		s, err := NewSQLiteStore(cfg.DBPath)
		if err != nil {
			_ = NewMultiRecorder(recorders...).Close()
			return nil, nil, err
		}
		db = s
		recorders = append(recorders, s)
	}

	return NewMultiRecorder(recorders...), db, nil
}
