package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
)

// SQLiteStore keeps alert history in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the alert database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	// No idle connections: the database file is closed once each query ends.
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alert_events (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		ticker TEXT NOT NULL,
		direction TEXT NOT NULL,
		current_price REAL NOT NULL,
		day_low REAL,
		day_high REAL,
		lower_threshold REAL,
		upper_threshold REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_alert_events_ticker_ts ON alert_events(ticker, timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record inserts ev into alert_events.
func (s *SQLiteStore) Record(ctx context.Context, ev models.AlertEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alert_events (id, timestamp, ticker, direction, current_price, day_low, day_high, lower_threshold, upper_threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Timestamp.UTC(), ev.Ticker, string(ev.Direction),
		ev.Snapshot.CurrentPrice, ev.Snapshot.DayLow, ev.Snapshot.DayHigh,
		ev.Thresholds.Lower, ev.Thresholds.Upper)
	if err != nil {
		return fmt.Errorf("%w: failed to record alert: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

// History returns recorded alerts, newest first.
func (s *SQLiteStore) History(ctx context.Context, filter HistoryFilter) ([]models.AlertEvent, error) {
	query := "SELECT id, timestamp, ticker, direction, current_price, day_low, day_high, lower_threshold, upper_threshold FROM alert_events WHERE 1=1"
	args := []interface{}{}

	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, filter.Ticker)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query alerts: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var events []models.AlertEvent
	for rows.Next() {
		var ev models.AlertEvent
		var direction string
		var dayLow, dayHigh, lower, upper sql.NullFloat64

		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.Ticker, &direction, &ev.Snapshot.CurrentPrice,
			&dayLow, &dayHigh, &lower, &upper); err != nil {
			return nil, fmt.Errorf("%w: failed to scan alert: %v", apperrors.ErrDatabaseError, err)
		}

		ev.Direction = models.Direction(direction)
		ev.Snapshot.Ticker = ev.Ticker
		ev.Snapshot.DayLow = dayLow.Float64
		ev.Snapshot.DayHigh = dayHigh.Float64
		ev.Snapshot.FetchedAt = ev.Timestamp
		ev.Thresholds = models.Thresholds{Lower: lower.Float64, Upper: upper.Float64}
		events = append(events, ev)
	}

	return events, rows.Err()
}
