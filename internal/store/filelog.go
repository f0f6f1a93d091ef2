package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"stock-notifier/internal/models"
	"stock-notifier/pkg/utils"
)

// FileLogConfig configures the alert log file.
type FileLogConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int // 0 keeps every rotated file
}

// FileLog appends one human-readable line per alert. The file is open only
// while a line is written.
type FileLog struct {
	w  io.WriteCloser
	mu sync.Mutex
}

// NewFileLog opens the alert log at cfg.Path, creating its directory.
func NewFileLog(cfg FileLogConfig) (*FileLog, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	return &FileLog{
		w: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		},
	}, nil
}

// FormatLine renders ev as a log line without the trailing newline.
func FormatLine(ev models.AlertEvent) string {
	return fmt.Sprintf("%s - %s | Current Price: %s | Day Low: %s | Day High: %s",
		ev.Timestamp.Format("2006-01-02 15:04:05,000"),
		ev.Ticker,
		utils.FormatPrice(ev.Snapshot.CurrentPrice),
		utils.FormatPrice(ev.Snapshot.DayLow),
		utils.FormatPrice(ev.Snapshot.DayHigh),
	)
}

// Record appends ev to the log and releases the file.
func (f *FileLog) Record(ctx context.Context, ev models.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, werr := io.WriteString(f.w, FormatLine(ev)+"\n")
	cerr := f.w.Close()
	if werr != nil {
		return fmt.Errorf("writing event log: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("closing event log: %w", cerr)
	}
	return nil
}

// Close closes the log file if a write left it open.
func (f *FileLog) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w.Close()
}
