// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"stock-notifier/internal/models"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	Out        io.Writer // console destination, stderr when nil
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	// Console writer
	if cfg.Console {
		out := cfg.Out
		if out == nil {
			out = os.Stderr
		}
		consoleWriter := zerolog.ConsoleWriter{
			Out:         out,
			TimeFormat:  time.TimeOnly,
			FormatLevel: formatLevel,
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File && cfg.FilePath != "" {
		// Ensure log directory exists
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	// Create multi-writer
	var writer io.Writer
	if len(writers) == 0 {
		writer = io.Discard
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

var levelTags = map[string]struct {
	tag   string
	color *color.Color
}{
	"debug": {"DBG", color.New(color.FgCyan)},
	"info":  {"INF", color.New(color.FgGreen)},
	"warn":  {"WRN", color.New(color.FgYellow)},
	"error": {"ERR", color.New(color.FgRed)},
}

// formatLevel renders the level column as a colored three-letter tag.
func formatLevel(i interface{}) string {
	ll, ok := i.(string)
	if !ok {
		return "???"
	}
	if lt, ok := levelTags[ll]; ok {
		return lt.color.Sprint(lt.tag)
	}
	return ll
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// WithChannel adds a notification channel name to the logger context.
func WithChannel(logger zerolog.Logger, channel string) zerolog.Logger {
	return logger.With().Str("channel", channel).Logger()
}

// WithOperation adds an operation name to the logger context.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// LogAlert logs a threshold breach.
func LogAlert(logger zerolog.Logger, ev models.AlertEvent) {
	logger.Info().
		Str("event", "alert").
		Str("alert_id", ev.ID).
		Str("symbol", ev.Ticker).
		Str("direction", string(ev.Direction)).
		Float64("price", ev.Snapshot.CurrentPrice).
		Float64("day_low", ev.Snapshot.DayLow).
		Float64("day_high", ev.Snapshot.DayHigh).
		Msg("Threshold crossed")
}

// LogWithin logs a snapshot that stayed inside the thresholds.
func LogWithin(logger zerolog.Logger, snap models.Snapshot) {
	logger.Debug().
		Str("event", "within_thresholds").
		Str("symbol", snap.Ticker).
		Float64("price", snap.CurrentPrice).
		Msg("Price within thresholds")
}

// LogFetch logs a quote request.
func LogFetch(logger zerolog.Logger, provider, symbol string, duration time.Duration, err error) {
	if err != nil {
		logger.Warn().
			Str("event", "fetch").
			Str("provider", provider).
			Str("symbol", symbol).
			Dur("duration", duration).
			Err(err).
			Msg("Quote fetch failed")
		return
	}
	logger.Debug().
		Str("event", "fetch").
		Str("provider", provider).
		Str("symbol", symbol).
		Dur("duration", duration).
		Msg("Quote fetched")
}
