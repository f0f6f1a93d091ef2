// Package notify delivers threshold alerts to the user.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stock-notifier/internal/config"
	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/logging"
	"stock-notifier/internal/models"
	"stock-notifier/internal/security"
	"stock-notifier/pkg/utils"
)

// Channel defines the interface for a notification channel.
type Channel interface {
	Name() string
	Enabled() bool
	Notify(ctx context.Context, ticker string, snap models.Snapshot) error
}

// Title returns the pop-up title for an alert on ticker at ts.
func Title(ticker string, ts time.Time) string {
	return fmt.Sprintf("%s Stock Data (%s)", ticker, ts.Format("2006-01-02"))
}

// Subject returns the email subject for an alert on ticker.
func Subject(ticker string) string {
	return fmt.Sprintf("Stock Alert for %s", ticker)
}

// Message returns the alert body shared by all channels.
func Message(snap models.Snapshot) string {
	return fmt.Sprintf("Current Price = %s\nDay Low = %s\nDay High = %s",
		utils.FormatPrice(snap.CurrentPrice),
		utils.FormatPrice(snap.DayLow),
		utils.FormatPrice(snap.DayHigh),
	)
}

func alertTime(snap models.Snapshot) time.Time {
	if snap.FetchedAt.IsZero() {
		return time.Now()
	}
	return snap.FetchedAt
}

// Dispatcher sends an alert to several channels in order.
type Dispatcher struct {
	channels []Channel
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewDispatcher creates a Dispatcher over channels.
func NewDispatcher(logger zerolog.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		logger:   logger,
	}
}

// New builds a Dispatcher with every channel enabled in cfg.
// Console alerts are written to out.
func New(cfg config.NotificationConfig, creds config.Credentials, out io.Writer, logger zerolog.Logger) *Dispatcher {
	d := NewDispatcher(logger)

	if cfg.Console.Enabled {
		d.Add(NewConsoleNotifier(cfg.Console, out))
	}
	if cfg.Desktop.Enabled {
		d.Add(NewDesktopNotifier(cfg.Desktop))
	}
	if cfg.Email.Enabled {
		d.Add(NewEmailNotifier(cfg.Email, creds.SMTP))
	}
	if cfg.Webhook.Enabled {
		d.Add(NewWebhookNotifier(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		d.Add(NewTelegramNotifier(cfg.Telegram, creds.Telegram))
	}

	return d
}

// Add adds a notification channel.
func (d *Dispatcher) Add(ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels = append(d.channels, ch)
}

// Channels returns the registered channels.
func (d *Dispatcher) Channels() []Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Channel, len(d.channels))
	copy(out, d.channels)
	return out
}

// Dispatch notifies every enabled channel. A failing channel does not stop
// the remaining ones; failures come back as a *errors.DispatchError.
func (d *Dispatcher) Dispatch(ctx context.Context, ticker string, snap models.Snapshot) error {
	var failures []*apperrors.NotifyError
	for _, ch := range d.Channels() {
		if !ch.Enabled() {
			continue
		}
		log := logging.WithChannel(logging.WithSymbol(d.logger, ticker), ch.Name())
		if err := ch.Notify(ctx, ticker, snap); err != nil {
			err = security.Redact(err)
			log.Warn().Err(err).Msg("Notification failed")
			failures = append(failures, apperrors.NewNotifyError(ch.Name(), ticker, err))
			continue
		}
		log.Debug().Msg("Notification sent")
	}

	if len(failures) > 0 {
		return &apperrors.DispatchError{Failures: failures}
	}
	return nil
}
