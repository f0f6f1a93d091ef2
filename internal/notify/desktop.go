package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"stock-notifier/internal/config"
	"stock-notifier/internal/models"
)

// PopupFunc shows a native notification. It matches beeep.Notify.
type PopupFunc func(title, message, icon string) error

// BeepFunc sounds the system bell. It matches beeep.Beep.
type BeepFunc func(freq float64, duration int) error

// DesktopNotifier shows a native pop-up: D-Bus on Linux, the notification
// center on macOS and a toast on Windows.
type DesktopNotifier struct {
	enabled bool
	timeout time.Duration
	icon    string
	bell    bool
	popup   PopupFunc
	beep    BeepFunc
}

// NewDesktopNotifier creates a new DesktopNotifier.
func NewDesktopNotifier(cfg config.DesktopConfig) *DesktopNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DesktopNotifier{
		enabled: cfg.Enabled,
		timeout: timeout,
		icon:    cfg.Icon,
		bell:    cfg.Bell,
		popup:   beeep.Notify,
		beep:    beeep.Beep,
	}
}

// Name returns the name of the notifier.
func (d *DesktopNotifier) Name() string {
	return "desktop"
}

// Enabled returns whether the notifier is enabled.
func (d *DesktopNotifier) Enabled() bool {
	return d.enabled
}

// Notify shows the alert pop-up. A notification service that does not answer
// within the timeout is abandoned.
func (d *DesktopNotifier) Notify(ctx context.Context, ticker string, snap models.Snapshot) error {
	title, message := Title(ticker, alertTime(snap)), Message(snap)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		if d.bell {
			// A missing sound device never fails the pop-up.
			_ = d.beep(beeep.DefaultFreq, beeep.DefaultDuration)
		}
		done <- d.popup(title, message, d.icon)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("showing desktop notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("desktop notification not shown: %w", ctx.Err())
	}
}
