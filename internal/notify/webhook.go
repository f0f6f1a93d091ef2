package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stock-notifier/internal/config"
	"stock-notifier/internal/models"
)

// WebhookNotifier posts an AlertPayload to a URL.
type WebhookNotifier struct {
	url     string
	enabled bool
	client  *http.Client
	now     func() time.Time
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

// Name returns the name of the notifier.
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// Enabled returns whether the notifier is enabled.
func (w *WebhookNotifier) Enabled() bool {
	return w.enabled
}

// Notify posts the alert. Any 2xx status is success.
func (w *WebhookNotifier) Notify(ctx context.Context, ticker string, snap models.Snapshot) error {
	status, _, err := postJSON(ctx, w.client, w.url, NewAlertPayload(ticker, snap, w.now()))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook returned status %d", status)
	}
	return nil
}
