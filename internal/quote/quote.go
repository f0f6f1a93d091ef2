// Package quote provides quote provider clients and company lookup.
package quote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stock-notifier/internal/config"
	"stock-notifier/internal/models"
)

// Provider fetches the latest price snapshot for a ticker.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ticker string) (*models.Snapshot, error)
}

const userAgent = "Mozilla/5.0 (compatible; StockNotifier/1.0)"

// New builds the provider selected in cfg.
func New(cfg config.ProviderConfig, creds config.KiteCredentials) (Provider, error) {
	switch cfg.Name {
	case config.ProviderYahoo, "":
		return NewYahooProvider(YahooConfig{
			BaseURL: cfg.YahooBaseURL,
			Timeout: cfg.Timeout,
		}), nil
	case config.ProviderKite:
		return NewKiteProvider(KiteConfig{
			APIKey:      creds.APIKey,
			AccessToken: creds.AccessToken,
			Exchange:    cfg.KiteExchange,
			Timeout:     cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q", cfg.Name)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
