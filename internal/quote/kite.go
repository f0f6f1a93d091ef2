package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
)

// KiteConfig holds configuration for the Kite Connect provider.
type KiteConfig struct {
	APIKey      string
	AccessToken string
	Exchange    string // default exchange prefix, NSE when empty
	Timeout     time.Duration
	BaseURI     string // overrides the Kite API root
}

// KiteProvider reads snapshots from Zerodha Kite Connect quotes.
type KiteProvider struct {
	client   *kiteconnect.Client
	exchange string
	ready    bool
	now      func() time.Time
}

// NewKiteProvider creates a new Kite Connect provider.
// The provider fails every fetch with ErrNotAuthenticated when the API key
// or access token is missing.
func NewKiteProvider(cfg KiteConfig) *KiteProvider {
	client := kiteconnect.New(cfg.APIKey)
	client.SetHTTPClient(newHTTPClient(cfg.Timeout))
	if cfg.BaseURI != "" {
		client.SetBaseURI(strings.TrimRight(cfg.BaseURI, "/"))
	}
	if cfg.AccessToken != "" {
		client.SetAccessToken(cfg.AccessToken)
	}

	exchange := strings.ToUpper(cfg.Exchange)
	if exchange == "" {
		exchange = "NSE"
	}

	return &KiteProvider{
		client:   client,
		exchange: exchange,
		ready:    cfg.APIKey != "" && cfg.AccessToken != "",
		now:      time.Now,
	}
}

// Name returns the provider name.
func (k *KiteProvider) Name() string {
	return "kite"
}

// Instrument maps a ticker to a Kite instrument key.
// "INFY" and "INFY.NS" map to "NSE:INFY", "INFY.BO" to "BSE:INFY", and
// keys that already carry an exchange are kept.
func (k *KiteProvider) Instrument(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	switch {
	case strings.Contains(ticker, ":"):
		return ticker
	case strings.HasSuffix(ticker, ".NS"):
		return "NSE:" + strings.TrimSuffix(ticker, ".NS")
	case strings.HasSuffix(ticker, ".BO"):
		return "BSE:" + strings.TrimSuffix(ticker, ".BO")
	default:
		return k.exchange + ":" + ticker
	}
}

// Fetch fetches the last traded price and day range for ticker.
func (k *KiteProvider) Fetch(ctx context.Context, ticker string) (*models.Snapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !k.ready {
		return nil, apperrors.NewDataError(k.Name(), ticker, "api key and access token required", apperrors.ErrNotAuthenticated)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewDataError(k.Name(), ticker, "request cancelled", err)
	}

	instrument := k.Instrument(ticker)

	quotes, err := k.client.GetQuote(instrument)
	if err != nil {
		return nil, apperrors.NewDataError(k.Name(), ticker, "failed to get quote",
			fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err))
	}

	q, ok := quotes[instrument]
	if !ok {
		return nil, apperrors.NewDataError(k.Name(), ticker, "quote not found for "+instrument, apperrors.ErrSymbolNotFound)
	}
	if q.LastPrice <= 0 {
		return nil, apperrors.NewDataError(k.Name(), ticker, "no last price", apperrors.ErrMalformedResponse)
	}

	return &models.Snapshot{
		Ticker:       ticker,
		CurrentPrice: q.LastPrice,
		DayLow:       q.OHLC.Low,
		DayHigh:      q.OHLC.High,
		FetchedAt:    k.now(),
	}, nil
}
