package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
)

// YahooConfig holds Yahoo Finance client settings.
type YahooConfig struct {
	BaseURL string
	Timeout time.Duration
}

// YahooProvider reads snapshots from the Yahoo Finance v8 chart API.
type YahooProvider struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewYahooProvider creates a new YahooProvider.
func NewYahooProvider(cfg YahooConfig) *YahooProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooProvider{
		baseURL: baseURL,
		client:  newHTTPClient(cfg.Timeout),
		now:     time.Now,
	}
}

// Name returns the provider name.
func (p *YahooProvider) Name() string {
	return "yahoo"
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				Currency             string  `json:"currency"`
				ExchangeName         string  `json:"exchangeName"`
				RegularMarketTime    int64   `json:"regularMarketTime"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch fetches the latest trade price and day range for ticker.
func (p *YahooProvider) Fetch(ctx context.Context, ticker string) (*models.Snapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, apperrors.NewDataError(p.Name(), ticker, "empty ticker", apperrors.ErrSymbolNotFound)
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(ticker), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewDataError(p.Name(), ticker, "creating request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.NewDataError(p.Name(), ticker, "requesting chart",
			fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.NewDataError(p.Name(), ticker, "reading response",
			fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err))
	}

	var chart chartResponse
	decodeErr := json.Unmarshal(body, &chart)

	// Yahoo reports unknown symbols as 404 with a chart.error payload
	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewDataError(p.Name(), ticker, chartErrorText(chart, resp.Status), apperrors.ErrSymbolNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewDataError(p.Name(), ticker, fmt.Sprintf("status %d", resp.StatusCode), apperrors.ErrProviderUnavailable)
	}
	if decodeErr != nil {
		return nil, apperrors.NewDataError(p.Name(), ticker, "decoding chart",
			fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, decodeErr))
	}
	if chart.Chart.Error != nil {
		return nil, apperrors.NewDataError(p.Name(), ticker, chartErrorText(chart, ""), apperrors.ErrSymbolNotFound)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, apperrors.NewDataError(p.Name(), ticker, "no result in response", apperrors.ErrSymbolNotFound)
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, apperrors.NewDataError(p.Name(), ticker, "no market price", apperrors.ErrMalformedResponse)
	}

	return &models.Snapshot{
		Ticker:       ticker,
		CurrentPrice: meta.RegularMarketPrice,
		DayLow:       meta.RegularMarketDayLow,
		DayHigh:      meta.RegularMarketDayHigh,
		FetchedAt:    p.now(),
	}, nil
}

func chartErrorText(chart chartResponse, fallback string) string {
	if chart.Chart.Error == nil {
		if fallback == "" {
			return "chart error"
		}
		return fallback
	}
	return fmt.Sprintf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
}
