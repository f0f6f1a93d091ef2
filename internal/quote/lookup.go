package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
)

// Company is a directory entry pairing a display name with its ticker.
type Company struct {
	Name   string `json:"name" yaml:"name"`
	Ticker string `json:"ticker" yaml:"ticker"`
}

// directory lists the built-in companies in display order.
var directory = []Company{
	{"Microsoft", "MSFT"},
	{"Google", "GOOGL"},
	{"Amazon", "AMZN"},
	{"Apple", "AAPL"},
	{"Tesla", "TSLA"},
	{"Meta (Facebook)", "META"},
	{"NVIDIA", "NVDA"},
	{"Netflix", "NFLX"},
	{"Adobe", "ADBE"},
	{"Intel", "INTC"},
	{"IBM", "IBM"},
	{"Samsung", "005930.KS"},
	{"Oracle", "ORCL"},
	{"PayPal", "PYPL"},
	{"Uber", "UBER"},
	{"Zoom", "ZM"},
	{"Walmart", "WMT"},
	{"Procter & Gamble", "PG"},
	{"Coca-Cola", "KO"},
	{"PepsiCo", "PEP"},
	{"Johnson & Johnson", "JNJ"},
	{"Pfizer", "PFE"},
	{"Disney", "DIS"},
	{"Boeing", "BA"},
	{"Ford", "F"},
	{"General Motors", "GM"},
}

// Companies returns a copy of the built-in company directory.
func Companies() []Company {
	out := make([]Company, len(directory))
	copy(out, directory)
	return out
}

// tickerPattern matches strings shaped like exchange tickers: MSFT, BRK-B, 005930.KS, ^GSPC.
var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9]{1,10}([.\-][A-Z0-9]{1,4})?$`)

// LooksLikeTicker reports whether s could be used as a ticker as typed.
func LooksLikeTicker(s string) bool {
	return tickerPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// ResolverConfig configures company name resolution.
type ResolverConfig struct {
	SearchEnabled bool
	SearchBaseURL string
	Timeout       time.Duration
}

// Resolver maps company names and tickers to symbols.
type Resolver struct {
	byName   map[string]Company
	byTicker map[string]Company
	search   bool
	baseURL  string
	client   *http.Client
}

// NewResolver creates a resolver over the built-in directory.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := &Resolver{
		byName:   make(map[string]Company, len(directory)),
		byTicker: make(map[string]Company, len(directory)),
		search:   cfg.SearchEnabled,
		baseURL:  strings.TrimRight(cfg.SearchBaseURL, "/"),
		client:   newHTTPClient(cfg.Timeout),
	}
	if r.baseURL == "" {
		r.baseURL = "https://query2.finance.yahoo.com"
	}
	for _, c := range directory {
		r.byName[strings.ToLower(c.Name)] = c
		r.byTicker[c.Ticker] = c
	}
	return r
}

// Resolve turns user input into a symbol.
// The directory is tried first by name (case-insensitive) and then by ticker.
// Unknown names go to Yahoo search when enabled. Input shaped like a ticker
// is accepted as-is when nothing else matches.
func (r *Resolver) Resolve(ctx context.Context, query string) (models.Symbol, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.Symbol{}, apperrors.NewValidationError("symbol", query, "empty company name or ticker")
	}

	if c, ok := r.byName[strings.ToLower(q)]; ok {
		return models.NewSymbol(c.Ticker, c.Name), nil
	}
	if c, ok := r.byTicker[strings.ToUpper(q)]; ok {
		return models.NewSymbol(c.Ticker, c.Name), nil
	}

	var searchErr error
	if r.search {
		sym, err := r.Search(ctx, q)
		if err == nil {
			return sym, nil
		}
		searchErr = err
	}

	if LooksLikeTicker(q) {
		return models.NewSymbol(q, strings.ToUpper(q)), nil
	}
	if searchErr != nil {
		return models.Symbol{}, searchErr
	}
	return models.Symbol{}, fmt.Errorf("%w: %q", apperrors.ErrSymbolNotFound, q)
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

// Search looks a company up through the Yahoo Finance search API and
// returns the first equity or ETF match.
func (r *Resolver) Search(ctx context.Context, query string) (models.Symbol, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "5")
	params.Set("newsCount", "0")
	endpoint := r.baseURL + "/v1/finance/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Symbol{}, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return models.Symbol{}, fmt.Errorf("%w: search: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Symbol{}, fmt.Errorf("%w: search returned status %d", apperrors.ErrProviderUnavailable, resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Symbol{}, fmt.Errorf("%w: decoding search: %v", apperrors.ErrMalformedResponse, err)
	}

	for _, q := range result.Quotes {
		if q.Symbol == "" {
			continue
		}
		switch q.QuoteType {
		case "EQUITY", "ETF":
		default:
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = q.Symbol
		}
		return models.NewSymbol(q.Symbol, name), nil
	}

	return models.Symbol{}, fmt.Errorf("%w: no search match for %q", apperrors.ErrSymbolNotFound, query)
}
