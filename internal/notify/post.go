package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stock-notifier/internal/models"
)

const userAgent = "StockNotifier/1.0"

// maxReplyBytes caps how much of a channel's HTTP reply is read.
const maxReplyBytes = 4 << 10

// AlertPayload is the JSON document a webhook receives for one alert.
type AlertPayload struct {
	Event   string       `json:"event"`
	Ticker  string       `json:"ticker"`
	Quote   QuotePayload `json:"quote"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
	SentAt  time.Time    `json:"sent_at"`
}

// QuotePayload carries the snapshot that raised the alert.
type QuotePayload struct {
	Price     float64   `json:"price"`
	DayLow    float64   `json:"day_low"`
	DayHigh   float64   `json:"day_high"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewAlertPayload builds the payload for an alert on ticker.
func NewAlertPayload(ticker string, snap models.Snapshot, sentAt time.Time) AlertPayload {
	fetched := alertTime(snap)
	return AlertPayload{
		Event:  "price_alert",
		Ticker: ticker,
		Quote: QuotePayload{
			Price:     snap.CurrentPrice,
			DayLow:    snap.DayLow,
			DayHigh:   snap.DayHigh,
			FetchedAt: fetched.UTC(),
		},
		Title:   Title(ticker, fetched),
		Message: Message(snap),
		SentAt:  sentAt.UTC(),
	}
}

// postJSON posts v to url and returns the status and the start of the reply.
func postJSON(ctx context.Context, client *http.Client, url string, v any) (int, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading reply: %w", err)
	}
	return resp.StatusCode, reply, nil
}
