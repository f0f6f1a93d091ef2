package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-notifier/internal/config"
)

func TestNewAlertPayload(t *testing.T) {
	sent := time.Date(2024, 3, 1, 14, 30, 2, 0, time.UTC)
	p := NewAlertPayload("MSFT", testSnap, sent)

	if p.Event != "price_alert" || p.Ticker != "MSFT" {
		t.Errorf("payload = %+v", p)
	}
	if p.Quote.Price != 250 || p.Quote.DayLow != 240.5 || p.Quote.DayHigh != 1255.25 {
		t.Errorf("quote = %+v", p.Quote)
	}
	if !p.Quote.FetchedAt.Equal(testSnap.FetchedAt) || !p.SentAt.Equal(sent) {
		t.Errorf("times = %v, %v", p.Quote.FetchedAt, p.SentAt)
	}
	if p.Title != "MSFT Stock Data (2024-03-01)" || p.Message != Message(testSnap) {
		t.Errorf("title/message = %q / %q", p.Title, p.Message)
	}
}

func TestWebhookNotify(t *testing.T) {
	var raw map[string]any
	var agent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		agent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	w := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: ts.URL})
	w.now = func() time.Time { return time.Date(2024, 3, 1, 14, 30, 2, 0, time.UTC) }
	if err := w.Notify(context.Background(), "MSFT", testSnap); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if agent != userAgent {
		t.Errorf("User-Agent = %q", agent)
	}
	if raw["event"] != "price_alert" || raw["ticker"] != "MSFT" || raw["sent_at"] != "2024-03-01T14:30:02Z" {
		t.Errorf("payload = %v", raw)
	}
	quote, ok := raw["quote"].(map[string]any)
	if !ok {
		t.Fatalf("quote missing from %v", raw)
	}
	if quote["price"] != 250.0 || quote["day_high"] != 1255.25 || quote["fetched_at"] != "2024-03-01T14:30:00Z" {
		t.Errorf("quote = %v", quote)
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	w := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: ts.URL})
	err := w.Notify(context.Background(), "MSFT", testSnap)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want status 500", err)
	}

	if NewWebhookNotifier(config.WebhookConfig{Enabled: true}).Enabled() {
		t.Error("webhook without URL should be disabled")
	}
}
