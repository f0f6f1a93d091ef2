package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stock-notifier/internal/config"
	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
)

type fakeChannel struct {
	name    string
	enabled bool
	err     error
	calls   int
}

func (f *fakeChannel) Name() string  { return f.name }
func (f *fakeChannel) Enabled() bool { return f.enabled }
func (f *fakeChannel) Notify(ctx context.Context, ticker string, snap models.Snapshot) error {
	f.calls++
	return f.err
}

var testSnap = models.Snapshot{
	Ticker:       "MSFT",
	CurrentPrice: 250,
	DayLow:       240.5,
	DayHigh:      1255.25,
	FetchedAt:    time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
}

func TestFormatting(t *testing.T) {
	if got := Title("MSFT", testSnap.FetchedAt); got != "MSFT Stock Data (2024-03-01)" {
		t.Errorf("Title = %q", got)
	}
	if got := Subject("MSFT"); got != "Stock Alert for MSFT" {
		t.Errorf("Subject = %q", got)
	}
	want := "Current Price = $250.00\nDay Low = $240.50\nDay High = $1,255.25"
	if got := Message(testSnap); got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestDispatchIsolatesChannelFailures(t *testing.T) {
	first := &fakeChannel{name: "first", enabled: true, err: errors.New("boom")}
	disabled := &fakeChannel{name: "off", enabled: false}
	last := &fakeChannel{name: "last", enabled: true}

	d := NewDispatcher(zerolog.Nop(), first, disabled, last)
	err := d.Dispatch(context.Background(), "MSFT", testSnap)

	if first.calls != 1 || last.calls != 1 {
		t.Errorf("calls first=%d last=%d, want 1 each", first.calls, last.calls)
	}
	if disabled.calls != 0 {
		t.Error("disabled channel was notified")
	}

	var dispatchErr *apperrors.DispatchError
	if !apperrors.As(err, &dispatchErr) {
		t.Fatalf("error = %v, want DispatchError", err)
	}
	if len(dispatchErr.Failures) != 1 || dispatchErr.Failures[0].Channel != "first" {
		t.Errorf("failures = %+v", dispatchErr.Failures)
	}
	if dispatchErr.Failures[0].Symbol != "MSFT" {
		t.Errorf("failure symbol = %q", dispatchErr.Failures[0].Symbol)
	}
}

func TestDispatchAllSucceed(t *testing.T) {
	a := &fakeChannel{name: "a", enabled: true}
	d := NewDispatcher(zerolog.Nop())
	d.Add(a)

	if err := d.Dispatch(context.Background(), "MSFT", testSnap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.calls != 1 {
		t.Errorf("calls = %d", a.calls)
	}
}

func TestDispatchMasksCredentials(t *testing.T) {
	const token = "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw"
	var logBuf bytes.Buffer
	ch := &fakeChannel{
		name:    "telegram",
		enabled: true,
		err:     errors.New(`Post "https://api.telegram.org/bot123456789:` + token + `/sendMessage": timeout`),
	}

	err := NewDispatcher(zerolog.New(&logBuf), ch).Dispatch(context.Background(), "MSFT", testSnap)
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	if strings.Contains(err.Error(), token) {
		t.Errorf("dispatch error leaked the bot token: %v", err)
	}
	if strings.Contains(logBuf.String(), token) {
		t.Errorf("log leaked the bot token: %s", logBuf.String())
	}
}

func TestNewBuildsEnabledChannels(t *testing.T) {
	cfg := config.Default(t.TempDir()).Notifications
	cfg.Email.Enabled = true
	cfg.Email.From = "me@example.com"
	cfg.Webhook = config.WebhookConfig{Enabled: true, URL: "http://localhost/hook"}

	d := New(cfg, config.Credentials{}, &bytes.Buffer{}, zerolog.Nop())

	var names []string
	for _, ch := range d.Channels() {
		names = append(names, ch.Name())
	}
	want := []string{"console", "desktop", "email", "webhook"}
	if len(names) != len(want) {
		t.Fatalf("channels = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("channel %d = %s, want %s", i, names[i], want[i])
		}
	}
}
