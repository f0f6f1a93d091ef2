package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"stock-notifier/internal/config"
	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/prompt"
)

const chartMSFT = `{"chart":{"result":[{"meta":{"symbol":"MSFT",
"regularMarketPrice":415.5,"regularMarketDayHigh":418.25,"regularMarketDayLow":410.1}}],"error":null}}`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testConfig(t *testing.T, yahooURL string) *config.Config {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.Log.File = false
	cfg.Provider.YahooBaseURL = yahooURL
	cfg.Provider.SearchEnabled = false
	cfg.Notifications.Desktop.Enabled = false
	cfg.Notifications.Console.Color = false
	return cfg
}

func chartServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(ctx context.Context, app *App, input string, args ...string) (string, error) {
	cmd := NewRootCmd(app)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(context.Background(), &App{}, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "Stock Notifier v"+Version) {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(context.Background(), &App{}, "", "version", "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	if !strings.Contains(out, `"version": "`+Version+`"`) {
		t.Errorf("unexpected JSON %q", out)
	}
}

func TestExamples(t *testing.T) {
	out, err := execute(context.Background(), &App{}, "", "examples")
	if err != nil {
		t.Fatalf("examples failed: %v", err)
	}
	for _, want := range []string{"Common Workflow Examples", "First Run", "Email Alerts", "stock-notifier run", "stock-notifier lookup tesla Find the ticker"} {
		if !strings.Contains(out, want) {
			t.Errorf("examples output missing %q", want)
		}
	}
}

func TestCompanies(t *testing.T) {
	out, err := execute(context.Background(), &App{}, "", "companies")
	if err != nil {
		t.Fatalf("companies failed: %v", err)
	}
	for _, want := range []string{"COMPANY", "Microsoft", "MSFT", "005930.KS", "xkrx", "General Motors"} {
		if !strings.Contains(out, want) {
			t.Errorf("companies output missing %q", want)
		}
	}
}

func TestLookup(t *testing.T) {
	app := &App{Config: testConfig(t, "")}
	out, err := execute(context.Background(), app, "", "lookup", "microsoft")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if strings.TrimSpace(out) != "Microsoft (MSFT)" {
		t.Errorf("lookup = %q", out)
	}

	app = &App{Config: testConfig(t, "")}
	_, err = execute(context.Background(), app, "", "lookup", "not", "a", "company")
	if !errors.Is(err, apperrors.ErrSymbolNotFound) {
		t.Errorf("unknown company error = %v, want ErrSymbolNotFound", err)
	}
}

func TestQuoteJSON(t *testing.T) {
	srv := chartServer(t, http.StatusOK, chartMSFT)
	app := &App{Config: testConfig(t, srv.URL)}

	out, err := execute(context.Background(), app, "", "quote", "MSFT", "--json")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	for _, want := range []string{`"ticker": "MSFT"`, `"current_price": 415.5`, `"day_low": 410.1`} {
		if !strings.Contains(out, want) {
			t.Errorf("quote JSON missing %s: %q", want, out)
		}
	}
}

func TestCheckAlertThenHistory(t *testing.T) {
	srv := chartServer(t, http.StatusOK, chartMSFT)
	cfg := testConfig(t, srv.URL)

	out, err := execute(context.Background(), &App{Config: cfg}, "", "check", "MSFT", "--upper", "400")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, want := range []string{"ALERT MSFT Stock Data (", "Current Price: $415.50", "Checked 1, failed 0, alerts 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q: %q", want, out)
		}
	}

	logData, err := os.ReadFile(cfg.Storage.EventLog)
	if err != nil {
		t.Fatalf("reading event log: %v", err)
	}
	if !strings.Contains(string(logData), " - MSFT | Current Price: $415.50 | Day Low: $410.10 | Day High: $418.25") {
		t.Errorf("event log = %q", logData)
	}

	out, err = execute(context.Background(), &App{Config: cfg}, "", "history", "msft")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "MSFT") || !strings.Contains(out, "above") || !strings.Contains(out, "$415.50") {
		t.Errorf("history output = %q", out)
	}
}

func TestCheckWithinThresholds(t *testing.T) {
	srv := chartServer(t, http.StatusOK, chartMSFT)
	cfg := testConfig(t, srv.URL)

	out, err := execute(context.Background(), &App{Config: cfg}, "", "check", "MSFT", "--lower", "100", "--upper", "500")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "MSFT: Price is within thresholds: $415.50") {
		t.Errorf("check output = %q", out)
	}
	if _, err := os.Stat(cfg.Storage.EventLog); err == nil {
		data, _ := os.ReadFile(cfg.Storage.EventLog)
		if len(data) != 0 {
			t.Errorf("event log should stay empty, got %q", data)
		}
	}
}

func TestCheckAllFetchesFail(t *testing.T) {
	srv := chartServer(t, http.StatusServiceUnavailable, "")
	app := &App{Config: testConfig(t, srv.URL)}

	out, err := execute(context.Background(), app, "", "check", "MSFT")
	if !errors.Is(err, apperrors.ErrProviderUnavailable) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
	if !strings.Contains(out, "MSFT: Failed to fetch stock data. Retrying...") {
		t.Errorf("check output = %q", out)
	}
}

func TestRunWarnsOnInvertedBand(t *testing.T) {
	app := &App{Config: testConfig(t, "")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(ctx, app, "", "run", "-s", "MSFT", "--lower", "200", "--upper", "100")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, prompt.InvertedWarning) {
		t.Errorf("run output missing inverted band warning: %q", out)
	}
}

func TestCheckInvertedBandAlerts(t *testing.T) {
	srv := chartServer(t, http.StatusOK, chartMSFT)
	cfg := testConfig(t, srv.URL)

	out, err := execute(context.Background(), &App{Config: cfg}, "", "check", "MSFT", "--lower", "500", "--upper", "400")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, want := range []string{prompt.InvertedWarning, "Checked 1, failed 0, alerts 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q: %q", want, out)
		}
	}
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	app := &App{Config: testConfig(t, "")}
	_, err := execute(context.Background(), app, "", "run", "-s", "MSFT", "--interval", "0")
	if !errors.Is(err, apperrors.ErrConfigInvalid) {
		t.Errorf("error = %v, want ErrConfigInvalid", err)
	}
}

func TestRunInteractiveInputClosed(t *testing.T) {
	app := &App{Config: testConfig(t, "")}
	out, err := execute(context.Background(), app, "", "run", "--interactive")
	if !errors.Is(err, apperrors.ErrInputClosed) {
		t.Errorf("error = %v, want ErrInputClosed", err)
	}
	if !strings.Contains(out, "Welcome to the Stock Price Notifier!") {
		t.Errorf("prompt not shown: %q", out)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	srv := chartServer(t, http.StatusOK, chartMSFT)
	app := &App{Config: testConfig(t, srv.URL)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(ctx, app, "", "run", "-s", "MSFT", "-s", "Apple", "-i", "1", "--upper", "500")
	if err != nil {
		t.Fatalf("run returned %v, want nil on cancel", err)
	}
	for _, want := range []string{"Monitoring MSFT, AAPL every 1 seconds...", "Alerts set for price above $500.00."} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q: %q", want, out)
		}
	}
}

func TestRunEmailFlagEnablesEmail(t *testing.T) {
	app := &App{Config: testConfig(t, "")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := execute(ctx, app, "", "run", "-s", "MSFT", "--email", "me@example.com"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	ec := app.Config.Notifications.Email
	if !ec.Enabled || ec.To != "me@example.com" || ec.From != "me@example.com" {
		t.Errorf("email config = %+v", ec)
	}
}

func TestConfigShowRedacts(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Credentials.SMTP.Password = "supersecretpassword"

	out, err := execute(context.Background(), &App{Config: cfg}, "", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out, "supersecretpassword") {
		t.Error("config show leaked the SMTP password")
	}
	if !strings.Contains(out, "****word") || !strings.Contains(out, "interval: 60") {
		t.Errorf("config show output = %q", out)
	}
}

func TestConfigPathAndValidateFromFlag(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(context.Background(), &App{}, "", "config", "path", "--config", dir)
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("config path = %q, want %q", out, dir)
	}

	out, err = execute(context.Background(), &App{}, "", "config", "validate", "--config", dir)
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid") {
		t.Errorf("validate output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("config.toml template not written: %v", err)
	}
}
