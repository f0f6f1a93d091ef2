package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"stock-notifier/internal/config"
	"stock-notifier/internal/models"
	"stock-notifier/pkg/utils"
)

// ConsoleNotifier prints alerts and per-round status lines to a terminal.
type ConsoleNotifier struct {
	out     io.Writer
	enabled bool

	alert  *color.Color
	within *color.Color
	failed *color.Color
	dim    *color.Color

	mu sync.Mutex
}

// NewConsoleNotifier creates a ConsoleNotifier writing to out, or stdout when nil.
func NewConsoleNotifier(cfg config.ConsoleConfig, out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stdout
	}
	c := &ConsoleNotifier{
		out:     out,
		enabled: cfg.Enabled,
		alert:   color.New(color.FgYellow, color.Bold),
		within:  color.New(color.FgGreen),
		failed:  color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
	for _, col := range []*color.Color{c.alert, c.within, c.failed, c.dim} {
		if cfg.Color {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// Name returns the name of the notifier.
func (c *ConsoleNotifier) Name() string {
	return "console"
}

// Enabled returns whether the notifier is enabled.
func (c *ConsoleNotifier) Enabled() bool {
	return c.enabled
}

// Notify prints the alert block.
func (c *ConsoleNotifier) Notify(ctx context.Context, ticker string, snap models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := alertTime(snap)
	if _, err := fmt.Fprintf(c.out, "%s %s\n",
		c.dim.Sprintf("[%s]", ts.Format("15:04:05")),
		c.alert.Sprintf("ALERT %s", Title(ticker, ts))); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.out, "  Current Price: %s | Day Low: %s | Day High: %s\n",
		utils.FormatPrice(snap.CurrentPrice),
		utils.FormatPrice(snap.DayLow),
		utils.FormatPrice(snap.DayHigh))
	return err
}

// Within prints the status line for a price inside the thresholds.
func (c *ConsoleNotifier) Within(ticker string, snap models.Snapshot, marketOpen bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := c.within.Sprintf("%s: Price is within thresholds: %s", ticker, utils.FormatPrice(snap.CurrentPrice))
	if !marketOpen {
		line += c.dim.Sprint(" (market closed)")
	}
	fmt.Fprintln(c.out, line)
}

// FetchFailed prints the status line for a failed fetch.
func (c *ConsoleNotifier) FetchFailed(ticker string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := c.failed.Sprintf("%s: Failed to fetch stock data. Retrying...", ticker)
	if err != nil {
		line += c.dim.Sprintf(" (%v)", err)
	}
	fmt.Fprintln(c.out, line)
}
