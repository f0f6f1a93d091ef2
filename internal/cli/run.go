package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/market"
	"stock-notifier/internal/models"
	"stock-notifier/internal/monitor"
	"stock-notifier/internal/notify"
	"stock-notifier/internal/prompt"
	"stock-notifier/internal/quote"
	"stock-notifier/internal/store"
)

func newRunCmd(app *App) *cobra.Command {
	var (
		symbols     []string
		interval    int
		lower       float64
		upper       float64
		interactive bool
		email       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Monitor prices until interrupted",
		Long: `Poll every symbol, alert when a price crosses a threshold and sleep
for the interval before the next round.

Symbols, interval and thresholds come from flags or config.toml. When
neither names a symbol, or with --interactive, they are asked for on the
console. A threshold of 0 disables that side.`,
		Example: `  stock-notifier run
  stock-notifier run --symbol MSFT --symbol "Apple" --lower 100 --upper 200 --interval 30
  stock-notifier run --interactive --email me@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := app.Config
			resolver := app.resolver()

			mcfg := monitor.Config{
				Interval:        cfg.PollInterval(),
				Thresholds:      cfg.Thresholds(),
				ShowStatus:      cfg.Monitor.ShowStatus,
				DeliveryTimeout: cfg.Monitor.DeliveryTimeout,
			}
			if cmd.Flags().Changed("interval") {
				mcfg.Interval = time.Duration(interval) * time.Second
			}
			if cmd.Flags().Changed("lower") {
				mcfg.Thresholds.Lower = lower
			}
			if cmd.Flags().Changed("upper") {
				mcfg.Thresholds.Upper = upper
			}

			queries := cfg.Monitor.Symbols
			if len(symbols) > 0 {
				queries = symbols
			}

			if interactive || len(queries) == 0 {
				p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout(), resolver, prompt.Options{
					Color:     cfg.Notifications.Console.Color && NewOutput(cmd).ColorEnabled(),
					AskEmail:  email == "",
					Companies: quote.Companies(),
				})
				answers, err := p.Configure(ctx)
				if err != nil {
					return err
				}
				mcfg.Symbols = answers.Symbols
				mcfg.Interval = answers.Interval
				mcfg.Thresholds = answers.Thresholds
				if answers.Email != "" {
					email = answers.Email
				}
			} else {
				syms, err := resolveSymbols(ctx, resolver, queries)
				if err != nil {
					return err
				}
				mcfg.Symbols = syms
			}

			if email != "" {
				useEmail(app, email)
			}
			warnInverted(app, NewOutput(cmd), mcfg.Thresholds, interactive || len(queries) == 0)
			if err := mcfg.Validate(); err != nil {
				return err
			}

			mon, closeFn, err := app.newMonitor(cmd.OutOrStdout(), mcfg)
			if err != nil {
				return err
			}
			defer closeFn()

			prompt.Summary(cmd.OutOrStdout(), mcfg.Symbols, mcfg.Interval, mcfg.Thresholds)
			return mon.Run(ctx)
		},
	}

	cmd.Flags().StringArrayVarP(&symbols, "symbol", "s", nil, "company name or ticker to monitor (repeatable)")
	cmd.Flags().IntVarP(&interval, "interval", "i", 0, "seconds between rounds")
	cmd.Flags().Float64Var(&lower, "lower", 0, "alert when the price falls below this (0 disables)")
	cmd.Flags().Float64Var(&upper, "upper", 0, "alert when the price rises above this (0 disables)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "ask for symbols, interval and thresholds")
	cmd.Flags().StringVar(&email, "email", "", "send alert emails to this address")

	return cmd
}

func newCheckCmd(app *App) *cobra.Command {
	var (
		lower float64
		upper float64
	)

	cmd := &cobra.Command{
		Use:   "check [ticker...]",
		Short: "Run a single monitoring round",
		Long: `Fetch every symbol once, alert on threshold crossings and exit.
Without arguments the symbols from config.toml are checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := app.Config
			output := NewOutput(cmd)

			queries := args
			if len(queries) == 0 {
				queries = cfg.Monitor.Symbols
			}
			syms, err := resolveSymbols(ctx, app.resolver(), queries)
			if err != nil {
				return err
			}

			mcfg := monitor.Config{
				Symbols:         syms,
				Interval:        cfg.PollInterval(),
				Thresholds:      cfg.Thresholds(),
				ShowStatus:      !output.IsJSON(),
				DeliveryTimeout: cfg.Monitor.DeliveryTimeout,
			}
			if cmd.Flags().Changed("lower") {
				mcfg.Thresholds.Lower = lower
			}
			if cmd.Flags().Changed("upper") {
				mcfg.Thresholds.Upper = upper
			}
			warnInverted(app, output, mcfg.Thresholds, false)

			out := cmd.OutOrStdout()
			if output.IsJSON() {
				out = io.Discard
			}
			mon, closeFn, err := app.newMonitor(out, mcfg)
			if err != nil {
				return err
			}
			defer closeFn()

			res := mon.RunOnce(ctx)
			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Dim("Checked %d, failed %d, alerts %d", res.Checked, res.Failed, res.Alerts)
			if res.Checked == 0 && res.Failed > 0 {
				return fmt.Errorf("%w: no quote could be fetched", apperrors.ErrProviderUnavailable)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lower, "lower", 0, "lower threshold (0 disables)")
	cmd.Flags().Float64Var(&upper, "upper", 0, "upper threshold (0 disables)")

	return cmd
}

// newMonitor wires the provider, channels, recorders and market calendar.
// The returned func closes the recorders.
func (app *App) newMonitor(out io.Writer, mcfg monitor.Config) (*monitor.Monitor, func(), error) {
	cfg := app.Config

	provider, err := app.provider()
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrConfigInvalid, err.Error())
	}

	recorder, _, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := recorder.Close(); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to close event log")
		}
	}

	mon, err := monitor.New(mcfg, monitor.Deps{
		Provider: provider,
		Notifier: notify.New(cfg.Notifications, cfg.Credentials, out, app.Logger),
		Recorder: recorder,
		Status:   notify.NewConsoleNotifier(cfg.Notifications.Console, out),
		Market:   market.NewCalendars(),
		Logger:   app.Logger,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return mon, closeFn, nil
}

// resolveSymbols resolves company names or tickers, dropping duplicates.
func resolveSymbols(ctx context.Context, r prompt.Resolver, queries []string) ([]models.Symbol, error) {
	seen := make(map[string]bool, len(queries))
	var syms []models.Symbol
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		sym, err := r.Resolve(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", q, err)
		}
		if seen[sym.Ticker] {
			continue
		}
		seen[sym.Ticker] = true
		syms = append(syms, sym)
	}
	if len(syms) == 0 {
		return nil, fmt.Errorf("%w: no symbols to monitor", apperrors.ErrConfigInvalid)
	}
	return syms, nil
}

// warnInverted reports a lower bound at or above the upper bound. The
// prompt has already shown the console warning when prompted is set.
func warnInverted(app *App, output *Output, th models.Thresholds, prompted bool) {
	if !th.Inverted() {
		return
	}
	app.Logger.Warn().Float64("lower", th.Lower).Float64("upper", th.Upper).Msg("Inverted threshold band")
	if !prompted && !output.IsJSON() {
		output.Warning("%s", prompt.InvertedWarning)
	}
}

// useEmail enables email alerts to addr. Without a configured sender the
// recipient also sends.
func useEmail(app *App, addr string) {
	ec := &app.Config.Notifications.Email
	ec.Enabled = true
	ec.To = addr
	if ec.From == "" {
		ec.From = addr
	}
	app.Logger.Debug().Str("to", addr).Msg("Email alerts enabled")
}
