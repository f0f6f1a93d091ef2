// Package monitor implements the threshold alert loop.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/logging"
	"stock-notifier/internal/models"
	"stock-notifier/internal/quote"
	"stock-notifier/internal/security"
	"stock-notifier/internal/store"
)

// Notifier delivers one alert to every enabled channel.
type Notifier interface {
	Dispatch(ctx context.Context, ticker string, snap models.Snapshot) error
}

// StatusReporter prints per-symbol status lines for rounds without an alert.
type StatusReporter interface {
	Within(ticker string, snap models.Snapshot, marketOpen bool)
	FetchFailed(ticker string, err error)
}

// MarketHours reports whether a ticker's exchange is in session.
type MarketHours interface {
	IsOpen(ticker string, t time.Time) bool
}

// Config holds the loop parameters fixed at configuration time.
type Config struct {
	Symbols    []models.Symbol
	Thresholds models.Thresholds
	Interval   time.Duration
	ShowStatus bool

	// DeliveryTimeout bounds notification and recording of one alert.
	// Zero means DefaultDeliveryTimeout.
	DeliveryTimeout time.Duration
}

// DefaultDeliveryTimeout is used when Config.DeliveryTimeout is unset.
const DefaultDeliveryTimeout = 60 * time.Second

// Validate checks the parameters before monitoring starts.
func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("%w: at least one symbol is required", apperrors.ErrConfigInvalid)
	}
	for _, s := range c.Symbols {
		if strings.TrimSpace(s.Ticker) == "" {
			return fmt.Errorf("%w: empty ticker", apperrors.ErrConfigInvalid)
		}
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v", apperrors.ErrConfigInvalid, c.Interval)
	}
	if c.Thresholds.Lower < 0 || c.Thresholds.Upper < 0 {
		return fmt.Errorf("%w: thresholds must be non-negative", apperrors.ErrConfigInvalid)
	}
	return nil
}

// Deps are the collaborators of a Monitor. Only Provider is required.
type Deps struct {
	Provider quote.Provider
	Notifier Notifier
	Recorder store.Recorder
	Status   StatusReporter
	Market   MarketHours
	Logger   zerolog.Logger
}

// RoundResult summarizes one polling round.
type RoundResult struct {
	Checked        int
	Failed         int
	Alerts         int
	NotifyFailures int
	RecordFailures int
}

// Monitor polls quotes and raises alerts when a threshold is crossed.
type Monitor struct {
	cfg      Config
	provider quote.Provider
	notifier Notifier
	recorder store.Recorder
	status   StatusReporter
	market   MarketHours
	logger   zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Monitor.
func New(cfg Config, deps Deps) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Provider == nil {
		return nil, fmt.Errorf("%w: quote provider is required", apperrors.ErrConfigInvalid)
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = DefaultDeliveryTimeout
	}

	return &Monitor{
		cfg:      cfg,
		provider: deps.Provider,
		notifier: deps.Notifier,
		recorder: deps.Recorder,
		status:   deps.Status,
		market:   deps.Market,
		logger:   logging.WithOperation(deps.Logger, "monitor"),
		now:      time.Now,
		sleep:    sleepContext,
	}, nil
}

// Config returns the loop parameters.
func (m *Monitor) Config() Config {
	return m.cfg
}

// Run polls every symbol, sleeps for the interval and repeats until ctx is
// done. Cancellation is a clean shutdown and returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	tickers := make([]string, len(m.cfg.Symbols))
	for i, s := range m.cfg.Symbols {
		tickers[i] = s.Ticker
	}
	m.logger.Info().
		Strs("symbols", tickers).
		Dur("interval", m.cfg.Interval).
		Float64("lower", m.cfg.Thresholds.Lower).
		Float64("upper", m.cfg.Thresholds.Upper).
		Msg("Monitoring started")

	rounds := 0
	for {
		res := m.RunOnce(ctx)
		rounds++
		m.logger.Debug().
			Int("round", rounds).
			Int("checked", res.Checked).
			Int("failed", res.Failed).
			Int("alerts", res.Alerts).
			Msg("Round complete")

		if ctx.Err() != nil {
			break
		}
		if err := m.sleep(ctx, m.cfg.Interval); err != nil {
			break
		}
	}

	m.logger.Info().Int("rounds", rounds).Msg("Monitoring stopped")
	return nil
}

// RunOnce performs a single polling round over all symbols in order.
// Once ctx is done no further symbol is fetched, but an alert already
// being delivered is finished.
func (m *Monitor) RunOnce(ctx context.Context) RoundResult {
	var res RoundResult
	for _, sym := range m.cfg.Symbols {
		if ctx.Err() != nil {
			break
		}
		m.check(ctx, sym.Ticker, &res)
	}
	return res
}

func (m *Monitor) check(ctx context.Context, ticker string, res *RoundResult) {
	log := logging.WithSymbol(m.logger, ticker)

	start := m.now()
	snap, err := m.provider.Fetch(ctx, ticker)
	err = security.Redact(err)
	logging.LogFetch(log, m.provider.Name(), ticker, m.now().Sub(start), err)
	if err != nil {
		res.Failed++
		if m.status != nil {
			m.status.FetchFailed(ticker, err)
		}
		return
	}
	res.Checked++

	// The snapshot is only ever acted on for the symbol it was requested for.
	s := *snap
	s.Ticker = ticker

	if !m.cfg.Thresholds.Breached(s.CurrentPrice) {
		logging.LogWithin(log, s)
		if m.cfg.ShowStatus && m.status != nil {
			m.status.Within(ticker, s, m.isOpen(ticker))
		}
		return
	}

	res.Alerts++
	ev := models.NewAlertEvent(s, m.cfg.Thresholds, m.now())
	logging.LogAlert(log, ev)

	// An alert found before shutdown is still delivered, but never for longer
	// than the delivery timeout.
	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.DeliveryTimeout)
	defer cancel()

	if m.notifier != nil {
		if err := m.notifier.Dispatch(deliverCtx, ticker, s); err != nil {
			res.NotifyFailures += failureCount(err)
			log.Error().Err(err).Str("alert_id", ev.ID).Msg("Alert notification failed")
		}
	}

	if m.recorder != nil {
		if err := m.recorder.Record(deliverCtx, ev); err != nil {
			res.RecordFailures++
			log.Error().Err(err).Str("alert_id", ev.ID).Msg("Alert event not recorded")
		}
	}
}

func (m *Monitor) isOpen(ticker string) bool {
	if m.market == nil {
		return true
	}
	return m.market.IsOpen(ticker, m.now())
}

func failureCount(err error) int {
	var de *apperrors.DispatchError
	if apperrors.As(err, &de) && len(de.Failures) > 0 {
		return len(de.Failures)
	}
	return 1
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
