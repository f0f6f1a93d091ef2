// Package prompt collects monitoring parameters interactively.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	apperrors "stock-notifier/internal/errors"
	"stock-notifier/internal/models"
	"stock-notifier/internal/quote"
	"stock-notifier/pkg/utils"
)

// Resolver turns a company name or ticker into a symbol.
type Resolver interface {
	Resolve(ctx context.Context, query string) (models.Symbol, error)
}

// Answers holds everything collected by Configure.
type Answers struct {
	Symbols    []models.Symbol
	Interval   time.Duration
	Thresholds models.Thresholds
	Email      string
}

// Options tunes the prompt session.
type Options struct {
	Color     bool
	AskEmail  bool
	Companies []quote.Company
}

// Prompter reads answers line by line and re-prompts on invalid input.
type Prompter struct {
	in       *bufio.Scanner
	out      io.Writer
	resolver Resolver
	opts     Options
	title    *color.Color
	warn     *color.Color
	ok       *color.Color
}

// New creates a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer, resolver Resolver, opts Options) *Prompter {
	p := &Prompter{
		in:       bufio.NewScanner(in),
		out:      out,
		resolver: resolver,
		opts:     opts,
		title:    color.New(color.FgCyan, color.Bold),
		warn:     color.New(color.FgRed),
		ok:       color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.title, p.warn, p.ok} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Configure runs the full interview: companies, interval, thresholds and,
// when enabled, the alert email address.
func (p *Prompter) Configure(ctx context.Context) (*Answers, error) {
	fmt.Fprintln(p.out, p.title.Sprint("Welcome to the Stock Price Notifier!"))

	syms, err := p.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	interval, err := p.Interval()
	if err != nil {
		return nil, err
	}
	th, err := p.Thresholds()
	if err != nil {
		return nil, err
	}

	a := &Answers{Symbols: syms, Interval: interval, Thresholds: th}
	if p.opts.AskEmail {
		if a.Email, err = p.Email(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Symbols asks for companies until a blank line, requiring at least one.
func (p *Prompter) Symbols(ctx context.Context) ([]models.Symbol, error) {
	if len(p.opts.Companies) > 0 {
		names := make([]string, len(p.opts.Companies))
		for i, c := range p.opts.Companies {
			names[i] = c.Name
		}
		fmt.Fprintf(p.out, "Available Companies: %s\n", strings.Join(names, ", "))
	}

	var syms []models.Symbol
	seen := make(map[string]bool)
	for {
		label := "Enter the company name: "
		if len(syms) > 0 {
			label = "Enter another company name (blank to finish): "
		}
		line, err := p.ask(label)
		if err != nil {
			return nil, err
		}

		if line == "" {
			if len(syms) > 0 {
				return syms, nil
			}
			p.warnf("Please enter at least one company.")
			continue
		}

		sym, err := p.resolver.Resolve(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.warnf("Invalid company name. Please choose from the available list.")
			continue
		}
		if seen[sym.Ticker] {
			p.warnf("%s is already being monitored.", sym.Ticker)
			continue
		}
		seen[sym.Ticker] = true
		syms = append(syms, sym)
		fmt.Fprintln(p.out, p.ok.Sprintf("Added %s", sym))
	}
}

// Interval asks for a positive whole number of seconds.
func (p *Prompter) Interval() (time.Duration, error) {
	for {
		line, err := p.ask("Enter the interval (in seconds) for stock notifications: ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			p.warnf("Invalid input. Please enter a valid integer.")
			continue
		}
		if n <= 0 {
			p.warnf("Please enter a positive integer.")
			continue
		}
		return time.Duration(n) * time.Second, nil
	}
}

// Thresholds asks for the lower and then the upper bound. Zero or a
// negative value disables a bound. An inverted pair is accepted with a
// warning.
func (p *Prompter) Thresholds() (models.Thresholds, error) {
	lower, err := p.price("Enter the lower price threshold (or 0 to disable): ")
	if err != nil {
		return models.Thresholds{}, err
	}
	upper, err := p.price("Enter the upper price threshold (or 0 to disable): ")
	if err != nil {
		return models.Thresholds{}, err
	}

	th := models.Thresholds{Lower: math.Max(lower, 0), Upper: math.Max(upper, 0)}
	if th.Inverted() {
		p.warnf(InvertedWarning)
	}
	return th, nil
}

// InvertedWarning is shown for a lower threshold at or above the upper one.
const InvertedWarning = "The lower threshold is not below the upper threshold, so almost every price will alert."


func (p *Prompter) price(label string) (float64, error) {
	for {
		line, err := p.ask(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(line, "$"), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			p.warnf("Invalid input. Please enter valid numbers.")
			continue
		}
		return v, nil
	}
}

// Email asks for an optional alert address. A blank answer skips email.
func (p *Prompter) Email() (string, error) {
	for {
		line, err := p.ask("Enter your email address for alerts (blank to skip): ")
		if err != nil {
			return "", err
		}
		if line == "" {
			return "", nil
		}
		at := strings.LastIndex(line, "@")
		if at <= 0 || at == len(line)-1 || strings.ContainsAny(line, " \t") {
			p.warnf("Invalid email address.")
			continue
		}
		return line, nil
	}
}

// ask prints label and returns the next trimmed line.
func (p *Prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("%w: reading input: %v", apperrors.ErrConfigInvalid, err)
		}
		return "", fmt.Errorf("%w: %w", apperrors.ErrConfigInvalid, apperrors.ErrInputClosed)
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) warnf(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.warn.Sprintf(format, args...))
}

// Summary prints what is about to be monitored.
func Summary(w io.Writer, syms []models.Symbol, interval time.Duration, th models.Thresholds) {
	tickers := make([]string, len(syms))
	for i, s := range syms {
		tickers[i] = s.Ticker
	}
	fmt.Fprintf(w, "Monitoring %s every %d seconds...\n", strings.Join(tickers, ", "), int(interval/time.Second))

	switch {
	case th.LowerEnabled() && th.UpperEnabled():
		fmt.Fprintf(w, "Alerts set for price below %s and above %s.\n", utils.FormatPrice(th.Lower), utils.FormatPrice(th.Upper))
	case th.LowerEnabled():
		fmt.Fprintf(w, "Alerts set for price below %s.\n", utils.FormatPrice(th.Lower))
	case th.UpperEnabled():
		fmt.Fprintf(w, "Alerts set for price above %s.\n", utils.FormatPrice(th.Upper))
	default:
		fmt.Fprintln(w, "Both thresholds are disabled; no alerts will fire.")
	}
}
