// Package models provides domain models for the stock notifier.
package models

import (
	"strings"
	"time"
)

// Symbol is a monitored ticker with an optional display name.
type Symbol struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
}

// NewSymbol normalizes the ticker to upper case.
func NewSymbol(ticker, name string) Symbol {
	return Symbol{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
		Name:   strings.TrimSpace(name),
	}
}

// String returns "Name (TICKER)" or just the ticker when no name is set.
func (s Symbol) String() string {
	if s.Name == "" || strings.EqualFold(s.Name, s.Ticker) {
		return s.Ticker
	}
	return s.Name + " (" + s.Ticker + ")"
}

// Snapshot is one point-in-time price reading for a symbol.
type Snapshot struct {
	Ticker       string    `json:"ticker"`
	CurrentPrice float64   `json:"current_price"`
	DayLow       float64   `json:"day_low"`
	DayHigh      float64   `json:"day_high"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Thresholds holds the lower and upper alert bounds.
// A bound <= 0 is disabled.
type Thresholds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// LowerEnabled reports whether the lower bound is active.
func (t Thresholds) LowerEnabled() bool {
	return t.Lower > 0
}

// UpperEnabled reports whether the upper bound is active.
func (t Thresholds) UpperEnabled() bool {
	return t.Upper > 0
}

// Inverted reports whether both bounds are active and the lower one is not
// below the upper one. Almost every price then alerts.
func (t Thresholds) Inverted() bool {
	return t.LowerEnabled() && t.UpperEnabled() && t.Lower >= t.Upper
}

// Evaluate returns the breached side for price, or DirectionNone.
// Both comparisons are strict.
func (t Thresholds) Evaluate(price float64) Direction {
	switch {
	case t.LowerEnabled() && price < t.Lower:
		return DirectionBelow
	case t.UpperEnabled() && price > t.Upper:
		return DirectionAbove
	default:
		return DirectionNone
	}
}

// Breached reports whether price is outside the enabled bounds.
func (t Thresholds) Breached(price float64) bool {
	return t.Evaluate(price) != DirectionNone
}
