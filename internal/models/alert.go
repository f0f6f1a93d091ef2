package models

import (
	"time"

	"github.com/google/uuid"
)

// Direction is the side of the threshold band a price crossed.
type Direction string

const (
	DirectionNone  Direction = ""
	DirectionBelow Direction = "below"
	DirectionAbove Direction = "above"
)

// AlertEvent is an alert-worthy snapshot handed to the event log.
type AlertEvent struct {
	ID         string     `json:"id"`
	Ticker     string     `json:"ticker"`
	Snapshot   Snapshot   `json:"snapshot"`
	Thresholds Thresholds `json:"thresholds"`
	Direction  Direction  `json:"direction"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NewAlertEvent creates an event for snap stamped at ts.
func NewAlertEvent(snap Snapshot, thresholds Thresholds, ts time.Time) AlertEvent {
	return AlertEvent{
		ID:         uuid.New().String(),
		Ticker:     snap.Ticker,
		Snapshot:   snap,
		Thresholds: thresholds,
		Direction:  thresholds.Evaluate(snap.CurrentPrice),
		Timestamp:  ts,
	}
}
