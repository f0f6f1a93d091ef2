package models

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: a price strictly inside an enabled band never alerts, and a price
// strictly outside always does.
func TestProperty_ThresholdBand(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("alert iff outside (lower, upper)", prop.ForAll(
		func(lower, width, price float64) bool {
			th := Thresholds{Lower: lower, Upper: lower + width}
			outside := price < th.Lower || price > th.Upper
			return th.Breached(price) == outside
		},
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0, 30000),
	))

	properties.Property("disabled bounds never alert", prop.ForAll(
		func(price float64) bool {
			return !Thresholds{}.Breached(price)
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("equality with a bound never alerts", prop.ForAll(
		func(bound float64) bool {
			below := Thresholds{Lower: bound}
			above := Thresholds{Upper: bound}
			return !below.Breached(bound) && !above.Breached(bound)
		},
		gen.Float64Range(0.01, 1e6),
	))

	properties.Property("direction matches the side crossed", prop.ForAll(
		func(lower, width, delta float64) bool {
			th := Thresholds{Lower: lower, Upper: lower + width}
			low := th.Lower - delta
			high := th.Upper + delta
			if low >= th.Lower || high <= th.Upper || math.IsInf(high, 0) {
				return true
			}
			return th.Evaluate(low) == DirectionBelow && th.Evaluate(high) == DirectionAbove
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.001, 500),
	))

	properties.TestingRun(t)
}
