package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{412.329986, "$412.33"},
		{1234.5, "$1,234.50"},
		{1000000, "$1,000,000.00"},
		{-98765.432, "-$98,765.43"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// For any amount, FormatPrice keeps two decimals, groups by thousands and
// parses back to the rounded value.
func TestProperty_FormatPriceRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	grouping := regexp.MustCompile(`^\d{1,3}(,\d{3})*\.\d{2}$`)

	properties.Property("formatted price parses back within a cent", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatPrice(amount)
			body := strings.TrimPrefix(strings.TrimPrefix(formatted, "-"), "$")
			if !grouping.MatchString(body) {
				t.Logf("bad grouping for %f: %s", amount, formatted)
				return false
			}
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(body, ",", ""), 64)
			if err != nil {
				return false
			}
			return math.Abs(parsed-math.Abs(amount)) <= 0.006
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(2.5); got != "+2.50%" {
		t.Errorf("FormatPercent(2.5) = %q", got)
	}
	if got := FormatPercent(-1); got != "-1.00%" {
		t.Errorf("FormatPercent(-1) = %q", got)
	}
	if got := PercentFrom(110, 100); math.Abs(got-10) > 1e-9 {
		t.Errorf("PercentFrom(110, 100) = %v", got)
	}
	if PercentFrom(5, 0) != 0 {
		t.Error("PercentFrom with zero reference should be 0")
	}
}
