// Package market answers whether the exchange listing a ticker is open.
package market

import (
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// suffixes maps Yahoo ticker suffixes to ISO 10383 MIC codes.
var suffixes = []struct {
	suffix string
	mic    string
}{
	{".NS", "xnse"},
	{".BO", "xbom"},
	{".L", "xlon"},
	{".PA", "xpar"},
	{".DE", "xfra"},
	{".AS", "xams"},
	{".MI", "xmil"},
	{".MC", "xmad"},
	{".SW", "xswx"},
	{".TO", "xtse"},
	{".T", "xtks"},
	{".HK", "xhkg"},
	{".AX", "xasx"},
	{".KS", "xkrx"},
	{".TW", "xtai"},
	{".SS", "xshg"},
	{".SZ", "xshe"},
}

// session is a plain weekday trading window used when no calendar loads.
type session struct {
	zone  string
	open  time.Duration
	close time.Duration
}

var fallbackSessions = map[string]session{
	"xnys": {"America/New_York", 9*time.Hour + 30*time.Minute, 16 * time.Hour},
	"xnse": {"Asia/Kolkata", 9*time.Hour + 15*time.Minute, 15*time.Hour + 30*time.Minute},
	"xbom": {"Asia/Kolkata", 9*time.Hour + 15*time.Minute, 15*time.Hour + 30*time.Minute},
	"xlon": {"Europe/London", 8 * time.Hour, 16*time.Hour + 30*time.Minute},
	"xkrx": {"Asia/Seoul", 9 * time.Hour, 15*time.Hour + 30*time.Minute},
}

// MIC returns the exchange code for ticker. US listings default to xnys.
func MIC(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, s := range suffixes {
		if strings.HasSuffix(ticker, s.suffix) {
			return s.mic
		}
	}
	return "xnys"
}

// TradingCalendar reports trading days and hours for one exchange.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
	session  session
}

func loadCalendar(mic string) *TradingCalendar {
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}

	s, ok := fallbackSessions[mic]
	if !ok {
		s = fallbackSessions["xnys"]
	}
	loc, err := time.LoadLocation(s.zone)
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: loc, session: s}
}

// IsTradingDay reports whether date is a business day on the exchange.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}
	if tc.Fallback {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// IsOpen reports whether the exchange is in session at t.
func (tc *TradingCalendar) IsOpen(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}
	if !tc.Fallback {
		return tc.Calendar.IsOpen(t)
	}
	if !tc.IsTradingDay(t) {
		return false
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	return offset >= tc.session.open && offset < tc.session.close
}

// Calendars caches one TradingCalendar per exchange.
type Calendars struct {
	mu    sync.Mutex
	byMIC map[string]*TradingCalendar
}

// NewCalendars creates an empty calendar cache.
func NewCalendars() *Calendars {
	return &Calendars{byMIC: make(map[string]*TradingCalendar)}
}

// For returns the calendar of the exchange listing ticker.
func (c *Calendars) For(ticker string) *TradingCalendar {
	mic := MIC(ticker)

	c.mu.Lock()
	defer c.mu.Unlock()

	tc, ok := c.byMIC[mic]
	if !ok {
		tc = loadCalendar(mic)
		c.byMIC[mic] = tc
	}
	return tc
}

// IsOpen reports whether ticker's exchange is in session at t.
func (c *Calendars) IsOpen(ticker string, t time.Time) bool {
	return c.For(ticker).IsOpen(t)
}
