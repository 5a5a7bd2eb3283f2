// Package calendar provides weekly-expiry date arithmetic for index options.
package calendar

import (
	"time"
)

// regime is one historical era of the weekly-expiry convention. NSE has
// moved the weekly expiry weekday twice; a backtest spanning the change
// must price against the weekday in force on the entry date.
type regime struct {
	from    time.Time // zero value = beginning of time
	weekday time.Weekday
}

// Regimes ordered by start date; later regimes supersede earlier ones.
var regimes = []regime{
	{from: time.Time{}, weekday: time.Thursday},
	{from: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), weekday: time.Monday},
	{from: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), weekday: time.Tuesday},
}

// Calendar computes expiry and entry dates for weekly index options.
type Calendar struct{}

// New creates a new expiry calendar.
func New() *Calendar {
	return &Calendar{}
}

// ExpiryWeekday returns the weekly-expiry weekday in force on the given date.
func (c *Calendar) ExpiryWeekday(date time.Time) time.Weekday {
	day := truncate(date)
	weekday := regimes[0].weekday
	for _, r := range regimes[1:] {
		if !day.Before(r.from) {
			weekday = r.weekday
		}
	}
	return weekday
}

// NextExpiry returns the next occurrence of the expiry weekday strictly
// after fromDate. If fromDate itself falls on the expiry weekday, the
// expiry a full week later is returned, never the same date.
func (c *Calendar) NextExpiry(fromDate time.Time) time.Time {
	day := truncate(fromDate)
	target := c.ExpiryWeekday(day)

	days := (int(target) - int(day.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return day.AddDate(0, 0, days)
}

// EntryDateForDTE returns the entry date dte calendar days before expiry.
// If that lands on a weekend, the prior weekday is used.
func (c *Calendar) EntryDateForDTE(expiry time.Time, dte int) time.Time {
	entry := truncate(expiry).AddDate(0, 0, -dte)
	for isWeekend(entry) {
		entry = entry.AddDate(0, 0, -1)
	}
	return entry
}

// ExpiryCycle is one entry/expiry pair enumerated over a date range.
type ExpiryCycle struct {
	EntryDate  time.Time
	ExpiryDate time.Time
	DTE        int
}

// Cycles enumerates entry/expiry pairs for expiries falling in
// (start, end], with entries targeted dte days before each expiry.
// DTE is recomputed from the resolved entry date, so weekend step-backs
// widen it.
func (c *Calendar) Cycles(start, end time.Time, dte int) []ExpiryCycle {
	var cycles []ExpiryCycle

	cursor := truncate(start).AddDate(0, 0, -1)
	for {
		expiry := c.NextExpiry(cursor)
		if expiry.After(truncate(end)) {
			break
		}
		entry := c.EntryDateForDTE(expiry, dte)
		cycles = append(cycles, ExpiryCycle{
			EntryDate:  entry,
			ExpiryDate: expiry,
			DTE:        DaysBetween(entry, expiry),
		})
		cursor = expiry
	}

	return cycles
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(truncate(b).Sub(truncate(a)).Hours() / 24)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// truncate drops the time-of-day component.
func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
