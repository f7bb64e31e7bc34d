// Package payperiod implements the pay-period calendar and the weekly
// overtime split. Everything here is pure computation; persistence and
// permissions live elsewhere.
package payperiod

import (
	"fmt"
	"time"
)

// Pay periods are 14-day intervals tiled from a fixed anchor. Every date,
// including dates before the anchor, belongs to exactly one period.
const (
	DaysPerPeriod = 14
	DaysPerWeek   = 7
	DateLayout    = "2006-01-02"
)

// AnchorDate is the start of the reference pay period. Do not change this
// once timesheets exist: it shifts every period boundary.
var AnchorDate = time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)

type Direction string

const (
	Next Direction = "next"
	Prev Direction = "prev"
)

// Period is a closed 14-day interval. Start and End are UTC midnights.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Resolve returns the pay period enclosing the given date.
func Resolve(date time.Time) Period {
	d := Midnight(date)
	diffDays := daysBetween(AnchorDate, d)
	periodIndex := floorDiv(diffDays, DaysPerPeriod)
	start := AnchorDate.AddDate(0, 0, periodIndex*DaysPerPeriod)
	end := start.AddDate(0, 0, DaysPerPeriod-1)
	return Period{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%s - %s", labelDate(start), labelDate(end)),
	}
}

// Navigate returns the period adjacent to the one starting at periodStart.
// Navigating next then prev lands back on the original period.
func Navigate(periodStart time.Time, dir Direction) Period {
	offset := DaysPerPeriod
	if dir == Prev {
		offset = -DaysPerPeriod
	}
	return Resolve(Midnight(periodStart).AddDate(0, 0, offset))
}

// WeekIndex returns 0 for the first seven days of the period and 1 for the
// rest. The caller guarantees the date falls inside the period.
func WeekIndex(periodStart, date time.Time) int {
	if daysBetween(Midnight(periodStart), Midnight(date)) < DaysPerWeek {
		return 0
	}
	return 1
}

// ParseDate parses a YYYY-MM-DD string as a timezone-naive calendar date.
// Dates are kept at UTC midnight throughout so day arithmetic never
// crosses a DST boundary.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Midnight truncates a timestamp to its calendar date at UTC midnight.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// labelDate renders M/D/YYYY without zero padding.
func labelDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

// daysBetween counts whole days from a to b. Both arguments must already
// be UTC midnights, so the difference is an exact multiple of 24h.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// floorDiv divides rounding toward negative infinity, so period indices
// for dates before the anchor come out right.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
