package payperiod

import (
	"math"
	"time"

	"timeclock/models"
)

// WeeklyRegularCap is the regular-hours threshold per 7-day week. Anything
// a day works past the week's remaining headroom is overtime on that day.
const WeeklyRegularCap = 40.0

// Split is a day's worked duration divided into regular and overtime.
type Split struct {
	Regular  float64 `json:"regular_hours"`
	Overtime float64 `json:"overtime_hours"`
}

// Apportion splits the span timeIn..timeOut into regular and overtime
// hours against the week containing excludeDate. entries is the full set
// of rows for the enclosing pay period; the row for excludeDate itself is
// skipped, since its hours are exactly what is being recomputed.
//
// The edited day absorbs all of its own overflow: hours already recorded
// on other days of the week are never reclassified, so editing days of one
// week out of order can move overtime between days. That mirrors how the
// timesheet has always behaved and payroll reviews expect it; do not
// "fix" it here without a product decision.
//
// A timeOut at or before timeIn clamps the worked duration to zero rather
// than going negative. Overnight shifts are not modeled.
func Apportion(timeIn, timeOut time.Time, periodStart, excludeDate time.Time, entries []models.TimesheetEntry) Split {
	totalWorked := math.Max(0, timeOut.Sub(timeIn).Hours())

	week := WeekIndex(periodStart, excludeDate)
	existing := existingWeeklyHours(periodStart, week, excludeDate, entries)

	availableRegular := math.Max(0, WeeklyRegularCap-existing)

	var split Split
	if totalWorked <= availableRegular {
		split = Split{Regular: totalWorked, Overtime: 0}
	} else {
		split = Split{Regular: availableRegular, Overtime: totalWorked - availableRegular}
	}
	split.Regular = Round2(split.Regular)
	split.Overtime = Round2(split.Overtime)
	return split
}

// existingWeeklyHours sums regular+overtime across the given week,
// excluding the day being recalculated.
func existingWeeklyHours(periodStart time.Time, week int, excludeDate time.Time, entries []models.TimesheetEntry) float64 {
	var sum float64
	for i := range entries {
		e := &entries[i]
		if SameDay(e.Date, excludeDate) {
			continue
		}
		if !Resolve(e.Date).Start.Equal(Midnight(periodStart)) {
			continue
		}
		if WeekIndex(periodStart, e.Date) != week {
			continue
		}
		sum += e.WorkedHours()
	}
	return sum
}

// Round2 rounds hours to hundredths, the precision every stored hour
// field carries.
func Round2(hours float64) float64 {
	return math.Round(hours*100) / 100
}
