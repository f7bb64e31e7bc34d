package payperiod

import (
	"time"

	"timeclock/models"
)

// Sunday-first weekday abbreviations, indexed by time.Weekday.
var weekdayNames = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// DayEntry is one calendar day of a week bucket. Entry is nil when no
// timesheet row exists for the date.
type DayEntry struct {
	Date    time.Time              `json:"date"`
	Weekday string                 `json:"weekday"`
	Entry   *models.TimesheetEntry `json:"entry"`
}

// Totals are summed hours for a week or a whole period.
type Totals struct {
	Regular  float64 `json:"regular"`
	Overtime float64 `json:"overtime"`
	Pto      float64 `json:"pto"`
	Holiday  float64 `json:"holiday"`
	Grand    float64 `json:"grand"`
}

func (t Totals) add(o Totals) Totals {
	return Totals{
		Regular:  t.Regular + o.Regular,
		Overtime: t.Overtime + o.Overtime,
		Pto:      t.Pto + o.Pto,
		Holiday:  t.Holiday + o.Holiday,
		Grand:    t.Grand + o.Grand,
	}
}

// Week is one 7-day half of a pay period.
type Week struct {
	Start  time.Time  `json:"start"`
	Days   []DayEntry `json:"days"`
	Totals Totals     `json:"totals"`
}

// BuildWeeks splits the period starting at periodStart into its two weeks
// and slots each entry onto its date. Entries outside the period are
// ignored; entries need not be sorted.
func BuildWeeks(periodStart time.Time, entries []models.TimesheetEntry) [2]Week {
	start := Midnight(periodStart)
	var weeks [2]Week
	for w := 0; w < 2; w++ {
		weekStart := start.AddDate(0, 0, w*DaysPerWeek)
		week := Week{
			Start: weekStart,
			Days:  make([]DayEntry, 0, DaysPerWeek),
		}
		for d := 0; d < DaysPerWeek; d++ {
			date := weekStart.AddDate(0, 0, d)
			entry := findEntry(entries, date)
			week.Days = append(week.Days, DayEntry{
				Date:    date,
				Weekday: weekdayNames[int(date.Weekday())],
				Entry:   entry,
			})
			if entry != nil {
				week.Totals.Regular += entry.RegularHours
				week.Totals.Overtime += entry.OvertimeHours
				week.Totals.Pto += entry.PtoHours
				week.Totals.Holiday += entry.HolidayHours
			}
		}
		week.Totals.Grand = week.Totals.Regular + week.Totals.Overtime +
			week.Totals.Pto + week.Totals.Holiday
		weeks[w] = week
	}
	return weeks
}

// PeriodTotals sums the two week buckets element-wise.
func PeriodTotals(weeks [2]Week) Totals {
	return weeks[0].Totals.add(weeks[1].Totals)
}

func findEntry(entries []models.TimesheetEntry, date time.Time) *models.TimesheetEntry {
	for i := range entries {
		if SameDay(entries[i].Date, date) {
			return &entries[i]
		}
	}
	return nil
}
