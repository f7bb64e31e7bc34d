package timesheet

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Retail holiday schedule: US federal holidays the stores close for.
var storeCalendar = cal.NewBusinessCalendar()

func init() {
	storeCalendar.AddHoliday(
		us.NewYear,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
}

// HolidayName returns the observed holiday name for a date, or "" when the
// date is not on the store calendar.
func HolidayName(date time.Time) string {
	actual, _, holiday := storeCalendar.IsHoliday(date)
	if actual && holiday != nil {
		return holiday.Name
	}
	return ""
}
