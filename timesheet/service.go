package timesheet

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"timeclock/logging"
	"timeclock/models"
	"timeclock/payperiod"
)

// Service runs all timesheet mutations and period reads. The pay-period
// math lives in payperiod; this layer adds validation, persistence and
// the per-week write serialization.
type Service struct {
	repo Repository

	// Apportionment is a read-modify-write over the whole week, so edits
	// to different days of one employee-week must not interleave.
	mu        sync.Mutex
	weekLocks map[string]*sync.Mutex
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		weekLocks: make(map[string]*sync.Mutex),
	}
}

// PeriodView is one employee's pay period: the two week buckets and the
// period totals. Computed fresh on every call, nothing is cached.
type PeriodView struct {
	EmployeeID uint             `json:"employee_id"`
	Period     payperiod.Period `json:"period"`
	Weeks      []payperiod.Week `json:"weeks"`
	Totals     payperiod.Totals `json:"totals"`
}

func (s *Service) PeriodView(employeeID uint, date time.Time) (*PeriodView, error) {
	period := payperiod.Resolve(date)
	entries, err := s.repo.FindByEmployeeAndDateRange(employeeID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	weeks := payperiod.BuildWeeks(period.Start, entries)
	return &PeriodView{
		EmployeeID: employeeID,
		Period:     period,
		Weeks:      weeks[:],
		Totals:     payperiod.PeriodTotals(weeks),
	}, nil
}

// SetTimes records the day's clock-in/out and recomputes its
// regular/overtime split against the rest of the week. Passing nil for
// either time leaves an incomplete punch, which always carries zero
// computed hours.
func (s *Service) SetTimes(employeeID uint, date time.Time, timeIn, timeOut *time.Time) (*models.TimesheetEntry, error) {
	day := payperiod.Midnight(date)
	if timeIn != nil && !payperiod.SameDay(*timeIn, day) {
		return nil, invalidf("time_in", "must fall on %s", day.Format(payperiod.DateLayout))
	}
	if timeOut != nil && !payperiod.SameDay(*timeOut, day) {
		return nil, invalidf("time_out", "must fall on %s", day.Format(payperiod.DateLayout))
	}

	unlock := s.lockWeek(employeeID, day)
	defer unlock()
	return s.writeTimes(employeeID, day, timeIn, timeOut)
}

// ClearTimes nulls both punches and zeroes the computed hours. PTO and
// holiday fields are untouched; the row itself is never deleted.
func (s *Service) ClearTimes(employeeID uint, date time.Time) (*models.TimesheetEntry, error) {
	day := payperiod.Midnight(date)
	unlock := s.lockWeek(employeeID, day)
	defer unlock()
	return s.writeTimes(employeeID, day, nil, nil)
}

// ClockIn opens a provisional punch: time-in recorded, time-out null,
// computed hours zero until the punch completes.
func (s *Service) ClockIn(employeeID uint, at time.Time) (*models.TimesheetEntry, error) {
	day := payperiod.Midnight(at)
	unlock := s.lockWeek(employeeID, day)
	defer unlock()
	in := at
	return s.writeTimes(employeeID, day, &in, nil)
}

// ClockOut completes the day's open punch and apportions the worked span.
func (s *Service) ClockOut(employeeID uint, at time.Time) (*models.TimesheetEntry, error) {
	day := payperiod.Midnight(at)
	unlock := s.lockWeek(employeeID, day)
	defer unlock()

	rows, err := s.repo.FindByEmployeeAndDateRange(employeeID, day, day)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].TimeIn == nil {
		return nil, invalidf("time_in", "no open clock-in for %s", day.Format(payperiod.DateLayout))
	}
	in := *rows[0].TimeIn
	out := at
	return s.writeTimes(employeeID, day, &in, &out)
}

// SetPTO writes PTO hours and an optional note. PTO never interacts with
// the overtime split.
func (s *Service) SetPTO(employeeID uint, date time.Time, hours float64, notes string) (*models.TimesheetEntry, error) {
	if err := validateHours("pto_hours", hours); err != nil {
		return nil, err
	}
	rounded := payperiod.Round2(hours)
	return s.repo.Upsert(employeeID, payperiod.Midnight(date), models.TimesheetUpdate{
		PtoHours: &rounded,
		PtoNotes: &notes,
	})
}

func (s *Service) ClearPTO(employeeID uint, date time.Time) (*models.TimesheetEntry, error) {
	zero := 0.0
	empty := ""
	return s.repo.Upsert(employeeID, payperiod.Midnight(date), models.TimesheetUpdate{
		PtoHours: &zero,
		PtoNotes: &empty,
	})
}

// SetHoliday writes holiday hours. An empty name is filled in from the
// store holiday calendar when the date lands on one.
func (s *Service) SetHoliday(employeeID uint, date time.Time, hours float64, name string) (*models.TimesheetEntry, error) {
	if err := validateHours("holiday_hours", hours); err != nil {
		return nil, err
	}
	if name == "" {
		name = HolidayName(date)
	}
	rounded := payperiod.Round2(hours)
	return s.repo.Upsert(employeeID, payperiod.Midnight(date), models.TimesheetUpdate{
		HolidayHours: &rounded,
		HolidayName:  &name,
	})
}

func (s *Service) ClearHoliday(employeeID uint, date time.Time) (*models.TimesheetEntry, error) {
	zero := 0.0
	empty := ""
	return s.repo.Upsert(employeeID, payperiod.Midnight(date), models.TimesheetUpdate{
		HolidayHours: &zero,
		HolidayName:  &empty,
	})
}

// writeTimes persists a punch pair plus its recomputed split. Callers
// hold the week lock.
func (s *Service) writeTimes(employeeID uint, day time.Time, timeIn, timeOut *time.Time) (*models.TimesheetEntry, error) {
	var split payperiod.Split
	if timeIn != nil && timeOut != nil {
		period := payperiod.Resolve(day)
		entries, err := s.repo.FindByEmployeeAndDateRange(employeeID, period.Start, period.End)
		if err != nil {
			return nil, err
		}
		split = payperiod.Apportion(*timeIn, *timeOut, period.Start, day, entries)
		if split.Regular < 0 || split.Overtime < 0 {
			panic(fmt.Sprintf("apportionment produced negative hours for employee %d on %s: %+v",
				employeeID, day.Format(payperiod.DateLayout), split))
		}
	}
	return s.repo.Upsert(employeeID, day, models.TimesheetUpdate{
		TimeIn:        &timeIn,
		TimeOut:       &timeOut,
		RegularHours:  &split.Regular,
		OvertimeHours: &split.Overtime,
	})
}

func (s *Service) lockWeek(employeeID uint, day time.Time) func() {
	period := payperiod.Resolve(day)
	weekStart := period.Start.AddDate(0, 0, payperiod.WeekIndex(period.Start, day)*payperiod.DaysPerWeek)
	key := fmt.Sprintf("%d:%s", employeeID, weekStart.Format(payperiod.DateLayout))

	s.mu.Lock()
	lock, ok := s.weekLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.weekLocks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func validateHours(field string, hours float64) error {
	if hours < 0 || hours > 24 {
		return invalidf(field, "must be between 0 and 24, got %v", hours)
	}
	return nil
}

// CombineClock attaches an HH:MM wall-clock string to a calendar date.
func CombineClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, invalidf("clock", "invalid time %q, want HH:MM", clock)
	}
	d := payperiod.Midnight(day)
	return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// BulkAction selects what a bulk request applies to each date.
type BulkAction string

const (
	BulkSetTimes   BulkAction = "set-times"
	BulkClearTimes BulkAction = "clear-times"
	BulkSetPTO     BulkAction = "set-pto"
	BulkClearPTO   BulkAction = "clear-pto"
)

// BulkRequest applies one action to a set of dates for one employee.
type BulkRequest struct {
	Action   BulkAction
	Dates    []time.Time
	TimeIn   string // HH:MM, set-times only
	TimeOut  string // HH:MM, set-times only
	PtoHours float64
	PtoNotes string
}

// BulkResult is the aggregate outcome: N of M succeeded. Per-date
// outcomes are not reported; callers that need them must apply dates
// one at a time.
type BulkResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BulkApply runs the action over the dates sequentially, persisting each
// date before moving on. A failed date is skipped, not retried, and does
// not roll back earlier dates. Because set-times apportions against the
// week's already-stored rows, applying it to several days of the same
// week in different orders can move overtime between those days.
//
// The request is validated before anything is written; a ValidationError
// means no date was touched.
func (s *Service) BulkApply(employeeID uint, req BulkRequest) (BulkResult, error) {
	if len(req.Dates) == 0 {
		return BulkResult{}, invalidf("dates", "at least one date is required")
	}

	switch req.Action {
	case BulkSetTimes:
		if _, err := time.Parse("15:04", req.TimeIn); err != nil {
			return BulkResult{}, invalidf("time_in", "invalid time %q, want HH:MM", req.TimeIn)
		}
		if _, err := time.Parse("15:04", req.TimeOut); err != nil {
			return BulkResult{}, invalidf("time_out", "invalid time %q, want HH:MM", req.TimeOut)
		}
	case BulkSetPTO:
		if err := validateHours("pto_hours", req.PtoHours); err != nil {
			return BulkResult{}, err
		}
	case BulkClearTimes, BulkClearPTO:
	default:
		return BulkResult{}, invalidf("action", "unknown bulk action %q", req.Action)
	}

	result := BulkResult{Total: len(req.Dates)}
	for _, date := range req.Dates {
		if err := s.applyBulkDate(employeeID, date, req); err != nil {
			result.Failed++
			logging.Logger.WithFields(logrus.Fields{
				"employee_id": employeeID,
				"date":        payperiod.Midnight(date).Format(payperiod.DateLayout),
				"action":      req.Action,
			}).WithError(err).Warn("Bulk timesheet update failed for date, continuing")
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func (s *Service) applyBulkDate(employeeID uint, date time.Time, req BulkRequest) error {
	var err error
	switch req.Action {
	case BulkSetTimes:
		var in, out time.Time
		if in, err = CombineClock(date, req.TimeIn); err != nil {
			return err
		}
		if out, err = CombineClock(date, req.TimeOut); err != nil {
			return err
		}
		_, err = s.SetTimes(employeeID, date, &in, &out)
	case BulkClearTimes:
		_, err = s.ClearTimes(employeeID, date)
	case BulkSetPTO:
		_, err = s.SetPTO(employeeID, date, req.PtoHours, req.PtoNotes)
	case BulkClearPTO:
		_, err = s.ClearPTO(employeeID, date)
	}
	return err
}
