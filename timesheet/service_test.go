package timesheet

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/models"
	"timeclock/payperiod"
)

// fakeRepo is an in-memory Repository with per-date failure injection.
type fakeRepo struct {
	mu     sync.Mutex
	rows   map[string]models.TimesheetEntry
	failOn map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:   make(map[string]models.TimesheetEntry),
		failOn: make(map[string]error),
	}
}

func rowKey(employeeID uint, date time.Time) string {
	return fmt.Sprintf("%d:%s", employeeID, payperiod.Midnight(date).Format(payperiod.DateLayout))
}

func (r *fakeRepo) FindByEmployeeAndDateRange(employeeID uint, start, end time.Time) ([]models.TimesheetEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.TimesheetEntry
	for _, row := range r.rows {
		if row.UserID != employeeID {
			continue
		}
		if row.Date.Before(payperiod.Midnight(start)) || row.Date.After(payperiod.Midnight(end)) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeRepo) Upsert(employeeID uint, date time.Time, update models.TimesheetUpdate) (*models.TimesheetEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := payperiod.Midnight(date)
	if err := r.failOn[day.Format(payperiod.DateLayout)]; err != nil {
		return nil, err
	}

	key := rowKey(employeeID, day)
	row, ok := r.rows[key]
	if !ok {
		row = models.TimesheetEntry{UserID: employeeID, Date: day}
	}
	update.Apply(&row)
	r.rows[key] = row
	return &row, nil
}

func (r *fakeRepo) get(t *testing.T, employeeID uint, day string) models.TimesheetEntry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[fmt.Sprintf("%d:%s", employeeID, day)]
	require.True(t, ok, "expected a row for %s", day)
	return row
}

func date(s string) time.Time {
	t, err := payperiod.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func clock(day, hhmm string) *time.Time {
	t, err := CombineClock(date(day), hhmm)
	if err != nil {
		panic(err)
	}
	return &t
}

const emp = uint(7)

func TestSetTimesComputesSplit(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	entry, err := svc.SetTimes(emp, date("2026-01-05"), clock("2026-01-05", "08:00"), clock("2026-01-05", "17:30"))
	require.NoError(t, err)

	assert.Equal(t, 9.5, entry.RegularHours)
	assert.Equal(t, 0.0, entry.OvertimeHours)
	require.NotNil(t, entry.TimeIn)
	require.NotNil(t, entry.TimeOut)
}

func TestSetTimesApportionsAgainstWeek(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	// Fill Mon-Thu of the week with 9.5h days: 38 committed hours.
	for _, d := range []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08"} {
		_, err := svc.SetTimes(emp, date(d), clock(d, "08:00"), clock(d, "17:30"))
		require.NoError(t, err)
	}

	// Friday works 5h: 2 regular left, 3 overtime.
	entry, err := svc.SetTimes(emp, date("2026-01-09"), clock("2026-01-09", "08:00"), clock("2026-01-09", "13:00"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, entry.RegularHours)
	assert.Equal(t, 3.0, entry.OvertimeHours)
}

func TestSetTimesReversedPunchesClampToZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	entry, err := svc.SetTimes(emp, date("2026-01-05"), clock("2026-01-05", "17:00"), clock("2026-01-05", "08:00"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, entry.RegularHours)
	assert.Equal(t, 0.0, entry.OvertimeHours)
}

func TestSetTimesIncompletePunchZeroesHours(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	// Full day first.
	_, err := svc.SetTimes(emp, date("2026-01-05"), clock("2026-01-05", "08:00"), clock("2026-01-05", "16:00"))
	require.NoError(t, err)

	// Dropping the out-punch overrides the stored hours with zero.
	entry, err := svc.SetTimes(emp, date("2026-01-05"), clock("2026-01-05", "08:00"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, entry.RegularHours)
	assert.Equal(t, 0.0, entry.OvertimeHours)
	assert.NotNil(t, entry.TimeIn)
	assert.Nil(t, entry.TimeOut)
}

func TestSetTimesRejectsWrongDayTimestamp(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.SetTimes(emp, date("2026-01-05"), clock("2026-01-06", "08:00"), clock("2026-01-05", "16:00"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, repo.rows, "validation failure must not write")
}

func TestClearTimesKeepsPtoAndHoliday(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.SetTimes(emp, date("2026-01-05"), clock("2026-01-05", "08:00"), clock("2026-01-05", "16:00"))
	require.NoError(t, err)
	_, err = svc.SetPTO(emp, date("2026-01-05"), 4, "dentist")
	require.NoError(t, err)

	entry, err := svc.ClearTimes(emp, date("2026-01-05"))
	require.NoError(t, err)

	assert.Nil(t, entry.TimeIn)
	assert.Nil(t, entry.TimeOut)
	assert.Equal(t, 0.0, entry.RegularHours)
	assert.Equal(t, 0.0, entry.OvertimeHours)
	assert.Equal(t, 4.0, entry.PtoHours)
	assert.Equal(t, "dentist", entry.PtoNotes)
}

func TestClockInThenOut(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	in := *clock("2026-01-05", "09:00")
	entry, err := svc.ClockIn(emp, in)
	require.NoError(t, err)
	require.NotNil(t, entry.TimeIn)
	assert.Nil(t, entry.TimeOut)
	assert.Equal(t, 0.0, entry.WorkedHours())

	out := *clock("2026-01-05", "17:20")
	entry, err = svc.ClockOut(emp, out)
	require.NoError(t, err)
	assert.Equal(t, 8.33, entry.RegularHours)
	assert.Equal(t, 0.0, entry.OvertimeHours)
}

func TestClockOutWithoutClockIn(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.ClockOut(emp, *clock("2026-01-05", "17:00"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestSetPTO(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	entry, err := svc.SetPTO(emp, date("2026-01-05"), 7.333333, "vacation")
	require.NoError(t, err)
	assert.Equal(t, 7.33, entry.PtoHours)
	assert.Equal(t, "vacation", entry.PtoNotes)

	_, err = svc.SetPTO(emp, date("2026-01-05"), -1, "")
	assert.True(t, IsValidation(err))
	_, err = svc.SetPTO(emp, date("2026-01-05"), 25, "")
	assert.True(t, IsValidation(err))
}

func TestPtoDoesNotAffectApportionment(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.SetPTO(emp, date("2026-01-05"), 24, "long weekend")
	require.NoError(t, err)
	_, err = svc.SetHoliday(emp, date("2026-01-06"), 24, "Inventory Day")
	require.NoError(t, err)

	entry, err := svc.SetTimes(emp, date("2026-01-07"), clock("2026-01-07", "08:00"), clock("2026-01-07", "18:00"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, entry.RegularHours)
	assert.Equal(t, 0.0, entry.OvertimeHours)
}

func TestSetHolidayAutoFillsName(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	entry, err := svc.SetHoliday(emp, date("2026-07-04"), 8, "")
	require.NoError(t, err)
	assert.Equal(t, "Independence Day", entry.HolidayName)

	// An explicit name wins over the calendar.
	entry, err = svc.SetHoliday(emp, date("2026-07-04"), 8, "Store Anniversary")
	require.NoError(t, err)
	assert.Equal(t, "Store Anniversary", entry.HolidayName)

	// Ordinary days get no name.
	entry, err = svc.SetHoliday(emp, date("2026-07-07"), 8, "")
	require.NoError(t, err)
	assert.Equal(t, "", entry.HolidayName)
}

func TestUpsertRetainsUnspecifiedFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.SetTimes(emp, date("2026-01-05"), clock("2026-01-05", "08:00"), clock("2026-01-05", "16:00"))
	require.NoError(t, err)
	_, err = svc.SetPTO(emp, date("2026-01-05"), 2, "left early")
	require.NoError(t, err)

	row := repo.get(t, emp, "2026-01-05")
	assert.Equal(t, 8.0, row.RegularHours, "PTO write must not clobber worked hours")
	assert.NotNil(t, row.TimeIn)
	assert.Equal(t, 2.0, row.PtoHours)
}

func TestBulkApplyPartialFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	repo.failOn["2026-01-06"] = errors.New("connection reset")

	result, err := svc.BulkApply(emp, BulkRequest{
		Action:   BulkSetPTO,
		Dates:    []time.Time{date("2026-01-05"), date("2026-01-06"), date("2026-01-07")},
		PtoHours: 8,
		PtoNotes: "store closed",
	})
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Total: 3, Succeeded: 2, Failed: 1}, result)

	// Earlier and later dates stay written; the failed one is absent.
	assert.Equal(t, 8.0, repo.get(t, emp, "2026-01-05").PtoHours)
	assert.Equal(t, 8.0, repo.get(t, emp, "2026-01-07").PtoHours)
	_, exists := repo.rows[fmt.Sprintf("%d:%s", emp, "2026-01-06")]
	assert.False(t, exists)
}

func TestBulkApplyValidatesBeforeWriting(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.BulkApply(emp, BulkRequest{Action: "reticulate", Dates: []time.Time{date("2026-01-05")}})
	assert.True(t, IsValidation(err))

	_, err = svc.BulkApply(emp, BulkRequest{Action: BulkSetTimes, Dates: []time.Time{date("2026-01-05")}, TimeIn: "8am", TimeOut: "17:00"})
	assert.True(t, IsValidation(err))

	_, err = svc.BulkApply(emp, BulkRequest{Action: BulkSetPTO})
	assert.True(t, IsValidation(err))

	assert.Empty(t, repo.rows)
}

func TestBulkSetTimesApportionsSequentially(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	result, err := svc.BulkApply(emp, BulkRequest{
		Action:  BulkSetTimes,
		Dates:   []time.Time{date("2026-01-05"), date("2026-01-06"), date("2026-01-07")},
		TimeIn:  "06:00",
		TimeOut: "22:00",
	})
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Total: 3, Succeeded: 3}, result)

	// Three 16-hour days: the last date applied crosses the 40-hour cap
	// and absorbs the whole overflow.
	assert.Equal(t, 16.0, repo.get(t, emp, "2026-01-05").RegularHours)
	assert.Equal(t, 16.0, repo.get(t, emp, "2026-01-06").RegularHours)
	wed := repo.get(t, emp, "2026-01-07")
	assert.Equal(t, 8.0, wed.RegularHours)
	assert.Equal(t, 8.0, wed.OvertimeHours)
}

// Concurrent edits to different days of one week must serialize: the
// final week total never exceeds the cap plus legitimate overtime.
func TestConcurrentWeekEditsSerialize(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	days := []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09", "2026-01-10"}
	var wg sync.WaitGroup
	for _, d := range days {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()
			_, err := svc.SetTimes(emp, date(d), clock(d, "08:00"), clock(d, "18:00"))
			assert.NoError(t, err)
		}(d)
	}
	wg.Wait()

	var regular, overtime float64
	for _, d := range days {
		row := repo.get(t, emp, d)
		regular += row.RegularHours
		overtime += row.OvertimeHours
	}
	assert.Equal(t, 40.0, regular, "regular hours must cap at 40 regardless of interleaving")
	assert.Equal(t, 20.0, overtime)
}
