package models

import (
	"time"

	"gorm.io/gorm"
)

// TimesheetEntry is one employee-day of attendance. (user_id, date) is the
// natural key; rows are upserted, never hard-deleted — clearing a field
// writes zero/null into it.
type TimesheetEntry struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_timesheet_user_date" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Date      time.Time      `gorm:"not null;type:date;uniqueIndex:idx_timesheet_user_date" json:"date"`

	TimeIn  *time.Time `json:"time_in"`
	TimeOut *time.Time `json:"time_out"`

	RegularHours  float64 `gorm:"not null;default:0" json:"regular_hours"`
	OvertimeHours float64 `gorm:"not null;default:0" json:"overtime_hours"`
	PtoHours      float64 `gorm:"not null;default:0" json:"pto_hours"`
	HolidayHours  float64 `gorm:"not null;default:0" json:"holiday_hours"`

	PtoNotes    string `gorm:"size:500" json:"pto_notes"`
	HolidayName string `gorm:"size:200" json:"holiday_name"`
}

// WorkedHours is the portion of the day counted against the weekly
// overtime threshold. PTO and holiday hours are outside it.
func (e *TimesheetEntry) WorkedHours() float64 {
	return e.RegularHours + e.OvertimeHours
}

func (e *TimesheetEntry) TotalHours() float64 {
	return e.RegularHours + e.OvertimeHours + e.PtoHours + e.HolidayHours
}

// HasCompletePunch reports whether both clock times are recorded. A day
// with only one punch earns no computed hours.
func (e *TimesheetEntry) HasCompletePunch() bool {
	return e.TimeIn != nil && e.TimeOut != nil
}

// TimesheetUpdate is a partial update for an upsert keyed on (user, date).
// Nil fields retain their prior values. The double pointers on TimeIn and
// TimeOut distinguish "leave unchanged" (nil) from "set to null" (*nil).
type TimesheetUpdate struct {
	TimeIn        **time.Time
	TimeOut       **time.Time
	RegularHours  *float64
	OvertimeHours *float64
	PtoHours      *float64
	HolidayHours  *float64
	PtoNotes      *string
	HolidayName   *string
}

// Apply copies the set fields onto an entry.
func (u *TimesheetUpdate) Apply(e *TimesheetEntry) {
	if u.TimeIn != nil {
		e.TimeIn = *u.TimeIn
	}
	if u.TimeOut != nil {
		e.TimeOut = *u.TimeOut
	}
	if u.RegularHours != nil {
		e.RegularHours = *u.RegularHours
	}
	if u.OvertimeHours != nil {
		e.OvertimeHours = *u.OvertimeHours
	}
	if u.PtoHours != nil {
		e.PtoHours = *u.PtoHours
	}
	if u.HolidayHours != nil {
		e.HolidayHours = *u.HolidayHours
	}
	if u.PtoNotes != nil {
		e.PtoNotes = *u.PtoNotes
	}
	if u.HolidayName != nil {
		e.HolidayName = *u.HolidayName
	}
}
