package timesheet

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"timeclock/models"
	"timeclock/payperiod"
)

// Repository is the persistence boundary for timesheet rows. The service
// never retries; failures propagate to the caller.
type Repository interface {
	// FindByEmployeeAndDateRange returns the rows for one employee with
	// start <= date <= end, ordered by date.
	FindByEmployeeAndDateRange(employeeID uint, start, end time.Time) ([]models.TimesheetEntry, error)

	// Upsert creates or updates the row keyed on (employeeID, date).
	// Fields left nil in the update retain their stored values.
	Upsert(employeeID uint, date time.Time, update models.TimesheetUpdate) (*models.TimesheetEntry, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByEmployeeAndDateRange(employeeID uint, start, end time.Time) ([]models.TimesheetEntry, error) {
	var entries []models.TimesheetEntry
	err := r.db.
		Where("user_id = ? AND date >= ? AND date <= ?", employeeID, payperiod.Midnight(start), payperiod.Midnight(end)).
		Order("date asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *gormRepository) Upsert(employeeID uint, date time.Time, update models.TimesheetUpdate) (*models.TimesheetEntry, error) {
	day := payperiod.Midnight(date)
	var entry models.TimesheetEntry

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND date = ?", employeeID, day).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.TimesheetEntry{UserID: employeeID, Date: day}
			update.Apply(&entry)
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}
		update.Apply(&entry)
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
