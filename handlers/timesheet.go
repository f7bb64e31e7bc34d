package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"timeclock/config"
	"timeclock/database"
	"timeclock/middleware"
	"timeclock/models"
	"timeclock/payperiod"
	"timeclock/timesheet"
)

type TimesheetHandler struct {
	config  *config.Config
	service *timesheet.Service
}

func NewTimesheetHandler(cfg *config.Config, service *timesheet.Service) *TimesheetHandler {
	return &TimesheetHandler{config: cfg, service: service}
}

// PeriodView returns the pay period enclosing ?date= (default today) for
// ?employee_id= (default the caller), as two week buckets plus totals.
func (h *TimesheetHandler) PeriodView(w http.ResponseWriter, r *http.Request) {
	target, ok := h.resolveTarget(w, r, r.URL.Query().Get("employee_id"))
	if !ok {
		return
	}

	date := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := payperiod.ParseDate(dateStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		date = parsed
	}

	view, err := h.service.PeriodView(target.ID, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type dayRequest struct {
	EmployeeID uint   `json:"employee_id"`
	Date       string `json:"date" validate:"required"`
	TimeIn     string `json:"time_in"`  // HH:MM, empty clears
	TimeOut    string `json:"time_out"` // HH:MM, empty clears
}

func (h *TimesheetHandler) SetTimes(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target, date, ok := h.resolveDayRequest(w, r, req.EmployeeID, req.Date)
	if !ok {
		return
	}

	timeIn, ok := h.parseClock(w, date, req.TimeIn)
	if !ok {
		return
	}
	timeOut, ok := h.parseClock(w, date, req.TimeOut)
	if !ok {
		return
	}

	entry, err := h.service.SetTimes(target.ID, date, timeIn, timeOut)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *TimesheetHandler) ClearTimes(w http.ResponseWriter, r *http.Request) {
	h.clearOp(w, r, h.service.ClearTimes)
}

type ptoRequest struct {
	EmployeeID uint    `json:"employee_id"`
	Date       string  `json:"date" validate:"required"`
	Hours      float64 `json:"hours" validate:"gte=0,lte=24"`
	Notes      string  `json:"notes" validate:"max=500"`
}

func (h *TimesheetHandler) SetPTO(w http.ResponseWriter, r *http.Request) {
	var req ptoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target, date, ok := h.resolveDayRequest(w, r, req.EmployeeID, req.Date)
	if !ok {
		return
	}

	entry, err := h.service.SetPTO(target.ID, date, req.Hours, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *TimesheetHandler) ClearPTO(w http.ResponseWriter, r *http.Request) {
	h.clearOp(w, r, h.service.ClearPTO)
}

type holidayRequest struct {
	EmployeeID uint    `json:"employee_id"`
	Date       string  `json:"date" validate:"required"`
	Hours      float64 `json:"hours" validate:"gte=0,lte=24"`
	Name       string  `json:"name" validate:"max=200"` // empty auto-fills from the store calendar
}

func (h *TimesheetHandler) SetHoliday(w http.ResponseWriter, r *http.Request) {
	var req holidayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target, date, ok := h.resolveDayRequest(w, r, req.EmployeeID, req.Date)
	if !ok {
		return
	}

	entry, err := h.service.SetHoliday(target.ID, date, req.Hours, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *TimesheetHandler) ClearHoliday(w http.ResponseWriter, r *http.Request) {
	h.clearOp(w, r, h.service.ClearHoliday)
}

type bulkRequest struct {
	EmployeeID uint     `json:"employee_id"`
	Action     string   `json:"action" validate:"required"`
	Dates      []string `json:"dates" validate:"required,min=1,dive,required"`
	TimeIn     string   `json:"time_in"`
	TimeOut    string   `json:"time_out"`
	PtoHours   float64  `json:"pto_hours" validate:"gte=0,lte=24"`
	PtoNotes   string   `json:"pto_notes" validate:"max=500"`
}

// Bulk applies one action to many dates sequentially. The response only
// carries the aggregate N-of-M outcome; dates that failed are logged
// server-side and stay unmodified.
func (h *TimesheetHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target, ok := h.resolveTargetID(w, r, req.EmployeeID)
	if !ok {
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, err := payperiod.ParseDate(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		dates = append(dates, d)
	}

	result, err := h.service.BulkApply(target.ID, timesheet.BulkRequest{
		Action:   timesheet.BulkAction(req.Action),
		Dates:    dates,
		TimeIn:   req.TimeIn,
		TimeOut:  req.TimeOut,
		PtoHours: req.PtoHours,
		PtoNotes: req.PtoNotes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ClockIn and ClockOut act on the caller's own timesheet with the server
// clock; editing another employee's punches goes through SetTimes.
func (h *TimesheetHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entry, err := h.service.ClockIn(user.ID, time.Now().UTC())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *TimesheetHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entry, err := h.service.ClockOut(user.ID, time.Now().UTC())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// ExportCSV writes every timesheet row of the pay period enclosing ?date=
// for the stores the caller may see, one row per employee-day.
func (h *TimesheetHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanExport() {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Export requires manager or admin access")
		return
	}

	date := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := payperiod.ParseDate(dateStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		date = parsed
	}
	period := payperiod.Resolve(date)

	db := database.GetDB()
	query := db.Preload("User").Preload("User.Store").Preload("User.Department").
		Joins("JOIN users ON users.id = timesheet_entries.user_id").
		Where("timesheet_entries.date >= ? AND timesheet_entries.date <= ?", period.Start, period.End)

	if storeIDStr := r.URL.Query().Get("store_id"); storeIDStr != "" {
		if sid, err := strconv.ParseUint(storeIDStr, 10, 32); err == nil && sid > 0 {
			if !user.IsAdmin() && !containsID(h.managedStoreIDs(user.ID), uint(sid)) {
				respondError(w, http.StatusForbidden, ErrCodeForbidden, "Store not assigned to you")
				return
			}
			query = query.Where("users.store_id = ?", uint(sid))
		}
	} else if !user.IsAdmin() {
		storeIDs := h.managedStoreIDs(user.ID)
		if len(storeIDs) == 0 {
			respondError(w, http.StatusForbidden, ErrCodeForbidden, "No stores assigned to you")
			return
		}
		query = query.Where("users.store_id IN ?", storeIDs)
	}

	var entries []models.TimesheetEntry
	query.Order("timesheet_entries.date asc, timesheet_entries.user_id asc").Find(&entries)

	filename := fmt.Sprintf("timesheet_%s_%s.csv",
		period.Start.Format(payperiod.DateLayout), period.End.Format(payperiod.DateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Employee", "Store", "Department", "Date", "Time In", "Time Out",
		"Regular", "Overtime", "PTO", "Holiday", "Total", "PTO Notes", "Holiday Name"})

	for _, entry := range entries {
		storeName := ""
		departmentName := ""
		if entry.User.Store != nil {
			storeName = entry.User.Store.Name
		}
		if entry.User.Department != nil {
			departmentName = entry.User.Department.Name
		}
		writer.Write([]string{
			entry.User.DisplayName(),
			storeName,
			departmentName,
			entry.Date.Format(payperiod.DateLayout),
			formatClock(entry.TimeIn),
			formatClock(entry.TimeOut),
			fmt.Sprintf("%.2f", entry.RegularHours),
			fmt.Sprintf("%.2f", entry.OvertimeHours),
			fmt.Sprintf("%.2f", entry.PtoHours),
			fmt.Sprintf("%.2f", entry.HolidayHours),
			fmt.Sprintf("%.2f", entry.TotalHours()),
			entry.PtoNotes,
			entry.HolidayName,
		})
	}
}

// clearOp is the shared shape of the four clear endpoints.
func (h *TimesheetHandler) clearOp(w http.ResponseWriter, r *http.Request, op func(uint, time.Time) (*models.TimesheetEntry, error)) {
	var req dayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target, date, ok := h.resolveDayRequest(w, r, req.EmployeeID, req.Date)
	if !ok {
		return
	}

	entry, err := op(target.ID, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *TimesheetHandler) resolveDayRequest(w http.ResponseWriter, r *http.Request, employeeID uint, dateStr string) (*models.User, time.Time, bool) {
	target, ok := h.resolveTargetID(w, r, employeeID)
	if !ok {
		return nil, time.Time{}, false
	}
	date, err := payperiod.ParseDate(dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, time.Time{}, false
	}
	return target, date, true
}

// resolveTarget maps an optional employee_id to the user whose timesheet
// the caller may touch: themselves, anyone for admins, or employees of a
// managed store for managers.
func (h *TimesheetHandler) resolveTarget(w http.ResponseWriter, r *http.Request, employeeIDStr string) (*models.User, bool) {
	var employeeID uint
	if employeeIDStr != "" {
		parsed, err := strconv.ParseUint(employeeIDStr, 10, 32)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid employee ID")
			return nil, false
		}
		employeeID = uint(parsed)
	}
	return h.resolveTargetID(w, r, employeeID)
}

func (h *TimesheetHandler) resolveTargetID(w http.ResponseWriter, r *http.Request, employeeID uint) (*models.User, bool) {
	user := middleware.GetUserFromContext(r.Context())
	if employeeID == 0 || employeeID == user.ID {
		return user, true
	}

	var target models.User
	if err := database.GetDB().First(&target, employeeID).Error; err != nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Employee not found")
		return nil, false
	}

	if user.CanManageTimesheetFor(target.ID) {
		return &target, true
	}
	if user.IsManager() && target.StoreID != nil && containsID(h.managedStoreIDs(user.ID), *target.StoreID) {
		return &target, true
	}

	respondError(w, http.StatusForbidden, ErrCodeForbidden, "Not authorized for this employee's timesheet")
	return nil, false
}

// managedStoreIDs returns the stores a manager is assigned to.
func (h *TimesheetHandler) managedStoreIDs(userID uint) []uint {
	var assignments []models.StoreManager
	database.GetDB().Where("user_id = ?", userID).Find(&assignments)

	storeIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		storeIDs = append(storeIDs, a.StoreID)
	}
	return storeIDs
}

func (h *TimesheetHandler) parseClock(w http.ResponseWriter, date time.Time, clock string) (*time.Time, bool) {
	if clock == "" {
		return nil, true
	}
	t, err := timesheet.CombineClock(date, clock)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, false
	}
	return &t, true
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
