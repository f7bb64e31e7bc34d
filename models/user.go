package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Username           string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName           string         `gorm:"not null;size:200" json:"full_name"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               Role           `gorm:"not null;size:20" json:"role"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`
	StoreID            *uint          `gorm:"index" json:"store_id"`
	Store              *Store         `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	DepartmentID       *uint          `gorm:"index" json:"department_id"`
	Department         *Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	TimesheetEntries   []TimesheetEntry `gorm:"foreignKey:UserID" json:"timesheet_entries,omitempty"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

// CanManageTimesheetFor reports whether the user may edit another user's
// timesheet without a store-level check. Managers additionally need a
// store assignment, which the handler resolves against StoreManager rows.
func (u *User) CanManageTimesheetFor(userID uint) bool {
	if u.IsAdmin() {
		return true
	}
	return u.ID == userID
}

func (u *User) CanViewAllTimesheets() bool {
	return u.IsAdmin()
}

func (u *User) CanExport() bool {
	return u.IsAdmin() || u.IsManager()
}

func (u *User) CanCreateInvites() bool {
	return u.IsAdmin()
}
