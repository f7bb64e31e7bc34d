package models

import (
	"time"
)

// Department is a staffing area within a store (sales counter, gunsmithing,
// range desk). Used for grouping on exports, not for access control.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Users     []User    `gorm:"foreignKey:DepartmentID" json:"users,omitempty"`
}
