package models

import (
	"time"

	"gorm.io/gorm"
)

// StoreManager records which stores a MANAGER-role user may view and edit
// timesheets for. A manager with no assignments sees nothing beyond their
// own timesheet.
type StoreManager struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StoreID   uint           `gorm:"not null;index" json:"store_id"`
	Store     *Store         `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}
