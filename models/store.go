package models

import (
	"time"
)

// Store is a physical retail location. Employees and managers are attached
// to exactly one store; manager visibility across stores goes through
// StoreManager assignments.
type Store struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Users     []User    `gorm:"foreignKey:StoreID" json:"users,omitempty"`
}
