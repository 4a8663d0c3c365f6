package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names used throughout the system. Only these two exist by convention.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Role is a named permission group. Static reference data seeded at startup.
type Role struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:50;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
