package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account on the marketplace.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	Address      string    `json:"address,omitempty" gorm:"size:500"`
	Phone        string    `json:"phone,omitempty" gorm:"size:50"`

	// Lockout state: the account is locked iff LockoutEnabled is set and
	// LockoutEnd is still in the future.
	LockoutEnabled bool       `json:"lockout_enabled" gorm:"default:false"`
	LockoutEnd     *time.Time `json:"lockout_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Roles    []Role    `json:"roles,omitempty" gorm:"many2many:user_roles"`
	Products []Product `json:"products,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsLockedOut reports whether the account is currently locked.
func (u *User) IsLockedOut() bool {
	return u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(time.Now())
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of all roles held by the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
