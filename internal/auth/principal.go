package auth

import (
	"github.com/google/uuid"

	"secondhand/internal/model"
)

// Principal is the authenticated caller's identity, passed explicitly into
// every service operation that needs authorization. Services never read
// identity from ambient state.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

// HasRole reports whether the principal holds the named role.
func (p Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds the Admin role.
func (p Principal) IsAdmin() bool {
	return p.HasRole(model.RoleAdmin)
}
