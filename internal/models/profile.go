package models

import (
	"time"
)

// Application role values stored in Profile.AppRole. The admin surface
// recognizes exactly one role; the comparison is case-sensitive.
const (
	AppRoleAdmin = "admin"
)

// Profile is the per-user row backing both authentication and authorization.
// AppRole is empty for users that have never been granted a role.
type Profile struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string
	DisplayName  string
	AppRole      string `gorm:"index"` // "admin" or empty

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin returns true if the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p.AppRole == AppRoleAdmin
}
