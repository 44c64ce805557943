package models

import "time"

// AdminInvite is a single-use invitation that grants a role at registration.
type AdminInvite struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"index;not null"`
	Code      string `gorm:"uniqueIndex;not null"`
	Role      string `gorm:"not null;default:'admin'"`
	InvitedBy string // Profile ID of the inviting admin

	ExpiresAt  time.Time
	AcceptedAt *time.Time

	CreatedAt time.Time
}

// IsExpired returns true if the invite can no longer be redeemed.
func (i *AdminInvite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsAccepted returns true if the invite has already been redeemed.
func (i *AdminInvite) IsAccepted() bool {
	return i.AcceptedAt != nil
}
