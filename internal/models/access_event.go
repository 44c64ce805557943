package models

import "time"

// Access decision status values recorded per admin navigation.
const (
	AccessStatusGranted = "granted"
	AccessStatusDenied  = "denied"
)

// AccessEvent is one persisted guard decision. AppRole and Email are empty
// when the resolution never reached a profile.
type AccessEvent struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Status    string `gorm:"index;not null"` // "granted" or "denied"
	Reason    string `gorm:"index;not null"`
	AppRole   string
	Email     string
	Path      string
	Timestamp time.Time `gorm:"index"`

	CreatedAt time.Time
}
