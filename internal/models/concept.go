package models

import "time"

// Concept is one curriculum entry. Position defines the display order on the
// public browsing surface; only published concepts are visible there.
type Concept struct {
	ID        string `gorm:"primaryKey"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Title     string `gorm:"not null"`
	Summary   string
	Body      string
	Position  int  `gorm:"index"`
	Published bool `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConceptVersion is an immutable snapshot taken on every concept edit.
type ConceptVersion struct {
	ID        string `gorm:"primaryKey"`
	ConceptID string `gorm:"index;not null"`
	Revision  int    `gorm:"not null"`
	Title     string
	Summary   string
	Body      string
	EditedBy  string // Profile ID of the editing admin

	CreatedAt time.Time
}
