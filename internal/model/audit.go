package model

import "time"

// Audit carries the bookkeeping fields shared by user-editable entities.
type Audit struct {
	CreatedAt    time.Time
	ModifiedAt   time.Time `gorm:"autoUpdateTime"`
	CreatedByID  *uint     `gorm:"index"`
	ModifiedByID *uint
}
