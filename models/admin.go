package models

import (
	"time"
)

// Admin is a credential record gating the mutation endpoints. It plays no
// part in scoring.
type Admin struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
