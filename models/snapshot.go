package models

import (
	"time"

	"gorm.io/gorm"
)

// LeaderboardSnapshot captures one participant's score and rank at a point
// in time. Rows are written by the periodic snapshot job so the UI can show
// rank movement over time.
type LeaderboardSnapshot struct {
	gorm.Model
	ParticipantID uint      `gorm:"index;not null"`
	Score         int64     `gorm:"not null;default:0"`
	Rank          int       `gorm:"not null"`
	CapturedAt    time.Time `gorm:"index;not null"`
}

func (LeaderboardSnapshot) TableName() string {
	return "leaderboard_snapshots"
}
