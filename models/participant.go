package models

import (
	"time"
)

// DealType is the closed set of deal categories. The type decides which
// metric a deal's amount is folded into.
type DealType string

const (
	DealTypeBoard DealType = "BOARD"
	DealTypeMSP   DealType = "MSP"
	DealTypeVoice DealType = "VOICE"
)

// ValidDealType reports whether t is one of BOARD, MSP, VOICE.
func ValidDealType(t DealType) bool {
	switch t {
	case DealTypeBoard, DealTypeMSP, DealTypeVoice:
		return true
	}
	return false
}

// Participant is the central entity: one tracked salesperson with raw
// metrics, goals, the derived score, a deal ledger and a score history.
type Participant struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"not null"`
	Role       string `json:"role"`
	Department string `json:"department"`
	AvatarURL  string `json:"avatarUrl"`

	// Raw metrics feeding the score formula. Never negative.
	BoardRevenue int64 `json:"boardRevenue" gorm:"default:0"`
	MSPRevenue   int64 `json:"mspRevenue" gorm:"column:msp_revenue;default:0"`
	VoiceSeats   int64 `json:"voiceSeats" gorm:"default:0"`
	TotalDeals   int64 `json:"totalDeals" gorm:"default:0"`

	// Goals only drive progress display, never the score.
	BoardRevenueGoal int64 `json:"boardRevenueGoal" gorm:"default:0"`
	MSPRevenueGoal   int64 `json:"mspRevenueGoal" gorm:"column:msp_revenue_goal;default:0"`
	VoiceSeatsGoal   int64 `json:"voiceSeatsGoal" gorm:"default:0"`
	TotalDealsGoal   int64 `json:"totalDealsGoal" gorm:"default:0"`

	// Derived — always recomputed from the metrics, never set by callers.
	Score int64 `json:"score" gorm:"default:0;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Relationships
	Deals   []Deal         `json:"deals" gorm:"foreignKey:ParticipantID"`
	History []ScoreHistory `json:"history" gorm:"foreignKey:ParticipantID"`
}

// Deal is an immutable economic event attributed to one participant.
// Only the title may change after creation (bulk title edit).
type Deal struct {
	ID            string    `json:"dealId" gorm:"primaryKey"`
	ParticipantID uint      `json:"participantId" gorm:"index;not null"`
	Title         string    `json:"title"`
	Amount        float64   `json:"amount"`
	Type          DealType  `json:"type" gorm:"type:varchar(8);not null"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// ScoreHistory is an append-only audit entry: the score after a
// metrics-affecting mutation plus a human-readable summary of it.
type ScoreHistory struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	ParticipantID uint      `json:"participantId" gorm:"index;not null"`
	Score         int64     `json:"score" gorm:"not null;default:0"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"timestamp" gorm:"autoCreateTime"`
}
