// Package store holds the participant record store contract and its two
// implementations (Postgres via GORM, and in-memory).
package store

import (
	"context"
	"errors"

	"github.com/DeusGroup/SalesLeaderboard/models"
)

// ErrNotFound signals an unknown participant id. Callers surface it as 404.
var ErrNotFound = errors.New("participant not found")

// ProfileFields is a partial profile update. Nil pointers keep the current
// value; metrics, goals, score, ledger and history are never touched here.
type ProfileFields struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	AvatarURL  *string `json:"avatarUrl"`
}

// ParticipantStore is the injected storage capability the scoring engine
// runs against. Save must persist metrics, goals, score, ledger and history
// as one atomic write so a record can never be read half-updated.
type ParticipantStore interface {
	Get(ctx context.Context, id uint) (*models.Participant, error)
	ListByScore(ctx context.Context) ([]models.Participant, error)
	Create(ctx context.Context, p *models.Participant) error
	UpdateProfile(ctx context.Context, id uint, fields ProfileFields) error
	Save(ctx context.Context, p *models.Participant) error
	Delete(ctx context.Context, id uint) error
}
