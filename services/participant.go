package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeusGroup/SalesLeaderboard/models"
	"github.com/DeusGroup/SalesLeaderboard/store"
)

// CreateParticipantInput carries the fields accepted at creation. Metrics
// and goals are optional and default to zero.
type CreateParticipantInput struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	AvatarURL  string `json:"avatarUrl"`

	Metrics MetricsPatch `json:"metrics"`
	Goals   GoalsPatch   `json:"goals"`
}

// ParticipantService covers the participant lifecycle outside of scoring:
// creation, profile updates, deletion and the ranked listing.
type ParticipantService struct {
	Store store.ParticipantStore
}

func NewParticipantService(s store.ParticipantStore) *ParticipantService {
	return &ParticipantService{Store: s}
}

// Create validates the input and stores a fresh participant. The score is
// derived from whatever initial metrics were supplied, so an all-zero
// participant starts at score 0.
func (s *ParticipantService) Create(ctx context.Context, input CreateParticipantInput) (*models.Participant, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validatePatches(input.Metrics, input.Goals); err != nil {
		return nil, err
	}

	p := &models.Participant{
		Name:       strings.TrimSpace(input.Name),
		Role:       input.Role,
		Department: input.Department,
		AvatarURL:  input.AvatarURL,
		Deals:      []models.Deal{},
		History:    []models.ScoreHistory{},
	}
	applyMetricsPatch(p, input.Metrics)
	applyGoalsPatch(p, input.Goals)
	p.Score = ComputeScore(p.BoardRevenue, p.MSPRevenue, p.VoiceSeats, p.TotalDeals)

	if err := s.Store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ParticipantService) Get(ctx context.Context, id uint) (*models.Participant, error) {
	return s.Store.Get(ctx, id)
}

// ListByScore returns all participants ordered by score descending, ties
// broken by ascending id.
func (s *ParticipantService) ListByScore(ctx context.Context) ([]models.Participant, error) {
	return s.Store.ListByScore(ctx)
}

// UpdateProfile applies a partial update to the non-scoring profile fields.
func (s *ParticipantService) UpdateProfile(ctx context.Context, id uint, fields store.ProfileFields) error {
	if fields.Name != nil && strings.TrimSpace(*fields.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	return s.Store.UpdateProfile(ctx, id, fields)
}

// Delete removes the participant with its ledger and history. Unknown ids
// are a no-op.
func (s *ParticipantService) Delete(ctx context.Context, id uint) error {
	return s.Store.Delete(ctx, id)
}
