package store

import (
	"context"
	"sort"
	"sync"

	"github.com/DeusGroup/SalesLeaderboard/models"
)

// MemStore keeps participants in an in-process map. It backs the tests and
// lets the app run without a database, the way the first prototype did.
type MemStore struct {
	mu           sync.Mutex
	participants map[uint]*models.Participant
	nextID       uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		participants: make(map[uint]*models.Participant),
		nextID:       1,
	}
}

func (s *MemStore) Get(ctx context.Context, id uint) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (s *MemStore) ListByScore(ctx context.Context) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		result = append(result, *clone(p))
	}
	// Ties break by ascending id so ordering stays deterministic.
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemStore) Create(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	for i := range p.Deals {
		p.Deals[i].ParticipantID = p.ID
	}
	for i := range p.History {
		p.History[i].ParticipantID = p.ID
	}
	s.participants[p.ID] = clone(p)
	return nil
}

func (s *MemStore) UpdateProfile(ctx context.Context, id uint, fields ProfileFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[id]
	if !ok {
		return ErrNotFound
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Role != nil {
		p.Role = *fields.Role
	}
	if fields.Department != nil {
		p.Department = *fields.Department
	}
	if fields.AvatarURL != nil {
		p.AvatarURL = *fields.AvatarURL
	}
	return nil
}

func (s *MemStore) Save(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[p.ID]; !ok {
		return ErrNotFound
	}
	for i := range p.Deals {
		p.Deals[i].ParticipantID = p.ID
	}
	for i := range p.History {
		p.History[i].ParticipantID = p.ID
	}
	s.participants[p.ID] = clone(p)
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.participants, id)
	return nil
}

// clone deep-copies a participant so callers never alias stored state.
func clone(p *models.Participant) *models.Participant {
	c := *p
	c.Deals = make([]models.Deal, len(p.Deals))
	copy(c.Deals, p.Deals)
	c.History = make([]models.ScoreHistory, len(p.History))
	copy(c.History, p.History)
	return &c
}
