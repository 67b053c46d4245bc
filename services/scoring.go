package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DeusGroup/SalesLeaderboard/models"
	"github.com/DeusGroup/SalesLeaderboard/store"

	"github.com/google/uuid"
)

// Score weights. MSP revenue counts double, each voice seat is worth 10
// points and every closed deal adds a flat 50 on top of its revenue.
const (
	BoardRevenueWeight = 1
	MSPRevenueWeight   = 2
	VoiceSeatWeight    = 10
	DealWeight         = 50
)

var (
	// ErrValidation rejects malformed input before any mutation happens.
	ErrValidation = errors.New("invalid input")
	// ErrDealNotFound signals a deal id missing from the participant's ledger.
	ErrDealNotFound = errors.New("deal not found")
)

// ComputeScore derives the ranking score from the four raw metrics.
func ComputeScore(boardRevenue, mspRevenue, voiceSeats, totalDeals int64) int64 {
	return boardRevenue*BoardRevenueWeight +
		mspRevenue*MSPRevenueWeight +
		voiceSeats*VoiceSeatWeight +
		totalDeals*DealWeight
}

// Progress returns goal completion as a percentage clamped to [0, 100].
// A zero goal always reads as 0 so there is no division by zero.
func Progress(current, goal int64) int {
	if goal <= 0 {
		return 0
	}
	pct := current * 100 / goal
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// MetricsPatch is a partial metrics update. Nil fields keep their current
// value (PATCH semantics, never an implicit zero).
type MetricsPatch struct {
	BoardRevenue *int64 `json:"boardRevenue"`
	MSPRevenue   *int64 `json:"mspRevenue"`
	VoiceSeats   *int64 `json:"voiceSeats"`
	TotalDeals   *int64 `json:"totalDeals"`
}

// GoalsPatch is a partial goals update, same semantics as MetricsPatch.
type GoalsPatch struct {
	BoardRevenueGoal *int64 `json:"boardRevenueGoal"`
	MSPRevenueGoal   *int64 `json:"mspRevenueGoal"`
	VoiceSeatsGoal   *int64 `json:"voiceSeatsGoal"`
	TotalDealsGoal   *int64 `json:"totalDealsGoal"`
}

// DealInput carries the caller-supplied deal fields. The deal id is always
// generated server-side.
type DealInput struct {
	Title  string          `json:"title"`
	Amount float64         `json:"amount"`
	Type   models.DealType `json:"type"`
	Date   time.Time       `json:"date"`
}

// ScoringService is the single source of truth for turning raw metrics into
// a score and for keeping the deal ledger consistent with the metric totals.
type ScoringService struct {
	Store store.ParticipantStore
}

func NewScoringService(s store.ParticipantStore) *ScoringService {
	return &ScoringService{Store: s}
}

// UpdateMetrics merges a partial metrics/goals update into the current
// record, recomputes the score, appends one history entry and persists the
// whole record atomically.
func (s *ScoringService) UpdateMetrics(ctx context.Context, id uint, metrics MetricsPatch, goals GoalsPatch) (*models.Participant, error) {
	if err := validatePatches(metrics, goals); err != nil {
		return nil, err
	}

	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before := snapshotMetrics(p)
	applyMetricsPatch(p, metrics)
	applyGoalsPatch(p, goals)

	return s.persist(ctx, p, describeChanges(before, p, ""))
}

// AddDeal appends a new deal to the ledger, folds its amount into the
// metrics and recomputes the score. The new deal id is generated here.
func (s *ScoringService) AddDeal(ctx context.Context, id uint, input DealInput) (*models.Participant, error) {
	if !models.ValidDealType(input.Type) {
		return nil, fmt.Errorf("%w: deal type must be one of BOARD, MSP, VOICE", ErrValidation)
	}
	if input.Amount < 0 {
		return nil, fmt.Errorf("%w: deal amount must not be negative", ErrValidation)
	}

	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}
	deal := models.Deal{
		ID:            uuid.NewString(),
		ParticipantID: p.ID,
		Title:         input.Title,
		Amount:        input.Amount,
		Type:          input.Type,
		Date:          date,
	}

	before := snapshotMetrics(p)
	applyDeal(p, deal, +1)
	p.Deals = append(p.Deals, deal)

	return s.persist(ctx, p, describeChanges(before, p, fmt.Sprintf("added deal %q", deal.Title)))
}

// RemoveDeal reverses exactly the metric effect the deal applied when it
// was added, using the stored type and amount, then drops it from the ledger.
func (s *ScoringService) RemoveDeal(ctx context.Context, id uint, dealID string) (*models.Participant, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range p.Deals {
		if p.Deals[i].ID == dealID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrDealNotFound, dealID)
	}

	removed := p.Deals[idx]
	before := snapshotMetrics(p)
	applyDeal(p, removed, -1)
	p.Deals = append(p.Deals[:idx], p.Deals[idx+1:]...)

	return s.persist(ctx, p, describeChanges(before, p, fmt.Sprintf("removed deal %q", removed.Title)))
}

// RemoveManyDeals reverses every matching deal in one pass and appends a
// single history entry for the whole batch.
func (s *ScoringService) RemoveManyDeals(ctx context.Context, id uint, dealIDs []string) (*models.Participant, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(dealIDs))
	for _, dealID := range dealIDs {
		requested[dealID] = true
	}

	before := snapshotMetrics(p)
	kept := p.Deals[:0]
	removed := 0
	for _, deal := range p.Deals {
		if requested[deal.ID] {
			applyDeal(p, deal, -1)
			removed++
			continue
		}
		kept = append(kept, deal)
	}
	if removed == 0 {
		return nil, fmt.Errorf("%w: none of the requested deals are in the ledger", ErrDealNotFound)
	}
	p.Deals = kept

	return s.persist(ctx, p, describeChanges(before, p, fmt.Sprintf("removed %d deals", removed)))
}

// UpdateManyDeals rewrites the title of every matching ledger entry. It is a
// pure ledger edit: metrics, score and history stay untouched.
func (s *ScoringService) UpdateManyDeals(ctx context.Context, id uint, dealIDs []string, title string) (*models.Participant, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(dealIDs))
	for _, dealID := range dealIDs {
		requested[dealID] = true
	}
	for i := range p.Deals {
		if requested[p.Deals[i].ID] {
			p.Deals[i].Title = title
		}
	}

	if err := s.Store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// persist recomputes the score, appends the history entry and writes the
// aggregate in a single store write.
func (s *ScoringService) persist(ctx context.Context, p *models.Participant, description string) (*models.Participant, error) {
	p.Score = ComputeScore(p.BoardRevenue, p.MSPRevenue, p.VoiceSeats, p.TotalDeals)
	p.History = append(p.History, models.ScoreHistory{
		ID:            uuid.NewString(),
		ParticipantID: p.ID,
		Score:         p.Score,
		Description:   description,
		CreatedAt:     time.Now(),
	})
	if err := s.Store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// applyDeal folds a deal's effect into the metric totals. sign is +1 when
// adding and -1 when removing, so removal is an exact inverse. Voice seat
// amounts truncate toward zero; seats are integral.
func applyDeal(p *models.Participant, deal models.Deal, sign int64) {
	p.TotalDeals += sign
	switch deal.Type {
	case models.DealTypeBoard:
		p.BoardRevenue += sign * int64(deal.Amount)
	case models.DealTypeMSP:
		p.MSPRevenue += sign * int64(deal.Amount)
	case models.DealTypeVoice:
		p.VoiceSeats += sign * int64(deal.Amount)
	}
}

func validatePatches(metrics MetricsPatch, goals GoalsPatch) error {
	fields := map[string]*int64{
		"boardRevenue":     metrics.BoardRevenue,
		"mspRevenue":       metrics.MSPRevenue,
		"voiceSeats":       metrics.VoiceSeats,
		"totalDeals":       metrics.TotalDeals,
		"boardRevenueGoal": goals.BoardRevenueGoal,
		"mspRevenueGoal":   goals.MSPRevenueGoal,
		"voiceSeatsGoal":   goals.VoiceSeatsGoal,
		"totalDealsGoal":   goals.TotalDealsGoal,
	}
	for name, v := range fields {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, name)
		}
	}
	return nil
}

func applyMetricsPatch(p *models.Participant, patch MetricsPatch) {
	if patch.BoardRevenue != nil {
		p.BoardRevenue = *patch.BoardRevenue
	}
	if patch.MSPRevenue != nil {
		p.MSPRevenue = *patch.MSPRevenue
	}
	if patch.VoiceSeats != nil {
		p.VoiceSeats = *patch.VoiceSeats
	}
	if patch.TotalDeals != nil {
		p.TotalDeals = *patch.TotalDeals
	}
}

func applyGoalsPatch(p *models.Participant, patch GoalsPatch) {
	if patch.BoardRevenueGoal != nil {
		p.BoardRevenueGoal = *patch.BoardRevenueGoal
	}
	if patch.MSPRevenueGoal != nil {
		p.MSPRevenueGoal = *patch.MSPRevenueGoal
	}
	if patch.VoiceSeatsGoal != nil {
		p.VoiceSeatsGoal = *patch.VoiceSeatsGoal
	}
	if patch.TotalDealsGoal != nil {
		p.TotalDealsGoal = *patch.TotalDealsGoal
	}
}

type metricsSnapshot struct {
	boardRevenue int64
	mspRevenue   int64
	voiceSeats   int64
	totalDeals   int64
}

func snapshotMetrics(p *models.Participant) metricsSnapshot {
	return metricsSnapshot{
		boardRevenue: p.BoardRevenue,
		mspRevenue:   p.MSPRevenue,
		voiceSeats:   p.VoiceSeats,
		totalDeals:   p.TotalDeals,
	}
}

// describeChanges renders which metric fields changed and by how much, e.g.
// `added deal "Acme": boardRevenue +5000, totalDeals +1`.
func describeChanges(before metricsSnapshot, p *models.Participant, prefix string) string {
	var parts []string
	appendDelta := func(name string, old, new int64) {
		if old == new {
			return
		}
		parts = append(parts, fmt.Sprintf("%s %+d", name, new-old))
	}
	appendDelta("boardRevenue", before.boardRevenue, p.BoardRevenue)
	appendDelta("mspRevenue", before.mspRevenue, p.MSPRevenue)
	appendDelta("voiceSeats", before.voiceSeats, p.VoiceSeats)
	appendDelta("totalDeals", before.totalDeals, p.TotalDeals)

	changes := "no metric changes"
	if len(parts) > 0 {
		changes = strings.Join(parts, ", ")
	}
	if prefix == "" {
		return changes
	}
	return prefix + ": " + changes
}
