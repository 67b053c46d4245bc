package services

import (
	"context"
	"testing"
	"time"

	"github.com/DeusGroup/SalesLeaderboard/models"
	"github.com/DeusGroup/SalesLeaderboard/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*ScoringService, *ParticipantService) {
	t.Helper()
	memStore := store.NewMemStore()
	return NewScoringService(memStore), NewParticipantService(memStore)
}

func createParticipant(t *testing.T, participants *ParticipantService, input CreateParticipantInput) *models.Participant {
	t.Helper()
	p, err := participants.Create(context.Background(), input)
	require.NoError(t, err)
	return p
}

func int64Ptr(v int64) *int64 { return &v }

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name         string
		boardRevenue int64
		mspRevenue   int64
		voiceSeats   int64
		totalDeals   int64
		want         int64
	}{
		{"all zero", 0, 0, 0, 0, 0},
		{"board revenue is 1:1", 1000, 0, 0, 0, 1000},
		{"msp revenue counts double", 0, 500, 0, 0, 1000},
		{"voice seats are 10 points each", 0, 0, 3, 0, 30},
		{"deals are 50 points each", 0, 0, 0, 2, 100},
		{"combined", 1000, 500, 3, 2, 2130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScore(tt.boardRevenue, tt.mspRevenue, tt.voiceSeats, tt.totalDeals)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		goal    int64
		want    int
	}{
		{"zero goal reads as zero", 150, 0, 0},
		{"halfway", 50, 100, 50},
		{"exactly met", 100, 100, 100},
		{"overshoot clamps to 100", 150, 100, 100},
		{"zero current", 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.current, tt.goal))
		})
	}
}

func TestUpdateMetricsPatchSemantics(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{
		Name: "Alice",
		Metrics: MetricsPatch{
			BoardRevenue: int64Ptr(1000),
			MSPRevenue:   int64Ptr(500),
			TotalDeals:   int64Ptr(2),
		},
	})

	// Patch only voiceSeats; every other metric must survive untouched.
	updated, err := engine.UpdateMetrics(ctx, p.ID, MetricsPatch{VoiceSeats: int64Ptr(3)}, GoalsPatch{})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), updated.BoardRevenue)
	assert.Equal(t, int64(500), updated.MSPRevenue)
	assert.Equal(t, int64(3), updated.VoiceSeats)
	assert.Equal(t, int64(2), updated.TotalDeals)
	assert.Equal(t, int64(2130), updated.Score)
}

func TestUpdateMetricsAppendsHistory(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

	updated, err := engine.UpdateMetrics(ctx, p.ID, MetricsPatch{BoardRevenue: int64Ptr(5000)}, GoalsPatch{})
	require.NoError(t, err)

	require.Len(t, updated.History, 1)
	assert.Equal(t, int64(5000), updated.History[0].Score)
	assert.Contains(t, updated.History[0].Description, "boardRevenue +5000")
}

func TestUpdateMetricsGoalsDoNotAffectScore(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{
		Name:    "Alice",
		Metrics: MetricsPatch{BoardRevenue: int64Ptr(100)},
	})

	updated, err := engine.UpdateMetrics(ctx, p.ID, MetricsPatch{}, GoalsPatch{
		BoardRevenueGoal: int64Ptr(10000),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), updated.Score)
	assert.Equal(t, int64(10000), updated.BoardRevenueGoal)
}

func TestUpdateMetricsValidation(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

	t.Run("negative metric rejected before mutation", func(t *testing.T) {
		_, err := engine.UpdateMetrics(ctx, p.ID, MetricsPatch{BoardRevenue: int64Ptr(-1)}, GoalsPatch{})
		assert.ErrorIs(t, err, ErrValidation)

		current, err := engine.Store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, current.History, "a rejected update must not leave a history entry")
	})

	t.Run("negative goal rejected", func(t *testing.T) {
		_, err := engine.UpdateMetrics(ctx, p.ID, MetricsPatch{}, GoalsPatch{VoiceSeatsGoal: int64Ptr(-5)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown participant", func(t *testing.T) {
		_, err := engine.UpdateMetrics(ctx, 9999, MetricsPatch{}, GoalsPatch{})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAddDeal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		input            DealInput
		wantBoardRevenue int64
		wantMSPRevenue   int64
		wantVoiceSeats   int64
		wantScore        int64
	}{
		{
			name:             "board deal adds revenue",
			input:            DealInput{Title: "Acme boards", Amount: 5000, Type: models.DealTypeBoard},
			wantBoardRevenue: 5000,
			wantScore:        5050,
		},
		{
			name:           "msp deal adds msp revenue",
			input:          DealInput{Title: "Managed services", Amount: 800, Type: models.DealTypeMSP},
			wantMSPRevenue: 800,
			wantScore:      1650,
		},
		{
			name:           "voice deal truncates fractional seats",
			input:          DealInput{Title: "Voice seats", Amount: 3.7, Type: models.DealTypeVoice},
			wantVoiceSeats: 3,
			wantScore:      80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, participants := newTestEngine(t)
			p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

			updated, err := engine.AddDeal(ctx, p.ID, tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantBoardRevenue, updated.BoardRevenue)
			assert.Equal(t, tt.wantMSPRevenue, updated.MSPRevenue)
			assert.Equal(t, tt.wantVoiceSeats, updated.VoiceSeats)
			assert.Equal(t, int64(1), updated.TotalDeals)
			assert.Equal(t, tt.wantScore, updated.Score)
			require.Len(t, updated.Deals, 1)
			assert.NotEmpty(t, updated.Deals[0].ID, "deal id must be generated server-side")
			assert.Len(t, updated.History, 1)
		})
	}

	t.Run("invalid type rejected", func(t *testing.T) {
		engine, participants := newTestEngine(t)
		p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})
		_, err := engine.AddDeal(ctx, p.ID, DealInput{Amount: 100, Type: "CLOUD"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		engine, participants := newTestEngine(t)
		p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})
		_, err := engine.AddDeal(ctx, p.ID, DealInput{Amount: -100, Type: models.DealTypeBoard})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown participant", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		_, err := engine.AddDeal(ctx, 42, DealInput{Amount: 100, Type: models.DealTypeBoard})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRemoveDealIsExactInverse(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{
		Name:    "Alice",
		Metrics: MetricsPatch{BoardRevenue: int64Ptr(1000), TotalDeals: int64Ptr(1)},
	})
	baseline, err := engine.Store.Get(ctx, p.ID)
	require.NoError(t, err)

	withDeal, err := engine.AddDeal(ctx, p.ID, DealInput{
		Title:  "Voice expansion",
		Amount: 7.9,
		Type:   models.DealTypeVoice,
		Date:   time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, withDeal.Deals, 1)

	restored, err := engine.RemoveDeal(ctx, p.ID, withDeal.Deals[0].ID)
	require.NoError(t, err)

	assert.Equal(t, baseline.BoardRevenue, restored.BoardRevenue)
	assert.Equal(t, baseline.MSPRevenue, restored.MSPRevenue)
	assert.Equal(t, baseline.VoiceSeats, restored.VoiceSeats)
	assert.Equal(t, baseline.TotalDeals, restored.TotalDeals)
	assert.Equal(t, baseline.Score, restored.Score)
	assert.Len(t, restored.Deals, len(baseline.Deals))
}

func TestRemoveDealNotFound(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

	_, err := engine.RemoveDeal(ctx, p.ID, "no-such-deal")
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestRemoveManyDeals(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

	var dealIDs []string
	for _, amount := range []float64{100, 200, 300} {
		updated, err := engine.AddDeal(ctx, p.ID, DealInput{Title: "Board", Amount: amount, Type: models.DealTypeBoard})
		require.NoError(t, err)
		dealIDs = append(dealIDs, updated.Deals[len(updated.Deals)-1].ID)
	}
	current, err := engine.Store.Get(ctx, p.ID)
	require.NoError(t, err)
	historyBefore := len(current.History)

	updated, err := engine.RemoveManyDeals(ctx, p.ID, dealIDs)
	require.NoError(t, err)

	assert.Equal(t, int64(0), updated.BoardRevenue)
	assert.Equal(t, int64(0), updated.TotalDeals)
	assert.Equal(t, int64(0), updated.Score)
	assert.Empty(t, updated.Deals)
	// The whole batch compacts into exactly one history entry.
	assert.Len(t, updated.History, historyBefore+1)
	assert.Contains(t, updated.History[len(updated.History)-1].Description, "removed 3 deals")
}

func TestRemoveManyDealsNoneMatch(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

	_, err := engine.RemoveManyDeals(ctx, p.ID, []string{"ghost-1", "ghost-2"})
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestUpdateManyDealsIsPureLedgerEdit(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

	first, err := engine.AddDeal(ctx, p.ID, DealInput{Title: "Old name", Amount: 100, Type: models.DealTypeBoard})
	require.NoError(t, err)
	second, err := engine.AddDeal(ctx, p.ID, DealInput{Title: "Keep me", Amount: 50, Type: models.DealTypeMSP})
	require.NoError(t, err)

	scoreBefore := second.Score
	historyBefore := len(second.History)

	updated, err := engine.UpdateManyDeals(ctx, p.ID, []string{first.Deals[0].ID}, "New name")
	require.NoError(t, err)

	assert.Equal(t, "New name", updated.Deals[0].Title)
	assert.Equal(t, "Keep me", updated.Deals[1].Title)
	assert.Equal(t, scoreBefore, updated.Score)
	assert.Len(t, updated.History, historyBefore, "bulk title edits never touch history")
}

func TestLedgerMetricConsistency(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)
	p := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})

	var ids []string
	for _, amount := range []float64{10, 20, 30, 40} {
		updated, err := engine.AddDeal(ctx, p.ID, DealInput{Amount: amount, Type: models.DealTypeMSP})
		require.NoError(t, err)
		ids = append(ids, updated.Deals[len(updated.Deals)-1].ID)
		assert.Equal(t, int64(len(updated.Deals)), updated.TotalDeals)
	}

	updated, err := engine.RemoveDeal(ctx, p.ID, ids[1])
	require.NoError(t, err)
	assert.Equal(t, int64(len(updated.Deals)), updated.TotalDeals)

	updated, err = engine.RemoveManyDeals(ctx, p.ID, []string{ids[0], ids[3]})
	require.NoError(t, err)
	assert.Equal(t, int64(len(updated.Deals)), updated.TotalDeals)
}

// Mirrors the full admin workflow: create, two deals, one removal.
func TestScoringWorkflow(t *testing.T) {
	ctx := context.Background()
	engine, participants := newTestEngine(t)

	alice := createParticipant(t, participants, CreateParticipantInput{Name: "Alice"})
	assert.Equal(t, int64(0), alice.Score)

	afterBoard, err := engine.AddDeal(ctx, alice.ID, DealInput{Title: "Board deal", Amount: 5000, Type: models.DealTypeBoard})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), afterBoard.BoardRevenue)
	assert.Equal(t, int64(1), afterBoard.TotalDeals)
	assert.Equal(t, int64(5050), afterBoard.Score)

	afterVoice, err := engine.AddDeal(ctx, alice.ID, DealInput{Title: "Voice deal", Amount: 3.7, Type: models.DealTypeVoice})
	require.NoError(t, err)
	assert.Equal(t, int64(3), afterVoice.VoiceSeats)
	assert.Equal(t, int64(2), afterVoice.TotalDeals)
	assert.Equal(t, int64(5130), afterVoice.Score)

	afterRemove, err := engine.RemoveDeal(ctx, alice.ID, afterBoard.Deals[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), afterRemove.BoardRevenue)
	assert.Equal(t, int64(1), afterRemove.TotalDeals)
	assert.Equal(t, int64(80), afterRemove.Score)
}
