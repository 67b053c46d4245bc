package services

import (
	"context"
	"log"
	"time"

	"github.com/DeusGroup/SalesLeaderboard/models"
	"github.com/DeusGroup/SalesLeaderboard/store"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// SnapshotInterval is how often leaderboard ranks are captured.
const SnapshotInterval = 24 * time.Hour

// SnapshotService periodically records every participant's score and rank
// so the UI can show movement over time.
type SnapshotService struct {
	DB    *gorm.DB
	Store store.ParticipantStore
}

func NewSnapshotService(db *gorm.DB, s store.ParticipantStore) *SnapshotService {
	return &SnapshotService{DB: db, Store: s}
}

// StartScheduler launches the periodic snapshot job. Without a database
// there is nowhere to write snapshots, so it is skipped.
func (s *SnapshotService) StartScheduler() {
	if s.DB == nil {
		log.Println("[Snapshot] No database configured, snapshot job disabled")
		return
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Snapshot] Failed to create scheduler: %v", err)
		return
	}

	_, err = sched.NewJob(
		gocron.DurationJob(SnapshotInterval),
		gocron.NewTask(func() {
			if err := s.CaptureSnapshot(context.Background()); err != nil {
				log.Printf("[Snapshot] Capture failed: %v", err)
			}
		}),
	)
	if err != nil {
		log.Printf("[Snapshot] Failed to schedule job: %v", err)
		return
	}

	sched.Start()
	log.Printf("[Snapshot] Leaderboard snapshots every %s", SnapshotInterval)
}

// CaptureSnapshot writes one snapshot row per participant, ranked the same
// way the public leaderboard is.
func (s *SnapshotService) CaptureSnapshot(ctx context.Context) error {
	participants, err := s.Store.ListByScore(ctx)
	if err != nil {
		return err
	}
	if len(participants) == 0 {
		return nil
	}

	now := time.Now()
	snapshots := make([]models.LeaderboardSnapshot, len(participants))
	for i, p := range participants {
		snapshots[i] = models.LeaderboardSnapshot{
			ParticipantID: p.ID,
			Score:         p.Score,
			Rank:          i + 1,
			CapturedAt:    now,
		}
	}

	if err := s.DB.WithContext(ctx).Create(&snapshots).Error; err != nil {
		return err
	}
	log.Printf("[Snapshot] Captured %d leaderboard rows", len(snapshots))
	return nil
}
