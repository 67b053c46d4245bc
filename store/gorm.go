package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeusGroup/SalesLeaderboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists participants in Postgres through GORM.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.Participant, error) {
	var p models.Participant
	err := s.DB.WithContext(ctx).
		Preload("Deals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load participant %d: %w", id, err)
	}
	return &p, nil
}

func (s *GormStore) ListByScore(ctx context.Context) ([]models.Participant, error) {
	var participants []models.Participant
	err := s.DB.WithContext(ctx).
		Preload("Deals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Order("score DESC, id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (s *GormStore) Create(ctx context.Context, p *models.Participant) error {
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, id uint, fields ProfileFields) error {
	updates := map[string]interface{}{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Role != nil {
		updates["role"] = *fields.Role
	}
	if fields.Department != nil {
		updates["department"] = *fields.Department
	}
	if fields.AvatarURL != nil {
		updates["avatar_url"] = *fields.AvatarURL
	}
	if len(updates) == 0 {
		_, err := s.Get(ctx, id)
		return err
	}

	res := s.DB.WithContext(ctx).Model(&models.Participant{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile for participant %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Save writes the whole aggregate in one transaction: the metric/goal/score
// columns, the deal ledger (upserting titles, deleting removed deals) and any
// new history entries. Existing history rows are never rewritten.
func (s *GormStore) Save(ctx context.Context, p *models.Participant) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Participant{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"board_revenue":      p.BoardRevenue,
			"msp_revenue":        p.MSPRevenue,
			"voice_seats":        p.VoiceSeats,
			"total_deals":        p.TotalDeals,
			"board_revenue_goal": p.BoardRevenueGoal,
			"msp_revenue_goal":   p.MSPRevenueGoal,
			"voice_seats_goal":   p.VoiceSeatsGoal,
			"total_deals_goal":   p.TotalDealsGoal,
			"score":              p.Score,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to save participant %d: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		// Drop ledger rows that are no longer present on the aggregate.
		keep := make([]string, 0, len(p.Deals))
		for i := range p.Deals {
			p.Deals[i].ParticipantID = p.ID
			keep = append(keep, p.Deals[i].ID)
		}
		q := tx.Where("participant_id = ?", p.ID)
		if len(keep) > 0 {
			q = q.Where("id NOT IN ?", keep)
		}
		if err := q.Delete(&models.Deal{}).Error; err != nil {
			return fmt.Errorf("failed to prune deal ledger for participant %d: %w", p.ID, err)
		}

		if len(p.Deals) > 0 {
			// Deals are immutable apart from bulk title edits, so conflicts
			// only ever need the title refreshed.
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"title"}),
			}).Create(&p.Deals).Error
			if err != nil {
				return fmt.Errorf("failed to save deal ledger for participant %d: %w", p.ID, err)
			}
		}

		if len(p.History) > 0 {
			for i := range p.History {
				p.History[i].ParticipantID = p.ID
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p.History).Error
			if err != nil {
				return fmt.Errorf("failed to append score history for participant %d: %w", p.ID, err)
			}
		}

		return nil
	})
}

// Delete removes the participant with its ledger, history and snapshots.
// Deleting an unknown id is a no-op.
func (s *GormStore) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", id).Delete(&models.Deal{}).Error; err != nil {
			return fmt.Errorf("failed to delete deals for participant %d: %w", id, err)
		}
		if err := tx.Where("participant_id = ?", id).Delete(&models.ScoreHistory{}).Error; err != nil {
			return fmt.Errorf("failed to delete history for participant %d: %w", id, err)
		}
		if err := tx.Where("participant_id = ?", id).Delete(&models.LeaderboardSnapshot{}).Error; err != nil {
			return fmt.Errorf("failed to delete snapshots for participant %d: %w", id, err)
		}
		if err := tx.Delete(&models.Participant{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete participant %d: %w", id, err)
		}
		return nil
	})
}
