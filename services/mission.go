package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gig-rewards-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MissionService is the mission engine: it turns domain events into progress
// counter updates and, on completion, reward credits plus a push notification.
type MissionService struct {
	DB         *gorm.DB
	Profiles   *ProfileService
	Dispatcher Dispatcher

	// Reference time zone for period rollover (day/week/month/year boundaries).
	Location *time.Location
}

func NewMissionService(db *gorm.DB, profiles *ProfileService, dispatcher Dispatcher, loc *time.Location) *MissionService {
	if loc == nil {
		loc = time.UTC
	}
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}
	return &MissionService{
		DB:         db,
		Profiles:   profiles,
		Dispatcher: dispatcher,
		Location:   loc,
	}
}

// periodStart returns the start of the current period for a repeating mission
// type, or ok=false for one-time missions. ISO weeks start on Monday.
func periodStart(t time.Time, typ models.MissionType, loc *time.Location) (time.Time, bool) {
	t = t.In(loc)
	switch typ {
	case models.MissionDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	case models.MissionWeekly:
		daysSinceMonday := (int(t.Weekday()) + 6) % 7
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return day.AddDate(0, 0, -daysSinceMonday), true
	case models.MissionMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc), true
	case models.MissionYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, loc), true
	default:
		return time.Time{}, false
	}
}

// RecordEvent applies one occurrence of a mission-tracked domain event.
// Unknown or inactive mission codes are tolerated no-ops so callers never need
// to guard. Returns whether this call completed the mission.
//
// Completed is terminal: repeating missions do not re-arm for a new period
// once completed, and the completion credit is guarded by the flag transition
// so it can never be paid twice.
func (s *MissionService) RecordEvent(externalUserID, code string, increment int64) (bool, error) {
	if increment <= 0 {
		increment = 1
	}

	var completed *models.Mission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var mission models.Mission
		if err := tx.Where("code = ?", code).First(&mission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // catalogs evolve; unknown codes are fine
			}
			return err
		}
		if !mission.Active {
			return nil
		}

		// Get-or-create: the unique (user, mission) index resolves racing
		// creators to one row; losers fall through to the locked fetch.
		seed := models.UserMissionProgress{
			ExternalUserID: externalUserID,
			MissionID:      mission.ID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "mission_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		var progress models.UserMissionProgress
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ? AND mission_id = ?", externalUserID, mission.ID).
			First(&progress).Error; err != nil {
			return err
		}

		if progress.Completed {
			return nil
		}

		now := time.Now().In(s.Location)

		// New period, still pending → the old counter is stale.
		if start, ok := periodStart(now, mission.Type, s.Location); ok &&
			progress.UpdatedAt.In(s.Location).Before(start) {
			progress.CurrentCount = 0
		}

		progress.CurrentCount += increment

		goal := mission.GoalCount
		if goal < 1 {
			goal = 1
		}
		if progress.CurrentCount >= goal {
			progress.Completed = true
			progress.CompletedAt = &now

			if _, err := s.Profiles.ensureProfileTx(tx, externalUserID); err != nil {
				return err
			}
			if mission.XPReward > 0 {
				if err := s.Profiles.addXPTx(tx, externalUserID, mission.XPReward); err != nil {
					return err
				}
			}
			if mission.PointReward > 0 {
				if err := s.Profiles.addPointsTx(tx, externalUserID, mission.PointReward); err != nil {
					return err
				}
			}
			completed = &mission
		}

		return tx.Save(&progress).Error
	})
	if err != nil {
		return false, err
	}

	if completed == nil {
		return false, nil
	}

	// Dispatched only after the transaction committed — no phantom
	// notifications for rolled-back mutations.
	s.Dispatcher.Notify(externalUserID, MissionCompletedNotice{
		Title:  completed.Title,
		XP:     completed.XPReward,
		Points: completed.PointReward,
	})
	log.Printf("🏁 Mission completed: %s → %s (+%d XP, +%d pts)",
		externalUserID, completed.Code, completed.XPReward, completed.PointReward)
	return true, nil
}

// ListActive returns the active mission catalog.
func (s *MissionService) ListActive() ([]models.Mission, error) {
	var missions []models.Mission
	err := s.DB.Where("active = ?", true).Order("created_at ASC").Find(&missions).Error
	return missions, err
}

// ListProgress returns all progress rows for a user with missions preloaded.
func (s *MissionService) ListProgress(externalUserID string) ([]models.UserMissionProgress, error) {
	var rows []models.UserMissionProgress
	err := s.DB.Preload("Mission").
		Where("external_user_id = ?", externalUserID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// RecentUnseen returns completed-but-unseen progress rows, newest first.
// The frontend uses this to replay missed completion toasts.
func (s *MissionService) RecentUnseen(externalUserID string) ([]models.UserMissionProgress, error) {
	var rows []models.UserMissionProgress
	err := s.DB.Preload("Mission").
		Where("external_user_id = ? AND completed = ? AND seen = ?", externalUserID, true, false).
		Order("completed_at DESC").
		Find(&rows).Error
	return rows, err
}

// MarkSeen marks one progress row as seen. Idempotent; ErrRecordNotFound if
// the row does not belong to the user. UpdateColumn, not Update: updated_at is
// the period-rollover reference and must only move on real progress.
func (s *MissionService) MarkSeen(externalUserID, progressID string) error {
	result := s.DB.Model(&models.UserMissionProgress{}).
		Where("id = ? AND external_user_id = ?", progressID, externalUserID).
		UpdateColumn("seen", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CompletedCount returns how many missions the user has completed (any type).
func (s *MissionService) CompletedCount(externalUserID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.UserMissionProgress{}).
		Where("external_user_id = ? AND completed = ?", externalUserID, true).
		Count(&count).Error
	return count, err
}

// SeedMissions upserts the given catalog by code (boot-time seeding).
func (s *MissionService) SeedMissions(missions []models.Mission) error {
	for i := range missions {
		m := missions[i]
		if err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&m).Error; err != nil {
			return fmt.Errorf("seed mission %s: %w", m.Code, err)
		}
	}
	return nil
}
