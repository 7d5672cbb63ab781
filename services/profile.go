package services

import (
	"fmt"
	"log"
	"time"

	"gig-rewards-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// EnsureProfile ensures a RewardProfile row exists (idempotent).
// Called on user creation; also used as a lazy fallback by the read surface.
func (s *ProfileService) EnsureProfile(externalUserID string) (*models.RewardProfile, error) {
	return s.ensureProfileTx(s.DB, externalUserID)
}

func (s *ProfileService) ensureProfileTx(tx *gorm.DB, externalUserID string) (*models.RewardProfile, error) {
	var profile models.RewardProfile
	err := tx.Where("external_user_id = ?", externalUserID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	profile = models.RewardProfile{
		ExternalUserID: externalUserID,
		XP:             0,
		Level:          1,
		Points:         0,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}},
		DoNothing: true,
	}).Create(&profile).Error; err != nil {
		return nil, err
	}
	// Re-fetch: a concurrent creator may have won the insert.
	if err := tx.Where("external_user_id = ?", externalUserID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfile fetches the profile, creating it lazily if missing.
func (s *ProfileService) GetProfile(externalUserID string) (*models.RewardProfile, error) {
	return s.EnsureProfile(externalUserID)
}

// AddXP credits XP and recomputes the level in the same transaction, so the
// stored level is never stale. XP saturates at the cap instead of wrapping.
func (s *ProfileService) AddXP(externalUserID string, amount int64) (*models.RewardProfile, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("xp amount must be positive, got %d", amount)
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.addXPTx(tx, externalUserID, amount)
	})
	if err != nil {
		return nil, err
	}
	var updated models.RewardProfile
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// addXPTx is the transaction-scoped credit used both directly and by the
// mission engine, which folds the credit into its own completion transaction.
func (s *ProfileService) addXPTx(tx *gorm.DB, externalUserID string, amount int64) error {
	var profile models.RewardProfile
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_user_id = ?", externalUserID).
		First(&profile).Error; err != nil {
		return fmt.Errorf("reward profile not found for %s: %w", externalUserID, err)
	}

	oldLevel := profile.Level
	profile.XP = saturatingAdd(profile.XP, amount)
	profile.Level = LevelOf(profile.XP)
	if profile.Level > oldLevel {
		now := time.Now()
		profile.LastLevelUpAt = &now
	}

	if err := tx.Save(&profile).Error; err != nil {
		return err
	}
	log.Printf("🎮 XP credited: %s → XP=%d, Lvl=%d", externalUserID, profile.XP, profile.Level)
	return nil
}

// AddPoints credits spendable points (saturating).
func (s *ProfileService) AddPoints(externalUserID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("point amount must be positive, got %d", amount)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.addPointsTx(tx, externalUserID, amount)
	})
}

func (s *ProfileService) addPointsTx(tx *gorm.DB, externalUserID string, amount int64) error {
	var profile models.RewardProfile
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_user_id = ?", externalUserID).
		First(&profile).Error; err != nil {
		return fmt.Errorf("reward profile not found for %s: %w", externalUserID, err)
	}
	profile.Points = saturatingAdd(profile.Points, amount)
	return tx.Save(&profile).Error
}

// SpendPoints debits amount iff the balance covers it. The balance check and
// debit are one conditional UPDATE, so two concurrent spends cannot both
// succeed on a balance that covers only one.
func (s *ProfileService) SpendPoints(externalUserID string, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	return s.spendPointsTx(s.DB, externalUserID, amount)
}

// spendPointsTx is the transaction-scoped debit; the benefit purchase folds it
// into its own transaction.
func (s *ProfileService) spendPointsTx(tx *gorm.DB, externalUserID string, amount int64) (bool, error) {
	result := tx.Model(&models.RewardProfile{}).
		Where("external_user_id = ? AND points >= ?", externalUserID, amount).
		Update("points", gorm.Expr("points - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	ExternalUserID    string  `json:"external_user_id"`
	Username          string  `json:"username"`
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	Level             int     `json:"level"`
	XP                int64   `json:"xp"`
	Points            int64   `json:"points"`
}

// Leaderboard returns profiles for one marketplace role ordered by
// (xp desc, level desc), joined with the synced user snapshot for display.
func (s *ProfileService) Leaderboard(role string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []LeaderboardEntry
	err := s.DB.Model(&models.RewardProfile{}).
		Select(`reward_profiles.external_user_id, marketplace_users.username,
			marketplace_users.first_name, marketplace_users.last_name,
			marketplace_users.profile_picture_url,
			reward_profiles.level, reward_profiles.xp, reward_profiles.points`).
		Joins("INNER JOIN marketplace_users ON marketplace_users.external_user_id = reward_profiles.external_user_id").
		Where("marketplace_users.role = ? AND marketplace_users.deleted_at IS NULL", role).
		Order("reward_profiles.xp DESC, reward_profiles.level DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}
