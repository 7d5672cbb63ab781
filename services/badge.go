package services

import (
	"errors"
	"fmt"
	"log"

	"gig-rewards-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeService grants badges. It only grants — deciding *when* a badge is
// earned is the event handlers' job (services/events.go).
type BadgeService struct {
	DB         *gorm.DB
	Dispatcher Dispatcher
}

func NewBadgeService(db *gorm.DB, dispatcher Dispatcher) *BadgeService {
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}
	return &BadgeService{DB: db, Dispatcher: dispatcher}
}

// GrantBadge idempotently awards the badge to the user. Unknown codes are
// tolerated no-ops; re-granting a held badge is a no-op, never an error. The
// unlock notification fires only on the first grant, after commit.
func (s *BadgeService) GrantBadge(externalUserID, code string) error {
	var badge models.Badge
	if err := s.DB.Where("code = ?", code).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	userBadge := models.UserBadge{
		ExternalUserID: externalUserID,
		BadgeID:        badge.ID,
	}
	result := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&userBadge)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil // already held
	}

	s.Dispatcher.Notify(externalUserID, BadgeUnlockedNotice{
		Title:       badge.Name,
		Description: badge.Description,
		Icon:        badge.IconURL,
	})
	log.Printf("🎖️ Badge awarded: %s → %s", badge.Code, externalUserID)
	return nil
}

// BadgeWithUnlocked is a catalog entry annotated for one user.
type BadgeWithUnlocked struct {
	models.Badge
	Unlocked bool `json:"unlocked"`
}

// ListForUser returns the whole catalog with an unlocked flag for the user.
func (s *BadgeService) ListForUser(externalUserID string) ([]BadgeWithUnlocked, error) {
	var badges []models.Badge
	if err := s.DB.Order("created_at ASC").Find(&badges).Error; err != nil {
		return nil, err
	}

	var held []models.UserBadge
	if err := s.DB.Where("external_user_id = ?", externalUserID).Find(&held).Error; err != nil {
		return nil, err
	}
	heldIDs := make(map[string]bool, len(held))
	for _, ub := range held {
		heldIDs[ub.BadgeID] = true
	}

	out := make([]BadgeWithUnlocked, len(badges))
	for i, b := range badges {
		out[i] = BadgeWithUnlocked{Badge: b, Unlocked: heldIDs[b.ID]}
	}
	return out, nil
}

// ListUserBadges returns only the badges the user holds, with award times.
func (s *BadgeService) ListUserBadges(externalUserID string) ([]models.UserBadge, error) {
	var held []models.UserBadge
	err := s.DB.Preload("Badge").
		Where("external_user_id = ?", externalUserID).
		Order("awarded_at DESC").
		Find(&held).Error
	return held, err
}

// SeedBadges upserts the badge catalog by code (boot-time seeding).
func (s *BadgeService) SeedBadges(badges []models.Badge) error {
	for i := range badges {
		b := badges[i]
		if err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&b).Error; err != nil {
			return fmt.Errorf("seed badge %s: %w", b.Code, err)
		}
	}
	return nil
}
