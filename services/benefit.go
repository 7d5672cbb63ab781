package services

import (
	"errors"

	"gig-rewards-system/models"

	"gorm.io/gorm"
)

// Benefit purchase failure reasons, surfaced to the API layer with a 4xx.
var (
	ErrBenefitNotFound    = errors.New("benefit not found")
	ErrBenefitOwned       = errors.New("benefit already owned")
	ErrInsufficientPoints = errors.New("insufficient points")
)

type BenefitService struct {
	DB       *gorm.DB
	Profiles *ProfileService
}

func NewBenefitService(db *gorm.DB, profiles *ProfileService) *BenefitService {
	return &BenefitService{DB: db, Profiles: profiles}
}

// List returns the purchasable catalog.
func (s *BenefitService) List() ([]models.PlatformBenefit, error) {
	var benefits []models.PlatformBenefit
	err := s.DB.Order("cost ASC").Find(&benefits).Error
	return benefits, err
}

// ListOwned returns the user's purchases with benefits preloaded.
func (s *BenefitService) ListOwned(externalUserID string) ([]models.UserBenefit, error) {
	var owned []models.UserBenefit
	err := s.DB.Preload("Benefit").
		Where("external_user_id = ?", externalUserID).
		Order("acquired_at DESC").
		Find(&owned).Error
	return owned, err
}

// Purchase debits the benefit's cost and records ownership in one
// transaction. The conditional-update debit plus the unique (user, benefit)
// index make concurrent double-purchases impossible: at most one transaction
// both pays and inserts.
func (s *BenefitService) Purchase(externalUserID, benefitID string) (*models.UserBenefit, error) {
	var purchase *models.UserBenefit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var benefit models.PlatformBenefit
		if err := tx.Where("id = ?", benefitID).First(&benefit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBenefitNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.UserBenefit{}).
			Where("external_user_id = ? AND benefit_id = ?", externalUserID, benefit.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrBenefitOwned
		}

		ok, err := s.Profiles.spendPointsTx(tx, externalUserID, benefit.Cost)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientPoints
		}

		record := models.UserBenefit{
			ExternalUserID: externalUserID,
			BenefitID:      benefit.ID,
		}
		if err := tx.Create(&record).Error; err != nil {
			// Unique index hit by a concurrent buyer — roll everything back.
			return err
		}
		record.Benefit = benefit
		purchase = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}
