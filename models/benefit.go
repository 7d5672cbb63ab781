package models

import "time"

// PlatformBenefit: purchasable catalog item, priced in points
type PlatformBenefit struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Cost        int64     `gorm:"not null" json:"cost"`
	EffectCode  string    `gorm:"not null" json:"effect_code"` // interpreted by the consuming service
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBenefit: purchase record. The unique (user, benefit) index prevents
// double-purchase under concurrent buys.
type UserBenefit struct {
	ID             string          `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string          `gorm:"not null;uniqueIndex:idx_user_benefit" json:"external_user_id"`
	BenefitID      string          `gorm:"not null;uniqueIndex:idx_user_benefit" json:"benefit_id"`
	Benefit        PlatformBenefit `gorm:"foreignKey:BenefitID" json:"benefit"`
	AcquiredAt     time.Time       `gorm:"autoCreateTime" json:"acquired_at"`
}
