package models

import (
	"time"

	"gorm.io/gorm"
)

// RewardProfile holds the spendable economy for each user (denormalized for performance).
// Level is always derived from XP — it is recomputed on every mutation, never set directly.
type RewardProfile struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	XP     int64 `json:"xp" gorm:"default:0"`
	Level  int   `json:"level" gorm:"default:1"`
	Points int64 `json:"points" gorm:"default:0"`

	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
