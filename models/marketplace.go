package models

import (
	"time"

	"gorm.io/gorm"
)

// MarketplaceUser is a local snapshot of user data needed for leaderboards.
// Owned and managed solely by the rewards service.
// Populated via sync worker from the profile service's user table.
type MarketplaceUser struct {
	ID                string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID    string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username          string  `gorm:"index;not null" json:"username"`
	Role              string  `gorm:"type:varchar(16);index" json:"role"` // "client" or "freelancer"
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// The structs below mirror the schema of the marketplace service's tables
// (read-only). Badge threshold checks count against them directly rather than
// keeping duplicate counters that could drift.

// RemoteApplication mirrors the foreign `applications` table.
type RemoteApplication struct {
	ID          uint      `gorm:"column:id"`
	ApplicantID string    `gorm:"column:applicant_id"`
	GigID       uint      `gorm:"column:gig_id"`
	Status      string    `gorm:"column:status"`
	AppliedAt   time.Time `gorm:"column:applied_at"`
}

func (RemoteApplication) TableName() string { return "applications" }

// RemoteGig mirrors the foreign `gigs` table.
type RemoteGig struct {
	ID           uint    `gorm:"column:id"`
	ClientID     string  `gorm:"column:client_id"`
	FreelancerID *string `gorm:"column:freelancer_id"`
	Status       string  `gorm:"column:status"` // available/pending/in_progress/completed/cancelled
}

func (RemoteGig) TableName() string { return "gigs" }

// RemoteReview mirrors the foreign `reviews` table (one review per gig).
type RemoteReview struct {
	ID        uint      `gorm:"column:id"`
	GigID     uint      `gorm:"column:gig_id"`
	Rating    int       `gorm:"column:rating"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (RemoteReview) TableName() string { return "reviews" }
