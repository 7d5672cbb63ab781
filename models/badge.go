package models

import (
	"time"
)

// Badge: static catalog (seeded at boot or via admin routes)
type Badge struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"` // e.g., "first_application", "veteran"
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IconURL     string    `gorm:"type:text" json:"icon_url"` // R2 URL to SVG/png
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance. The unique (user, badge) index absorbs
// concurrent duplicate grants.
type UserBadge struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"external_user_id"`
	BadgeID        string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	Badge          Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
	AwardedAt      time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// DefaultBadges is the baseline catalog. Trigger thresholds live in the event
// handlers (services/events.go) — the catalog only describes the unlockables.
var DefaultBadges = []Badge{
	{
		Code:        "first_application",
		Name:        "First Step",
		Description: "Applied to a gig for the first time",
	},
	{
		Code:        "application_spammer",
		Name:        "Persistent",
		Description: "Submitted 10 gig applications",
	},
	{
		Code:        "reviewer",
		Name:        "Critic",
		Description: "Wrote 5 reviews",
	},
	{
		Code:        "first_finish",
		Name:        "Deal Closer",
		Description: "Completed your first gig",
	},
	{
		Code:        "veteran",
		Name:        "Veteran",
		Description: "Completed 10 gigs",
	},
	{
		Code:        "mission_master",
		Name:        "Mission Master",
		Description: "Completed 10 missions",
	},
}
