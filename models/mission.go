package models

import (
	"time"
)

// MissionType controls the reset window of a mission's counter
type MissionType string

const (
	MissionOnce    MissionType = "once"
	MissionDaily   MissionType = "daily"
	MissionWeekly  MissionType = "weekly"
	MissionMonthly MissionType = "monthly"
	MissionYearly  MissionType = "yearly"
)

// Mission: static catalog entry. Code is the stable identifier the event
// handlers reference; the rest is presentation + reward tuning.
type Mission struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string      `gorm:"uniqueIndex;not null" json:"code"` // e.g., "daily_login", "weekly_5_apps"
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Type        MissionType `gorm:"type:varchar(16);default:'once'" json:"type"`
	GoalCount   int64       `gorm:"default:1" json:"goal_count"`
	XPReward    int64       `gorm:"default:0" json:"xp_reward"`
	PointReward int64       `gorm:"default:0" json:"point_reward"`
	// No column default on purpose: admin-created missions with a future
	// ActivateAt must persist Active=false, and gorm drops zero-valued fields
	// that carry a default tag from the INSERT.
	Active bool `json:"active"`

	// Missions seeded with a future ActivateAt start inactive; the scheduler
	// flips Active when the time arrives.
	ActivateAt *time.Time `gorm:"index" json:"activate_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserMissionProgress: one row per (user, mission). Completed is terminal —
// once true it never resets, even for repeating mission types.
type UserMissionProgress struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"not null;uniqueIndex:idx_user_mission" json:"external_user_id"`
	MissionID      string  `gorm:"not null;uniqueIndex:idx_user_mission" json:"mission_id"`
	Mission        Mission `gorm:"foreignKey:MissionID" json:"mission"`

	CurrentCount int64      `gorm:"default:0" json:"current_count"`
	Completed    bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Seen         bool       `gorm:"default:false" json:"seen"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultMissions is the baseline catalog seeded at boot. Codes are referenced
// by the event handlers (services/events.go); tuning is presentation-level.
var DefaultMissions = []Mission{
	{Code: "daily_login", Title: "Daily Check-In", Description: "Log in today", Type: MissionDaily, GoalCount: 1, XPReward: 10, PointReward: 5, Active: true},
	{Code: "submit_first_gig", Title: "Open for Business", Description: "Post your first gig", Type: MissionOnce, GoalCount: 1, XPReward: 50, PointReward: 20, Active: true},
	{Code: "first_application", Title: "First Step", Description: "Apply to a gig", Type: MissionOnce, GoalCount: 1, XPReward: 25, PointReward: 10, Active: true},
	{Code: "once_10_apps", Title: "Go-Getter", Description: "Apply to 10 gigs", Type: MissionOnce, GoalCount: 10, XPReward: 100, PointReward: 50, Active: true},
	{Code: "daily_apply", Title: "Daily Hustle", Description: "Apply to 3 gigs today", Type: MissionDaily, GoalCount: 3, XPReward: 15, PointReward: 5, Active: true},
	{Code: "weekly_5_apps", Title: "Weekly Grind", Description: "Apply to 5 gigs this week", Type: MissionWeekly, GoalCount: 5, XPReward: 40, PointReward: 15, Active: true},
	{Code: "monthly_apps", Title: "Monthly Momentum", Description: "Apply to 20 gigs this month", Type: MissionMonthly, GoalCount: 20, XPReward: 120, PointReward: 60, Active: true},
	{Code: "yearly_100_apps", Title: "Marathon Applicant", Description: "Apply to 100 gigs this year", Type: MissionYearly, GoalCount: 100, XPReward: 500, PointReward: 250, Active: true},
	{Code: "first_submission", Title: "First Delivery", Description: "Submit work for the first time", Type: MissionOnce, GoalCount: 1, XPReward: 50, PointReward: 20, Active: true},
	{Code: "once_5_submissions", Title: "Reliable Hands", Description: "Submit work 5 times", Type: MissionOnce, GoalCount: 5, XPReward: 150, PointReward: 75, Active: true},
	{Code: "weekly_submissions", Title: "Shipping Week", Description: "Submit work 3 times this week", Type: MissionWeekly, GoalCount: 3, XPReward: 60, PointReward: 20, Active: true},
	{Code: "monthly_submissions", Title: "Delivery Streak", Description: "Submit work 10 times this month", Type: MissionMonthly, GoalCount: 10, XPReward: 150, PointReward: 75, Active: true},
	{Code: "yearly_50_submissions", Title: "Workhorse", Description: "Submit work 50 times this year", Type: MissionYearly, GoalCount: 50, XPReward: 600, PointReward: 300, Active: true},
	{Code: "write_first_review", Title: "First Impressions", Description: "Write your first review", Type: MissionOnce, GoalCount: 1, XPReward: 25, PointReward: 10, Active: true},
	{Code: "write_5_reviews", Title: "Feedback Pro", Description: "Write 5 reviews", Type: MissionOnce, GoalCount: 5, XPReward: 100, PointReward: 40, Active: true},
	{Code: "daily_review", Title: "Review of the Day", Description: "Write a review today", Type: MissionDaily, GoalCount: 1, XPReward: 10, PointReward: 5, Active: true},
	{Code: "monthly_reviews", Title: "Monthly Critic", Description: "Write 5 reviews this month", Type: MissionMonthly, GoalCount: 5, XPReward: 80, PointReward: 30, Active: true},
	{Code: "receive_review", Title: "Talk of the Town", Description: "Receive your first review", Type: MissionOnce, GoalCount: 1, XPReward: 30, PointReward: 10, Active: true},
}
