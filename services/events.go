package services

import (
	"log"

	"gig-rewards-system/models"

	"gorm.io/gorm"
)

// Badge thresholds evaluated by the event handlers. Counts re-query the
// mirrored domain tables each time, so redundant invocations converge on the
// same grants (already-held badges are no-ops).
const (
	applicationSpammerThreshold = 10
	reviewerThreshold           = 5
	veteranThreshold            = 10
	missionMasterThreshold      = 10
)

// RewardEvents is the inbound contract the marketplace services call on each
// domain action. One method per event type — an explicit dispatch table
// instead of hidden signal registration.
//
// Failures here are non-fatal to the triggering domain operation: each step
// logs and moves on, so a broken mission credit never rolls back a gig.
type RewardEvents struct {
	DB       *gorm.DB
	Missions *MissionService
	Badges   *BadgeService
	Profiles *ProfileService
}

func NewRewardEvents(db *gorm.DB, missions *MissionService, badges *BadgeService, profiles *ProfileService) *RewardEvents {
	return &RewardEvents{DB: db, Missions: missions, Badges: badges, Profiles: profiles}
}

// record is the tolerant wrapper used by every handler: mission failures are
// logged, never propagated. A completion also re-checks the mission-master
// badge threshold.
func (e *RewardEvents) record(externalUserID, code string) {
	completed, err := e.Missions.RecordEvent(externalUserID, code, 1)
	if err != nil {
		log.Printf("⚠️ mission %s for %s failed: %v", code, externalUserID, err)
		return
	}
	if completed {
		e.checkMissionMaster(externalUserID)
	}
}

func (e *RewardEvents) grant(externalUserID, code string) {
	if err := e.Badges.GrantBadge(externalUserID, code); err != nil {
		log.Printf("⚠️ badge %s for %s failed: %v", code, externalUserID, err)
	}
}

func (e *RewardEvents) checkMissionMaster(externalUserID string) {
	total, err := e.Missions.CompletedCount(externalUserID)
	if err != nil {
		log.Printf("⚠️ mission count for %s failed: %v", externalUserID, err)
		return
	}
	if total >= missionMasterThreshold {
		e.grant(externalUserID, "mission_master")
	}
}

// OnUserCreated creates the reward profile alongside the user.
func (e *RewardEvents) OnUserCreated(externalUserID string) error {
	_, err := e.Profiles.EnsureProfile(externalUserID)
	return err
}

// OnUserLoggedIn advances the daily login mission.
func (e *RewardEvents) OnUserLoggedIn(externalUserID string) {
	e.record(externalUserID, "daily_login")
}

// OnGigCreated advances the client's first-gig mission.
func (e *RewardEvents) OnGigCreated(clientID string) {
	e.record(clientID, "submit_first_gig")
}

// OnApplicationCreated advances the applicant's application missions and
// evaluates application-count badges against the mirrored table.
func (e *RewardEvents) OnApplicationCreated(applicantID string) {
	e.record(applicantID, "first_application")
	e.record(applicantID, "once_10_apps")
	e.record(applicantID, "daily_apply")
	e.record(applicantID, "weekly_5_apps")
	e.record(applicantID, "monthly_apps")
	e.record(applicantID, "yearly_100_apps")

	var count int64
	if err := e.DB.Model(&models.RemoteApplication{}).
		Where("applicant_id = ?", applicantID).
		Count(&count).Error; err != nil {
		log.Printf("⚠️ application count for %s failed: %v", applicantID, err)
		return
	}
	if count == 1 {
		e.grant(applicantID, "first_application")
	}
	if count >= applicationSpammerThreshold {
		e.grant(applicantID, "application_spammer")
	}
}

// OnSubmissionCreated advances the freelancer's submission missions.
func (e *RewardEvents) OnSubmissionCreated(freelancerID string) {
	e.record(freelancerID, "first_submission")
	e.record(freelancerID, "once_5_submissions")
	e.record(freelancerID, "weekly_submissions")
	e.record(freelancerID, "monthly_submissions")
	e.record(freelancerID, "yearly_50_submissions")
}

// OnReviewCreated advances missions for both sides of the review and
// evaluates the review/completed-gig badges.
func (e *RewardEvents) OnReviewCreated(clientID, freelancerID string) {
	e.record(clientID, "write_first_review")
	e.record(clientID, "write_5_reviews")
	e.record(clientID, "daily_review")
	e.record(clientID, "monthly_reviews")

	var reviews int64
	if err := e.DB.Model(&models.RemoteReview{}).
		Joins("INNER JOIN gigs ON gigs.id = reviews.gig_id").
		Where("gigs.client_id = ?", clientID).
		Count(&reviews).Error; err != nil {
		log.Printf("⚠️ review count for %s failed: %v", clientID, err)
	} else if reviews >= reviewerThreshold {
		e.grant(clientID, "reviewer")
	}

	if freelancerID == "" {
		return
	}
	e.record(freelancerID, "receive_review")

	var finished int64
	if err := e.DB.Model(&models.RemoteGig{}).
		Where("freelancer_id = ? AND status = ?", freelancerID, "completed").
		Count(&finished).Error; err != nil {
		log.Printf("⚠️ completed gig count for %s failed: %v", freelancerID, err)
		return
	}
	if finished >= 1 {
		e.grant(freelancerID, "first_finish")
	}
	if finished >= veteranThreshold {
		e.grant(freelancerID, "veteran")
	}
}
