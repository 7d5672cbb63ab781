// services/scheduler.go
package services

import (
	"log"
	"time"

	"gig-rewards-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartActivationScheduler flips Active on missions whose activate_at has
// arrived. Seeded seasonal missions go live without a deploy.
func (s *MissionService) StartActivationScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var missions []models.Mission
			now := time.Now()
			err := s.DB.Where("active = ? AND activate_at IS NOT NULL AND activate_at <= ?", false, now).
				Find(&missions).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range missions {
				m.Active = true
				m.ActivateAt = nil
				if err := s.DB.Save(&m).Error; err != nil {
					log.Printf("[Scheduler] Failed to activate mission %s: %v", m.Code, err)
				} else {
					log.Printf("✅ Auto-activated mission: %s", m.Code)
				}
			}
		}),
	)
}
