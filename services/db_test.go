package services

import (
	"sync"
	"testing"

	"gig-rewards-system/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// in-memory sqlite gives each pooled connection its own database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.RewardProfile{},
		&models.Mission{},
		&models.UserMissionProgress{},
		&models.Badge{},
		&models.UserBadge{},
		&models.PlatformBenefit{},
		&models.UserBenefit{},
		&models.MarketplaceUser{},
		&models.RemoteApplication{},
		&models.RemoteGig{},
		&models.RemoteReview{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// recorderDispatcher captures dispatched notifications for assertions.
type recorderDispatcher struct {
	mu      sync.Mutex
	users   []string
	notices []Notification
}

func (r *recorderDispatcher) Notify(externalUserID string, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, externalUserID)
	r.notices = append(r.notices, n)
}

func (r *recorderDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

func (r *recorderDispatcher) last() (string, Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return "", nil
	}
	return r.users[len(r.users)-1], r.notices[len(r.notices)-1]
}
