package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gig-rewards-system/models"

	"gorm.io/gorm"
)

func newTestMissionService(t *testing.T, db *gorm.DB) (*MissionService, *recorderDispatcher) {
	t.Helper()
	rec := &recorderDispatcher{}
	return NewMissionService(db, NewProfileService(db), rec, time.UTC), rec
}

func seedMission(t *testing.T, db *gorm.DB, m models.Mission) models.Mission {
	t.Helper()
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed mission %s: %v", m.Code, err)
	}
	return m
}

func TestPeriodStart(t *testing.T) {
	loc := time.UTC
	// 2026-08-12 is a Wednesday
	at := time.Date(2026, 8, 12, 15, 30, 0, 0, loc)

	cases := []struct {
		typ  models.MissionType
		want time.Time
		ok   bool
	}{
		{models.MissionOnce, time.Time{}, false},
		{models.MissionDaily, time.Date(2026, 8, 12, 0, 0, 0, 0, loc), true},
		{models.MissionWeekly, time.Date(2026, 8, 10, 0, 0, 0, 0, loc), true}, // Monday
		{models.MissionMonthly, time.Date(2026, 8, 1, 0, 0, 0, 0, loc), true},
		{models.MissionYearly, time.Date(2026, 1, 1, 0, 0, 0, 0, loc), true},
	}
	for _, c := range cases {
		got, ok := periodStart(at, c.typ, loc)
		if ok != c.ok {
			t.Errorf("periodStart(%s): ok = %v, want %v", c.typ, ok, c.ok)
			continue
		}
		if ok && !got.Equal(c.want) {
			t.Errorf("periodStart(%s) = %v, want %v", c.typ, got, c.want)
		}
	}
}

func TestPeriodStartWeekOnMonday(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2026, 8, 10, 0, 0, 0, 0, loc)
	// Every day of that week maps back to the same Monday, including Sunday.
	for d := 0; d < 7; d++ {
		at := monday.AddDate(0, 0, d).Add(13 * time.Hour)
		got, ok := periodStart(at, models.MissionWeekly, loc)
		if !ok || !got.Equal(monday) {
			t.Errorf("weekly start for %v = %v, want %v", at, got, monday)
		}
	}
}

func TestRecordEventCompletesAtGoal(t *testing.T) {
	db := newTestDB(t)
	svc, rec := newTestMissionService(t, db)
	mission := seedMission(t, db, models.Mission{
		Code: "apply_thrice", Title: "Apply Thrice", Type: models.MissionOnce,
		GoalCount: 3, XPReward: 50, PointReward: 20, Active: true,
	})

	for i := 0; i < 2; i++ {
		completed, err := svc.RecordEvent("user-1", "apply_thrice", 1)
		if err != nil {
			t.Fatalf("record %d: %v", i+1, err)
		}
		if completed {
			t.Fatalf("completed at count %d, goal is 3", i+1)
		}
	}
	if rec.count() != 0 {
		t.Fatalf("notified before completion: %d notices", rec.count())
	}

	completed, err := svc.RecordEvent("user-1", "apply_thrice", 1)
	if err != nil {
		t.Fatalf("final record: %v", err)
	}
	if !completed {
		t.Fatal("not completed at goal")
	}

	var progress models.UserMissionProgress
	if err := db.Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		First(&progress).Error; err != nil {
		t.Fatalf("fetch progress: %v", err)
	}
	if !progress.Completed || progress.CompletedAt == nil || progress.CurrentCount != 3 {
		t.Fatalf("progress = completed=%v count=%d", progress.Completed, progress.CurrentCount)
	}

	profile, err := svc.Profiles.GetProfile("user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.XP != 50 || profile.Points != 20 {
		t.Fatalf("rewards = xp=%d pts=%d, want 50/20", profile.XP, profile.Points)
	}

	if rec.count() != 1 {
		t.Fatalf("notices = %d, want 1", rec.count())
	}
	user, notice := rec.last()
	if user != "user-1" {
		t.Fatalf("notified %q", user)
	}
	n, ok := notice.(MissionCompletedNotice)
	if !ok {
		t.Fatalf("notice type %T", notice)
	}
	if n.Title != "Apply Thrice" || n.XP != 50 || n.Points != 20 {
		t.Fatalf("notice = %+v", n)
	}
}

func TestRecordEventAfterCompletedIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc, rec := newTestMissionService(t, db)
	seedMission(t, db, models.Mission{
		Code: "one_shot", Title: "One Shot", Type: models.MissionOnce,
		GoalCount: 1, XPReward: 30, Active: true,
	})

	if _, err := svc.RecordEvent("user-1", "one_shot", 1); err != nil {
		t.Fatalf("first record: %v", err)
	}
	completed, err := svc.RecordEvent("user-1", "one_shot", 1)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if completed {
		t.Fatal("completed reported twice")
	}

	profile, err := svc.Profiles.GetProfile("user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.XP != 30 {
		t.Fatalf("xp = %d, reward paid twice?", profile.XP)
	}
	if rec.count() != 1 {
		t.Fatalf("notices = %d, want 1", rec.count())
	}
}

func TestRecordEventUnknownCode(t *testing.T) {
	db := newTestDB(t)
	svc, rec := newTestMissionService(t, db)

	completed, err := svc.RecordEvent("user-1", "no_such_mission", 1)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if completed {
		t.Fatal("completed an unknown mission")
	}
	if rec.count() != 0 {
		t.Fatal("notified for unknown mission")
	}

	var count int64
	if err := db.Model(&models.UserMissionProgress{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("progress rows created for unknown code: %d", count)
	}
}

func TestRecordEventInactiveMission(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestMissionService(t, db)
	seedMission(t, db, models.Mission{
		Code: "not_yet", Title: "Not Yet", Type: models.MissionOnce,
		GoalCount: 1, Active: false,
	})

	completed, err := svc.RecordEvent("user-1", "not_yet", 1)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if completed {
		t.Fatal("inactive mission completed")
	}

	var count int64
	if err := db.Model(&models.UserMissionProgress{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("progress tracked for inactive mission: %d rows", count)
	}
}

func TestRecordEventDailyResetWhilePending(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestMissionService(t, db)
	mission := seedMission(t, db, models.Mission{
		Code: "daily_three", Title: "Daily Three", Type: models.MissionDaily,
		GoalCount: 3, Active: true,
	})

	for i := 0; i < 2; i++ {
		if _, err := svc.RecordEvent("user-1", "daily_three", 1); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	// Backdate the row so it looks untouched since yesterday.
	if err := db.Model(&models.UserMissionProgress{}).
		Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		UpdateColumn("updated_at", time.Now().AddDate(0, 0, -1)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	completed, err := svc.RecordEvent("user-1", "daily_three", 1)
	if err != nil {
		t.Fatalf("record next day: %v", err)
	}
	if completed {
		t.Fatal("completed from a stale counter")
	}

	var progress models.UserMissionProgress
	if err := db.Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		First(&progress).Error; err != nil {
		t.Fatalf("fetch progress: %v", err)
	}
	if progress.CurrentCount != 1 {
		t.Fatalf("count = %d, want 1 (stale counter must reset)", progress.CurrentCount)
	}
}

func TestRecordEventCompletedDailyMissionStaysTerminal(t *testing.T) {
	db := newTestDB(t)
	svc, rec := newTestMissionService(t, db)
	mission := seedMission(t, db, models.Mission{
		Code: "daily_once", Title: "Daily Once", Type: models.MissionDaily,
		GoalCount: 1, XPReward: 10, PointReward: 5, Active: true,
	})

	completed, err := svc.RecordEvent("user-1", "daily_once", 1)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !completed {
		t.Fatal("not completed at goal 1")
	}

	// A day passes.
	yesterday := time.Now().AddDate(0, 0, -1)
	if err := db.Model(&models.UserMissionProgress{}).
		Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		UpdateColumns(map[string]interface{}{
			"updated_at":   yesterday,
			"completed_at": yesterday,
		}).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	completed, err = svc.RecordEvent("user-1", "daily_once", 1)
	if err != nil {
		t.Fatalf("record next day: %v", err)
	}
	if completed {
		t.Fatal("completed mission re-armed for a new period")
	}

	var progress models.UserMissionProgress
	if err := db.Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		First(&progress).Error; err != nil {
		t.Fatalf("fetch progress: %v", err)
	}
	if !progress.Completed || progress.CurrentCount != 1 {
		t.Fatalf("progress mutated after completion: completed=%v count=%d",
			progress.Completed, progress.CurrentCount)
	}

	profile, err := svc.Profiles.GetProfile("user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.XP != 10 || profile.Points != 5 {
		t.Fatalf("rewards paid twice: xp=%d pts=%d", profile.XP, profile.Points)
	}
	if rec.count() != 1 {
		t.Fatalf("notices = %d, want 1", rec.count())
	}
}

func TestRecordEventConcurrentSameCode(t *testing.T) {
	db := newTestDB(t)
	svc, rec := newTestMissionService(t, db)
	mission := seedMission(t, db, models.Mission{
		Code: "rush", Title: "Rush", Type: models.MissionOnce,
		GoalCount: 3, XPReward: 50, PointReward: 20, Active: true,
	})

	const callers = 8
	var completions int64
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			completed, err := svc.RecordEvent("user-1", "rush", 1)
			if err != nil {
				errs <- err
				return
			}
			if completed {
				atomic.AddInt64(&completions, 1)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent record: %v", err)
	}

	if completions != 1 {
		t.Fatalf("completions = %d, want exactly 1", completions)
	}

	var progress models.UserMissionProgress
	if err := db.Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		First(&progress).Error; err != nil {
		t.Fatalf("fetch progress: %v", err)
	}
	// counter stops at the goal; later callers see the terminal flag
	if progress.CurrentCount != 3 || !progress.Completed {
		t.Fatalf("progress = count=%d completed=%v", progress.CurrentCount, progress.Completed)
	}

	profile, err := svc.Profiles.GetProfile("user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.XP != 50 || profile.Points != 20 {
		t.Fatalf("reward credited %d times? xp=%d pts=%d", completions, profile.XP, profile.Points)
	}
	if rec.count() != 1 {
		t.Fatalf("notices = %d, want 1", rec.count())
	}

	var rows int64
	if err := db.Model(&models.UserMissionProgress{}).Count(&rows).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("progress rows = %d, racing creators split the counter", rows)
	}
}

func TestMarkSeenKeepsRolloverTimestamp(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestMissionService(t, db)
	mission := seedMission(t, db, models.Mission{
		Code: "daily_pair", Title: "Daily Pair", Type: models.MissionDaily,
		GoalCount: 3, Active: true,
	})

	if _, err := svc.RecordEvent("user-1", "daily_pair", 1); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.Model(&models.UserMissionProgress{}).
		Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		UpdateColumn("updated_at", time.Now().AddDate(0, 0, -1)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	var progress models.UserMissionProgress
	if err := db.Where("external_user_id = ? AND mission_id = ?", "user-1", mission.ID).
		First(&progress).Error; err != nil {
		t.Fatalf("fetch progress: %v", err)
	}
	// Marking the stale row seen must not make it look touched this period.
	if err := svc.MarkSeen("user-1", progress.ID); err != nil {
		t.Fatalf("mark seen: %v", err)
	}

	if _, err := svc.RecordEvent("user-1", "daily_pair", 1); err != nil {
		t.Fatalf("record next day: %v", err)
	}
	if err := db.Where("id = ?", progress.ID).First(&progress).Error; err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if progress.CurrentCount != 1 {
		t.Fatalf("count = %d, want 1 (MarkSeen defeated the period reset)", progress.CurrentCount)
	}
	if !progress.Seen {
		t.Fatal("seen flag not persisted")
	}
}

func TestMarkSeenFlow(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestMissionService(t, db)
	seedMission(t, db, models.Mission{
		Code: "quick", Title: "Quick", Type: models.MissionOnce,
		GoalCount: 1, Active: true,
	})
	if _, err := svc.RecordEvent("user-1", "quick", 1); err != nil {
		t.Fatalf("record: %v", err)
	}

	unseen, err := svc.RecentUnseen("user-1")
	if err != nil {
		t.Fatalf("unseen: %v", err)
	}
	if len(unseen) != 1 {
		t.Fatalf("unseen = %d, want 1", len(unseen))
	}
	if unseen[0].Mission.Code != "quick" {
		t.Fatalf("mission not preloaded: %+v", unseen[0].Mission)
	}

	if err := svc.MarkSeen("someone-else", unseen[0].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("foreign MarkSeen err = %v, want ErrRecordNotFound", err)
	}
	if err := svc.MarkSeen("user-1", unseen[0].ID); err != nil {
		t.Fatalf("mark seen: %v", err)
	}

	unseen, err = svc.RecentUnseen("user-1")
	if err != nil {
		t.Fatalf("unseen after: %v", err)
	}
	if len(unseen) != 0 {
		t.Fatalf("unseen after mark = %d, want 0", len(unseen))
	}
}

func TestSeedMissionsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestMissionService(t, db)

	if err := svc.SeedMissions(models.DefaultMissions); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.SeedMissions(models.DefaultMissions); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Mission{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != int64(len(models.DefaultMissions)) {
		t.Fatalf("missions = %d, want %d", count, len(models.DefaultMissions))
	}

	active, err := svc.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != len(models.DefaultMissions) {
		t.Fatalf("active = %d, want %d", len(active), len(models.DefaultMissions))
	}
}
