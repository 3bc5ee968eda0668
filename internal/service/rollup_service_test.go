package service

import (
	"testing"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRollupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:rollup_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{}, &db.UserProfile{}, &db.RoutineTemplate{},
		&db.Task{}, &db.Habit{}, &db.HabitLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		for _, table := range []string{"users", "user_profiles", "routine_templates", "tasks", "habits", "habit_logs"} {
			gdb.Exec("DELETE FROM " + table)
		}
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func newRollupService(gdb *gorm.DB) *RollupService {
	return NewRollupService(gdb, NewRoutineService(gdb), NewHabitService(gdb))
}

func TestRunIfPendingRunsOncePerDay(t *testing.T) {
	gdb := setupRollupTestDB(t)
	svc := newRollupService(gdb)
	routines := NewRoutineService(gdb)

	now := time.Date(2026, 8, 30, 7, 0, 0, 0, time.Local)
	weekday := int(now.Weekday())

	inactive := false
	template, err := routines.Create(1, RoutineTemplateInput{
		Title:      "晨读",
		DaysOfWeek: []int{weekday},
		IsActive:   &inactive,
	}, now)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	// 激活但不走即时生成路径，留给结算来生成
	if err := gdb.Model(&db.RoutineTemplate{}).Where("id = ?", template.ID).Update("is_active", true).Error; err != nil {
		t.Fatalf("failed to activate template: %v", err)
	}

	ran, err := svc.RunIfPending(1, now)
	if err != nil {
		t.Fatalf("RunIfPending returned error: %v", err)
	}
	if !ran {
		t.Fatal("expected first trigger of the day to run")
	}

	var count int64
	gdb.Model(&db.Task{}).Where("template_id = ?", template.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 materialized task, got %d", count)
	}

	ran, err = svc.RunIfPending(1, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("RunIfPending returned error: %v", err)
	}
	if ran {
		t.Fatal("expected second trigger of the day to be skipped")
	}

	gdb.Model(&db.Task{}).Where("template_id = ?", template.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected still 1 task after skipped run, got %d", count)
	}
}

func TestRunIfPendingWritesMarker(t *testing.T) {
	gdb := setupRollupTestDB(t)
	svc := newRollupService(gdb)

	now := time.Date(2026, 8, 30, 7, 0, 0, 0, time.Local)
	if _, err := svc.RunIfPending(1, now); err != nil {
		t.Fatalf("RunIfPending returned error: %v", err)
	}

	var profile db.UserProfile
	if err := gdb.Where("user_id = ?", 1).First(&profile).Error; err != nil {
		t.Fatalf("expected profile to be created: %v", err)
	}
	if profile.LastRollupDate == nil {
		t.Fatal("expected rollup marker to be written")
	}
	if !sameDay(*profile.LastRollupDate, normalizeToDate(now)) {
		t.Fatalf("marker = %v, want today", profile.LastRollupDate)
	}
}

func TestRunIfPendingRunsAgainNextDay(t *testing.T) {
	gdb := setupRollupTestDB(t)
	svc := newRollupService(gdb)

	now := time.Date(2026, 8, 30, 7, 0, 0, 0, time.Local)
	if _, err := svc.RunIfPending(1, now); err != nil {
		t.Fatalf("RunIfPending returned error: %v", err)
	}

	ran, err := svc.RunIfPending(1, now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("RunIfPending returned error: %v", err)
	}
	if !ran {
		t.Fatal("expected rollup to run again on the next day")
	}
}

func TestRunIfPendingSweepsBrokenStreaks(t *testing.T) {
	gdb := setupRollupTestDB(t)
	svc := newRollupService(gdb)
	habits := NewHabitService(gdb)

	habit, err := habits.Create(1, HabitInput{Title: "夜跑"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := gdb.Model(&db.Habit{}).Where("id = ?", habit.ID).
		Updates(map[string]interface{}{"current_streak": 9, "level": 2}).Error; err != nil {
		t.Fatalf("failed to seed streak: %v", err)
	}

	now := time.Date(2026, 8, 30, 0, 10, 0, 0, time.Local)
	if _, err := svc.RunIfPending(1, now); err != nil {
		t.Fatalf("RunIfPending returned error: %v", err)
	}

	after, _ := habits.Get(habit.ID, 1)
	if after.CurrentStreak != 0 || after.Level != 1 {
		t.Fatalf("expected streak reset by rollup, got streak %d level %d", after.CurrentStreak, after.Level)
	}
}

func TestRunAllCoversEveryUser(t *testing.T) {
	gdb := setupRollupTestDB(t)
	svc := newRollupService(gdb)

	for _, name := range []string{"ana", "bruno"} {
		if err := gdb.Create(&db.User{Username: name, Password: "x"}).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	now := time.Date(2026, 8, 30, 0, 0, 30, 0, time.Local)
	if err := svc.RunAll(now); err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}

	var count int64
	gdb.Model(&db.UserProfile{}).Where("last_rollup_date IS NOT NULL").Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 profiles with rollup marker, got %d", count)
	}
}
