package service

import (
	"errors"
	"testing"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHydrationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:hydration_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.UserProfile{}, &db.HydrationLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		gdb.Exec("DELETE FROM hydration_logs")
		gdb.Exec("DELETE FROM user_profiles")
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func TestHydrationTodayProgress(t *testing.T) {
	gdb := setupHydrationTestDB(t)
	svc := NewHydrationService(gdb, NewProfileService(gdb))

	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)
	if _, err := svc.Add(1, 800, now); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if _, err := svc.Add(1, 450, now); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	summary, err := svc.Today(1, now)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if summary.TotalML != 1250 {
		t.Fatalf("total = %d, want 1250", summary.TotalML)
	}
	if summary.GoalML != db.DefaultHydrationGoalML {
		t.Fatalf("goal = %d, want default %d", summary.GoalML, db.DefaultHydrationGoalML)
	}
	// 1250/2500 = 50%
	if summary.Percentage != 50 {
		t.Fatalf("percentage = %d, want 50", summary.Percentage)
	}
}

func TestHydrationPercentageCapped(t *testing.T) {
	gdb := setupHydrationTestDB(t)
	svc := NewHydrationService(gdb, NewProfileService(gdb))

	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)
	if _, err := svc.Add(1, 4000, now); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	summary, err := svc.Today(1, now)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if summary.Percentage != 100 {
		t.Fatalf("percentage = %d, want capped 100", summary.Percentage)
	}
}

func TestHydrationAddRejectsNonPositive(t *testing.T) {
	gdb := setupHydrationTestDB(t)
	svc := NewHydrationService(gdb, NewProfileService(gdb))

	if _, err := svc.Add(1, 0, time.Now()); !errors.Is(err, ErrHydrationInvalidAmount) {
		t.Fatalf("expected ErrHydrationInvalidAmount, got %v", err)
	}
	if _, err := svc.Add(1, -100, time.Now()); !errors.Is(err, ErrHydrationInvalidAmount) {
		t.Fatalf("expected ErrHydrationInvalidAmount, got %v", err)
	}
}

func TestHydrationWeekFillsMissingDays(t *testing.T) {
	gdb := setupHydrationTestDB(t)
	svc := NewHydrationService(gdb, NewProfileService(gdb))

	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)
	if _, err := svc.Add(1, 2000, now); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if _, err := svc.Add(1, 1500, now.AddDate(0, 0, -3)); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	week, err := svc.Week(1, now)
	if err != nil {
		t.Fatalf("Week returned error: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(week))
	}
	if week[6].TotalML != 2000 {
		t.Fatalf("today total = %d, want 2000", week[6].TotalML)
	}
	if week[3].TotalML != 1500 {
		t.Fatalf("day -3 total = %d, want 1500", week[3].TotalML)
	}
	if week[0].TotalML != 0 {
		t.Fatalf("empty day total = %d, want 0", week[0].TotalML)
	}
}
