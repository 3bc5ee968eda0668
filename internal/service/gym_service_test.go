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

func setupGymTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:gym_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.GymSession{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		gdb.Exec("DELETE FROM gym_sessions")
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func TestGymCheckInUpsertsSameDay(t *testing.T) {
	gdb := setupGymTestDB(t)
	svc := NewGymService(gdb)

	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.Local)

	first, err := svc.CheckIn(1, GymCheckInInput{WorkoutType: "strength", DurationMinutes: 45}, now)
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}

	second, err := svc.CheckIn(1, GymCheckInInput{WorkoutType: "cardio", DurationMinutes: 30, Notes: "改为有氧"}, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same-day checkin to update the same row, got %d and %d", first.ID, second.ID)
	}
	if second.WorkoutType != "cardio" || second.DurationMinutes != 30 {
		t.Fatalf("unexpected updated session: %s %d", second.WorkoutType, second.DurationMinutes)
	}

	var count int64
	gdb.Model(&db.GymSession{}).Where("user_id = ?", 1).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 session, got %d", count)
	}
}

func TestGymCheckInRejectsUnknownType(t *testing.T) {
	gdb := setupGymTestDB(t)
	svc := NewGymService(gdb)

	if _, err := svc.CheckIn(1, GymCheckInInput{WorkoutType: "napping"}, time.Now()); !errors.Is(err, ErrGymInvalidWorkoutType) {
		t.Fatalf("expected ErrGymInvalidWorkoutType, got %v", err)
	}
}

func TestGymTodayNilWhenAbsent(t *testing.T) {
	gdb := setupGymTestDB(t)
	svc := NewGymService(gdb)

	session, err := svc.Today(1, time.Now())
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if session != nil {
		t.Fatal("expected nil session when no checkin exists")
	}
}

func TestGymStatsAndCancel(t *testing.T) {
	gdb := setupGymTestDB(t)
	svc := NewGymService(gdb)

	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.Local)
	for _, offset := range []int{0, 2, 20} {
		if _, err := svc.CheckIn(1, GymCheckInInput{WorkoutType: "strength"}, now.AddDate(0, 0, -offset)); err != nil {
			t.Fatalf("CheckIn returned error: %v", err)
		}
	}

	stats, err := svc.Stats(1, now)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.WeekCount != 2 {
		t.Fatalf("week count = %d, want 2", stats.WeekCount)
	}
	if stats.MonthCount != 3 {
		t.Fatalf("month count = %d, want 3", stats.MonthCount)
	}

	if err := svc.CancelToday(1, now); err != nil {
		t.Fatalf("CancelToday returned error: %v", err)
	}
	session, err := svc.Today(1, now)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if session != nil {
		t.Fatal("expected checkin to be cancelled")
	}
}
