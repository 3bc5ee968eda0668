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

func setupDietTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:diet_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.DietLog{}, &db.DietDailyStatus{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		gdb.Exec("DELETE FROM diet_logs")
		gdb.Exec("DELETE FROM diet_daily_status")
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func TestDietTodayDistinguishesUnmarked(t *testing.T) {
	gdb := setupDietTestDB(t)
	svc := NewDietService(gdb)

	now := time.Date(2026, 8, 30, 13, 0, 0, 0, time.Local)

	summary, err := svc.Today(1, now)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if summary.HasStatus {
		t.Fatal("expected no status before marking")
	}

	if _, err := svc.SetDayStatus(1, "free", now); err != nil {
		t.Fatalf("SetDayStatus returned error: %v", err)
	}

	summary, err = svc.Today(1, now)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if !summary.HasStatus || summary.Status != DietStatusFree {
		t.Fatalf("expected explicit free status, got has=%v status=%q", summary.HasStatus, summary.Status)
	}
}

func TestDietSetDayStatusUpserts(t *testing.T) {
	gdb := setupDietTestDB(t)
	svc := NewDietService(gdb)

	now := time.Date(2026, 8, 30, 13, 0, 0, 0, time.Local)

	if _, err := svc.SetDayStatus(1, "partial", now); err != nil {
		t.Fatalf("SetDayStatus returned error: %v", err)
	}
	record, err := svc.SetDayStatus(1, "CLEAN", now)
	if err != nil {
		t.Fatalf("SetDayStatus returned error: %v", err)
	}
	if record.Status != DietStatusClean {
		t.Fatalf("status = %s, want clean", record.Status)
	}

	var count int64
	gdb.Model(&db.DietDailyStatus{}).Where("user_id = ?", 1).Count(&count)
	if count != 1 {
		t.Fatalf("expected single status row per day, got %d", count)
	}
}

func TestDietStatusValidation(t *testing.T) {
	gdb := setupDietTestDB(t)
	svc := NewDietService(gdb)

	if _, err := svc.SetDayStatus(1, "cheat", time.Now()); !errors.Is(err, ErrDietInvalidStatus) {
		t.Fatalf("expected ErrDietInvalidStatus, got %v", err)
	}
}

func TestDietMealLogging(t *testing.T) {
	gdb := setupDietTestDB(t)
	svc := NewDietService(gdb)

	now := time.Date(2026, 8, 30, 13, 0, 0, 0, time.Local)

	log, err := svc.AddMeal(1, "鸡胸肉沙拉", true, now)
	if err != nil {
		t.Fatalf("AddMeal returned error: %v", err)
	}
	if _, err := svc.AddMeal(1, "  ", true, now); !errors.Is(err, ErrDietInvalidInput) {
		t.Fatalf("expected ErrDietInvalidInput, got %v", err)
	}

	summary, err := svc.Today(1, now)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if summary.MealsLogged != 1 {
		t.Fatalf("meals logged = %d, want 1", summary.MealsLogged)
	}

	if err := svc.DeleteMeal(log.ID, 1); err != nil {
		t.Fatalf("DeleteMeal returned error: %v", err)
	}
	summary, _ = svc.Today(1, now)
	if summary.MealsLogged != 0 {
		t.Fatalf("meals logged after delete = %d, want 0", summary.MealsLogged)
	}
}
