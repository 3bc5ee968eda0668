package service

import (
	"testing"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHabitTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:habit_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Habit{}, &db.HabitLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		gdb.Exec("DELETE FROM habit_logs")
		gdb.Exec("DELETE FROM habits")
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func TestHabitCreateDefaults(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	habit, err := svc.Create(1, HabitInput{Title: "晨间冥想"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if habit.FrequencyPerWeek != 7 {
		t.Fatalf("expected default frequency 7, got %d", habit.FrequencyPerWeek)
	}
	if habit.TargetDays != 66 {
		t.Fatalf("expected default target days 66, got %d", habit.TargetDays)
	}
	if habit.Level != 1 {
		t.Fatalf("expected level 1, got %d", habit.Level)
	}
	if !habit.IsActive {
		t.Fatal("expected habit to be active")
	}
}

func TestHabitSetCompletionBuildsStreak(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	habit, err := svc.Create(1, HabitInput{Title: "晨跑"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	for offset := 2; offset >= 0; offset-- {
		if _, err := svc.SetCompletion(habit.ID, 1, now.AddDate(0, 0, -offset), true); err != nil {
			t.Fatalf("SetCompletion returned error: %v", err)
		}
	}

	updated, err := svc.Get(habit.ID, 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if updated.CurrentStreak != 3 {
		t.Fatalf("expected streak 3, got %d", updated.CurrentStreak)
	}
	if updated.LongestStreak != 3 {
		t.Fatalf("expected longest streak 3, got %d", updated.LongestStreak)
	}
	if updated.Level != 1 {
		t.Fatalf("expected level 1 below forming threshold, got %d", updated.Level)
	}
}

func TestHabitStreakAnchorsOnYesterday(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	habit, err := svc.Create(1, HabitInput{Title: "读外刊"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 22, 0, 0, 0, time.Local)
	// 昨天和前天打卡，今天尚未打卡：连胜仍然有效
	for offset := 2; offset >= 1; offset-- {
		if _, err := svc.SetCompletion(habit.ID, 1, now.AddDate(0, 0, -offset), true); err != nil {
			t.Fatalf("SetCompletion returned error: %v", err)
		}
	}

	if err := svc.RecomputeStreak(habit.ID, now); err != nil {
		t.Fatalf("RecomputeStreak returned error: %v", err)
	}

	updated, _ := svc.Get(habit.ID, 1)
	if updated.CurrentStreak != 2 {
		t.Fatalf("expected streak 2 anchored on yesterday, got %d", updated.CurrentStreak)
	}
}

func TestHabitStreakZeroAfterGap(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	habit, err := svc.Create(1, HabitInput{Title: "背单词"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	// 最近一次打卡在前天：今天与昨天都没有记录，视为断签
	if _, err := svc.SetCompletion(habit.ID, 1, now.AddDate(0, 0, -2), true); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}

	if err := svc.RecomputeStreak(habit.ID, now); err != nil {
		t.Fatalf("RecomputeStreak returned error: %v", err)
	}

	updated, _ := svc.Get(habit.ID, 1)
	if updated.CurrentStreak != 0 {
		t.Fatalf("expected streak 0 after gap, got %d", updated.CurrentStreak)
	}
	if updated.Level != 1 {
		t.Fatalf("expected level reset to 1, got %d", updated.Level)
	}
}

func TestHabitUncheckTodayShrinksStreak(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	habit, err := svc.Create(1, HabitInput{Title: "拉伸"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)
	for offset := 1; offset >= 0; offset-- {
		if _, err := svc.SetCompletion(habit.ID, 1, now.AddDate(0, 0, -offset), true); err != nil {
			t.Fatalf("SetCompletion returned error: %v", err)
		}
	}

	updated, err := svc.SetCompletion(habit.ID, 1, now, false)
	if err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	if updated.CurrentStreak != 1 {
		t.Fatalf("expected streak 1 after uncheck, got %d", updated.CurrentStreak)
	}
	if updated.LongestStreak != 2 {
		t.Fatalf("expected longest streak to stay 2, got %d", updated.LongestStreak)
	}
}

func TestHabitLevelThresholds(t *testing.T) {
	cases := []struct {
		streak int
		level  int
		name   string
	}{
		{0, 1, "Iniciando"},
		{6, 1, "Iniciando"},
		{7, 2, "Formando"},
		{20, 2, "Formando"},
		{21, 3, "Consolidando"},
		{65, 3, "Consolidando"},
		{66, 4, "Mestre"},
		{120, 4, "Mestre"},
	}

	for _, tc := range cases {
		if got := LevelForStreak(tc.streak); got != tc.level {
			t.Errorf("LevelForStreak(%d) = %d, want %d", tc.streak, got, tc.level)
		}
		if got := LevelName(LevelForStreak(tc.streak)); got != tc.name {
			t.Errorf("LevelName for streak %d = %s, want %s", tc.streak, got, tc.name)
		}
	}
}

func TestHabitLevelUpgradesAtForming(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	habit, err := svc.Create(1, HabitInput{Title: "写日记"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 8, 0, 0, 0, time.Local)
	for offset := 6; offset >= 0; offset-- {
		if _, err := svc.SetCompletion(habit.ID, 1, now.AddDate(0, 0, -offset), true); err != nil {
			t.Fatalf("SetCompletion returned error: %v", err)
		}
	}

	updated, _ := svc.Get(habit.ID, 1)
	if updated.CurrentStreak != 7 {
		t.Fatalf("expected streak 7, got %d", updated.CurrentStreak)
	}
	if updated.Level != 2 {
		t.Fatalf("expected level 2 at forming threshold, got %d", updated.Level)
	}
}

func TestSweepBrokenResetsMissedHabits(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	now := time.Date(2026, 8, 30, 0, 5, 0, 0, time.Local)
	yesterday := normalizeToDate(now).AddDate(0, 0, -1)

	kept, err := svc.Create(1, HabitInput{Title: "有打卡"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	broken, err := svc.Create(1, HabitInput{Title: "漏打卡"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := gdb.Create(&db.HabitLog{HabitID: kept.ID, UserID: 1, LogDate: yesterday, Completed: true}).Error; err != nil {
		t.Fatalf("failed to seed log: %v", err)
	}
	for _, habit := range []*db.Habit{kept, broken} {
		if err := gdb.Model(&db.Habit{}).Where("id = ?", habit.ID).
			Updates(map[string]interface{}{"current_streak": 10, "level": 2}).Error; err != nil {
			t.Fatalf("failed to seed streak: %v", err)
		}
	}

	if err := svc.SweepBroken(1, now); err != nil {
		t.Fatalf("SweepBroken returned error: %v", err)
	}

	keptAfter, _ := svc.Get(kept.ID, 1)
	if keptAfter.CurrentStreak != 10 || keptAfter.Level != 2 {
		t.Fatalf("expected kept habit untouched, got streak %d level %d", keptAfter.CurrentStreak, keptAfter.Level)
	}

	brokenAfter, _ := svc.Get(broken.ID, 1)
	if brokenAfter.CurrentStreak != 0 || brokenAfter.Level != 1 {
		t.Fatalf("expected broken habit reset, got streak %d level %d", brokenAfter.CurrentStreak, brokenAfter.Level)
	}
}

func TestHabitValidateInput(t *testing.T) {
	gdb := setupHabitTestDB(t)
	svc := NewHabitService(gdb)

	if _, err := svc.Create(1, HabitInput{Title: "  "}); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := svc.Create(1, HabitInput{Title: "x", FrequencyPerWeek: 8}); err == nil {
		t.Fatal("expected error for frequency above 7")
	}
	if _, err := svc.Create(1, HabitInput{Title: "x", ReminderTime: "25:99"}); err == nil {
		t.Fatal("expected error for invalid reminder time")
	}
}
