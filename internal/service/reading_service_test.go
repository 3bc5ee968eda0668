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

func setupReadingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:reading_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Book{}, &db.ReadingLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		gdb.Exec("DELETE FROM reading_logs")
		gdb.Exec("DELETE FROM books")
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func TestLogReadingAdvancesBook(t *testing.T) {
	gdb := setupReadingTestDB(t)
	svc := NewReadingService(gdb)

	book, err := svc.AddBook(1, BookInput{Title: "深入理解计算机系统", TotalPages: 700})
	if err != nil {
		t.Fatalf("AddBook returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 22, 0, 0, 0, time.Local)
	log, err := svc.LogReading(1, book.ID, 30, now)
	if err != nil {
		t.Fatalf("LogReading returned error: %v", err)
	}
	if log.PagesRead != 30 {
		t.Fatalf("pages read = %d, want 30", log.PagesRead)
	}

	var reloaded db.Book
	if err := gdb.First(&reloaded, book.ID).Error; err != nil {
		t.Fatalf("failed to reload book: %v", err)
	}
	if reloaded.CurrentPage != 30 {
		t.Fatalf("current page = %d, want 30", reloaded.CurrentPage)
	}
	if reloaded.Status != "reading" {
		t.Fatalf("status = %s, want reading", reloaded.Status)
	}
}

func TestLogReadingCapsAtTotalAndCompletes(t *testing.T) {
	gdb := setupReadingTestDB(t)
	svc := NewReadingService(gdb)

	book, err := svc.AddBook(1, BookInput{Title: "小书", TotalPages: 100})
	if err != nil {
		t.Fatalf("AddBook returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 22, 0, 0, 0, time.Local)
	if _, err := svc.LogReading(1, book.ID, 90, now); err != nil {
		t.Fatalf("LogReading returned error: %v", err)
	}
	// 超读部分封顶到总页数，同时置为已读完
	if _, err := svc.LogReading(1, book.ID, 50, now); err != nil {
		t.Fatalf("LogReading returned error: %v", err)
	}

	var reloaded db.Book
	gdb.First(&reloaded, book.ID)
	if reloaded.CurrentPage != 100 {
		t.Fatalf("current page = %d, want capped 100", reloaded.CurrentPage)
	}
	if reloaded.Status != "completed" {
		t.Fatalf("status = %s, want completed", reloaded.Status)
	}
}

func TestLogReadingValidation(t *testing.T) {
	gdb := setupReadingTestDB(t)
	svc := NewReadingService(gdb)
	now := time.Now()

	if _, err := svc.LogReading(1, 1, 0, now); !errors.Is(err, ErrReadingInvalidPages) {
		t.Fatalf("expected ErrReadingInvalidPages, got %v", err)
	}
	if _, err := svc.LogReading(1, 9999, 10, now); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}

	// 找不到书时事务回滚，不应残留日志
	var count int64
	gdb.Model(&db.ReadingLog{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no reading logs after failed attempts, got %d", count)
	}
}

func TestReadingTodaySummary(t *testing.T) {
	gdb := setupReadingTestDB(t)
	svc := NewReadingService(gdb)

	book, err := svc.AddBook(1, BookInput{Title: "在读的书", TotalPages: 300})
	if err != nil {
		t.Fatalf("AddBook returned error: %v", err)
	}

	now := time.Date(2026, 8, 30, 22, 0, 0, 0, time.Local)
	if _, err := svc.LogReading(1, book.ID, 8, now); err != nil {
		t.Fatalf("LogReading returned error: %v", err)
	}
	if _, err := svc.LogReading(1, book.ID, 4, now); err != nil {
		t.Fatalf("LogReading returned error: %v", err)
	}

	summary, err := svc.Today(1, now)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if summary.PagesRead != 12 {
		t.Fatalf("pages read = %d, want 12", summary.PagesRead)
	}
	if summary.CurrentBook != "在读的书" {
		t.Fatalf("current book = %q, want 在读的书", summary.CurrentBook)
	}
}

func TestUpdateBookStatus(t *testing.T) {
	gdb := setupReadingTestDB(t)
	svc := NewReadingService(gdb)

	book, err := svc.AddBook(1, BookInput{Title: "暂停的书", TotalPages: 200})
	if err != nil {
		t.Fatalf("AddBook returned error: %v", err)
	}

	updated, err := svc.UpdateBookStatus(book.ID, 1, "PAUSED")
	if err != nil {
		t.Fatalf("UpdateBookStatus returned error: %v", err)
	}
	if updated.Status != "paused" {
		t.Fatalf("status = %s, want paused", updated.Status)
	}

	if _, err := svc.UpdateBookStatus(book.ID, 1, "burned"); !errors.Is(err, ErrBookInvalidInput) {
		t.Fatalf("expected ErrBookInvalidInput, got %v", err)
	}
}
