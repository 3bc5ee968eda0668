package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrBookNotFound 在指定书籍不存在时返回
	ErrBookNotFound = errors.New("book not found")
	// ErrBookInvalidInput 在书籍配置异常时返回
	ErrBookInvalidInput = errors.New("invalid book input")
	// ErrReadingInvalidPages 在页数非正时返回
	ErrReadingInvalidPages = errors.New("pages read must be positive")
)

var bookStatuses = []string{"reading", "completed", "paused", "abandoned"}

// ReadingService 负责书籍与阅读日志
// 记录阅读与更新书籍进度在同一事务内提交，避免日志落库而页码滞后
type ReadingService struct {
	db *gorm.DB
}

// NewReadingService 构造 ReadingService
func NewReadingService(gdb *gorm.DB) *ReadingService {
	return &ReadingService{db: gdb}
}

// ReadingSummary 汇总当日阅读情况
type ReadingSummary struct {
	PagesRead   int
	CurrentBook string
	Logs        []db.ReadingLog
}

// BookInput 定义创建书籍时可配置字段
type BookInput struct {
	Title      string
	Author     string
	TotalPages int
}

// Today 返回当日阅读页数、在读书目与日志
func (s *ReadingService) Today(userID uint, now time.Time) (*ReadingSummary, error) {
	today := normalizeToDate(now)

	var logs []db.ReadingLog
	if err := s.db.Preload("Book").
		Where("user_id = ? AND date = ?", userID, today).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list reading logs: %w", err)
	}

	summary := &ReadingSummary{Logs: logs}
	for _, log := range logs {
		summary.PagesRead += log.PagesRead
	}

	var current db.Book
	err := s.db.Where("user_id = ? AND status = ?", userID, "reading").
		Order("created_at DESC").
		First(&current).Error
	switch {
	case err == nil:
		summary.CurrentBook = current.Title
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 没有在读书目是合法状态
	default:
		return nil, fmt.Errorf("load current book: %w", err)
	}

	return summary, nil
}

// Books 返回用户的全部书籍，按创建时间倒序
func (s *ReadingService) Books(userID uint) ([]db.Book, error) {
	var books []db.Book
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// AddBook 新建书籍，初始状态为在读
func (s *ReadingService) AddBook(userID uint, input BookInput) (*db.Book, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrBookInvalidInput)
	}
	if input.TotalPages <= 0 {
		return nil, fmt.Errorf("%w: total pages must be positive", ErrBookInvalidInput)
	}

	book := db.Book{
		UserID:     userID,
		Title:      strings.TrimSpace(input.Title),
		Author:     strings.TrimSpace(input.Author),
		TotalPages: input.TotalPages,
		Status:     "reading",
	}
	if err := s.db.Create(&book).Error; err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &book, nil
}

// UpdateBookStatus 更新书籍状态
func (s *ReadingService) UpdateBookStatus(id, userID uint, status string) (*db.Book, error) {
	normalized := strings.TrimSpace(strings.ToLower(status))
	if !isValidBookStatus(normalized) {
		return nil, fmt.Errorf("%w: unsupported status %s", ErrBookInvalidInput, status)
	}

	var book db.Book
	if err := s.db.Where("user_id = ?", userID).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}

	book.Status = normalized
	if err := s.db.Save(&book).Error; err != nil {
		return nil, fmt.Errorf("update book status: %w", err)
	}
	return &book, nil
}

// LogReading 记录一次阅读并联动书籍进度：
// 页码封顶到总页数，读完自动置为 completed，两个写入同一事务提交
func (s *ReadingService) LogReading(userID, bookID uint, pagesRead int, now time.Time) (*db.ReadingLog, error) {
	if pagesRead <= 0 {
		return nil, ErrReadingInvalidPages
	}

	var log db.ReadingLog
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var book db.Book
		if err := tx.Where("user_id = ?", userID).First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("find book: %w", err)
		}

		log = db.ReadingLog{
			UserID:    userID,
			BookID:    book.ID,
			PagesRead: pagesRead,
			Date:      normalizeToDate(now),
		}
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("create reading log: %w", err)
		}

		newPage := book.CurrentPage + pagesRead
		if newPage > book.TotalPages {
			newPage = book.TotalPages
		}
		book.CurrentPage = newPage
		if newPage >= book.TotalPages {
			book.Status = "completed"
		}

		if err := tx.Save(&book).Error; err != nil {
			return fmt.Errorf("update book progress: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &log, nil
}

func isValidBookStatus(status string) bool {
	for _, valid := range bookStatuses {
		if status == valid {
			return true
		}
	}
	return false
}
