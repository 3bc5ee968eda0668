package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 整日饮食状态的取值
const (
	DietStatusClean   = "clean"
	DietStatusPartial = "partial"
	DietStatusFree    = "free"
)

var (
	// ErrDietInvalidStatus 在整日状态取值非法时返回
	ErrDietInvalidStatus = errors.New("invalid diet day status")
	// ErrDietInvalidInput 在饮食记录输入不完整时返回
	ErrDietInvalidInput = errors.New("invalid diet log input")
)

// DietService 负责饮食记录与整日状态
// 整日状态区分"未标记"与显式 free：两者得分相同但展示不同
type DietService struct {
	db *gorm.DB
}

// NewDietService 构造 DietService
func NewDietService(gdb *gorm.DB) *DietService {
	return &DietService{db: gdb}
}

// DietSummary 汇总当日饮食情况
// HasStatus 为 false 时 Status 为空串，表示整日状态尚未标记
type DietSummary struct {
	Status      string
	HasStatus   bool
	MealsLogged int
	Logs        []db.DietLog
}

// Today 返回当日饮食记录与整日状态
func (s *DietService) Today(userID uint, now time.Time) (*DietSummary, error) {
	today := normalizeToDate(now)

	var logs []db.DietLog
	if err := s.db.Where("user_id = ? AND date = ?", userID, today).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list diet logs: %w", err)
	}

	summary := &DietSummary{MealsLogged: len(logs), Logs: logs}

	var status db.DietDailyStatus
	err := s.db.Where("user_id = ? AND date = ?", userID, today).First(&status).Error
	switch {
	case err == nil:
		summary.Status = status.Status
		summary.HasStatus = true
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 未标记是合法的缺省态
	default:
		return nil, fmt.Errorf("load diet status: %w", err)
	}

	return summary, nil
}

// AddMeal 记录一餐饮食
func (s *DietService) AddMeal(userID uint, description string, isOnDiet bool, now time.Time) (*db.DietLog, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: description is required", ErrDietInvalidInput)
	}

	log := db.DietLog{
		UserID:      userID,
		Date:        normalizeToDate(now),
		Description: trimmed,
		IsOnDiet:    isOnDiet,
	}
	if err := s.db.Create(&log).Error; err != nil {
		return nil, fmt.Errorf("create diet log: %w", err)
	}
	return &log, nil
}

// DeleteMeal 删除一餐记录
func (s *DietService) DeleteMeal(id, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&db.DietLog{}, id).Error; err != nil {
		return fmt.Errorf("delete diet log: %w", err)
	}
	return nil
}

// SetDayStatus 标记整日饮食状态，同日重复标记按更新处理
func (s *DietService) SetDayStatus(userID uint, status string, now time.Time) (*db.DietDailyStatus, error) {
	normalized := strings.TrimSpace(strings.ToLower(status))
	if normalized != DietStatusClean && normalized != DietStatusPartial && normalized != DietStatusFree {
		return nil, fmt.Errorf("%w: %s", ErrDietInvalidStatus, status)
	}

	today := normalizeToDate(now)
	record := db.DietDailyStatus{
		UserID: userID,
		Date:   today,
		Status: normalized,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert diet status: %w", err)
	}

	if err := s.db.Where("user_id = ? AND date = ?", userID, today).First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload diet status: %w", err)
	}
	return &record, nil
}
