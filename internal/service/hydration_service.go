package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
)

// ErrHydrationInvalidAmount 在饮水量非正时返回
var ErrHydrationInvalidAmount = errors.New("hydration amount must be positive")

// HydrationService 负责饮水记录与按日汇总
type HydrationService struct {
	db       *gorm.DB
	profiles *ProfileService
}

// NewHydrationService 构造 HydrationService
func NewHydrationService(gdb *gorm.DB, profiles *ProfileService) *HydrationService {
	return &HydrationService{db: gdb, profiles: profiles}
}

// HydrationSummary 汇总当日饮水进度
type HydrationSummary struct {
	TotalML    int
	GoalML     int
	Percentage int
	Logs       []db.HydrationLog
}

// DayTotal 是单日饮水总量，用于最近一周的图表数据
type DayTotal struct {
	Date    string
	TotalML int
}

// Today 返回当日饮水总量、目标与进度，进度封顶 100
func (s *HydrationService) Today(userID uint, now time.Time) (*HydrationSummary, error) {
	today := normalizeToDate(now)

	profile, err := s.profiles.Get(userID)
	if err != nil {
		return nil, err
	}
	goal := profile.HydrationGoalML
	if goal <= 0 {
		goal = db.DefaultHydrationGoalML
	}

	var logs []db.HydrationLog
	if err := s.db.Where("user_id = ? AND date = ?", userID, today).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list hydration logs: %w", err)
	}

	summary := &HydrationSummary{GoalML: goal, Logs: logs}
	for _, log := range logs {
		summary.TotalML += log.AmountML
	}
	summary.Percentage = int(math.Min(100, math.Round(float64(summary.TotalML)/float64(goal)*100)))

	return summary, nil
}

// Week 返回最近 7 天（含今天）的按日饮水总量，按日期升序
func (s *HydrationService) Week(userID uint, now time.Time) ([]DayTotal, error) {
	today := normalizeToDate(now)
	weekAgo := today.AddDate(0, 0, -6)

	var logs []db.HydrationLog
	if err := s.db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, weekAgo, today).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list week hydration logs: %w", err)
	}

	totals := make(map[string]int, 7)
	for _, log := range logs {
		totals[log.Date.Format(dateLayout)] += log.AmountML
	}

	week := make([]DayTotal, 0, 7)
	for i := 6; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(dateLayout)
		week = append(week, DayTotal{Date: key, TotalML: totals[key]})
	}
	return week, nil
}

// Add 记录一次饮水
func (s *HydrationService) Add(userID uint, amountML int, now time.Time) (*db.HydrationLog, error) {
	if amountML <= 0 {
		return nil, ErrHydrationInvalidAmount
	}

	log := db.HydrationLog{
		UserID:   userID,
		AmountML: amountML,
		Date:     normalizeToDate(now),
	}
	if err := s.db.Create(&log).Error; err != nil {
		return nil, fmt.Errorf("create hydration log: %w", err)
	}
	return &log, nil
}

// Delete 删除一条饮水记录
func (s *HydrationService) Delete(id, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&db.HydrationLog{}, id).Error; err != nil {
		return fmt.Errorf("delete hydration log: %w", err)
	}
	return nil
}
