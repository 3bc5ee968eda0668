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

// ErrGymInvalidWorkoutType 在训练类型不受支持时返回
var ErrGymInvalidWorkoutType = errors.New("invalid workout type")

var workoutTypes = []string{"strength", "cardio", "functional", "sports", "flexibility", "other"}

// GymService 负责训练打卡与统计
// 每天至多一条打卡记录：重复打卡按更新处理（幂等 upsert）
type GymService struct {
	db *gorm.DB
}

// NewGymService 构造 GymService
func NewGymService(gdb *gorm.DB) *GymService {
	return &GymService{db: gdb}
}

// GymCheckInInput 定义打卡时可配置字段
type GymCheckInInput struct {
	WorkoutType     string
	DurationMinutes int
	Notes           string
}

// GymStats 汇总最近一周/一月的打卡次数
type GymStats struct {
	WeekCount  int
	MonthCount int
}

// CheckIn 当日打卡；同日重复打卡覆盖训练类型、时长与备注
func (s *GymService) CheckIn(userID uint, input GymCheckInInput, now time.Time) (*db.GymSession, error) {
	workoutType := strings.TrimSpace(strings.ToLower(input.WorkoutType))
	if !isValidWorkoutType(workoutType) {
		return nil, fmt.Errorf("%w: %s", ErrGymInvalidWorkoutType, input.WorkoutType)
	}

	today := normalizeToDate(now)
	session := db.GymSession{
		UserID:          userID,
		Date:            today,
		WorkoutType:     workoutType,
		DurationMinutes: input.DurationMinutes,
		Notes:           strings.TrimSpace(input.Notes),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"workout_type", "duration_minutes", "notes", "updated_at"}),
	}).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("upsert gym session: %w", err)
	}

	if err := s.db.Where("user_id = ? AND date = ?", userID, today).First(&session).Error; err != nil {
		return nil, fmt.Errorf("reload gym session: %w", err)
	}
	return &session, nil
}

// Today 返回当日打卡记录；未打卡返回 nil，不视为错误
func (s *GymService) Today(userID uint, now time.Time) (*db.GymSession, error) {
	var session db.GymSession
	err := s.db.Where("user_id = ? AND date = ?", userID, normalizeToDate(now)).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load gym session: %w", err)
	}
	return &session, nil
}

// Stats 返回最近 7 天与 30 天的打卡次数
func (s *GymService) Stats(userID uint, now time.Time) (*GymStats, error) {
	today := normalizeToDate(now)
	weekStart := today.AddDate(0, 0, -7)
	monthStart := today.AddDate(0, 0, -30)

	var weekCount, monthCount int64
	if err := s.db.Model(&db.GymSession{}).
		Where("user_id = ? AND date >= ?", userID, weekStart).
		Count(&weekCount).Error; err != nil {
		return nil, fmt.Errorf("count week sessions: %w", err)
	}
	if err := s.db.Model(&db.GymSession{}).
		Where("user_id = ? AND date >= ?", userID, monthStart).
		Count(&monthCount).Error; err != nil {
		return nil, fmt.Errorf("count month sessions: %w", err)
	}

	return &GymStats{WeekCount: int(weekCount), MonthCount: int(monthCount)}, nil
}

// CancelToday 撤销当日打卡；没有记录时为无操作
func (s *GymService) CancelToday(userID uint, now time.Time) error {
	if err := s.db.Where("user_id = ? AND date = ?", userID, normalizeToDate(now)).
		Delete(&db.GymSession{}).Error; err != nil {
		return fmt.Errorf("cancel gym session: %w", err)
	}
	return nil
}

func isValidWorkoutType(workoutType string) bool {
	for _, valid := range workoutTypes {
		if workoutType == valid {
			return true
		}
	}
	return false
}
