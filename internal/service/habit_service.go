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

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInvalidInput 在习惯配置异常时返回
	ErrHabitInvalidInput = errors.New("invalid habit input")
)

// 等级阈值：连续 7 天进入"成形"，21 天进入"巩固"，66 天视为习惯养成
const (
	levelFormingStreak       = 7
	levelConsolidatingStreak = 21
	levelMasterStreak        = 66
)

// LevelForStreak 由连胜天数派生习惯等级（1-4），对连胜单调不减
func LevelForStreak(streak int) int {
	switch {
	case streak >= levelMasterStreak:
		return 4
	case streak >= levelConsolidatingStreak:
		return 3
	case streak >= levelFormingStreak:
		return 2
	default:
		return 1
	}
}

// LevelName 返回等级的展示名称（沿用产品侧的葡语文案）
func LevelName(level int) string {
	switch level {
	case 4:
		return "Mestre"
	case 3:
		return "Consolidando"
	case 2:
		return "Formando"
	default:
		return "Iniciando"
	}
}

// HabitService 负责习惯的增删改查、按日打卡与连胜维护
// CurrentStreak/LongestStreak/Level 只在这里更新，是打卡历史的纯函数
type HabitService struct {
	db *gorm.DB
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// HabitInput 定义创建/更新习惯时可配置字段
type HabitInput struct {
	Title            string
	Description      string
	FrequencyPerWeek int
	ReminderTime     string
	TargetDays       int
	IsActive         *bool
}

// List 返回习惯集合，includeInactive 为 false 时只含激活习惯
func (s *HabitService) List(userID uint, includeInactive bool) ([]db.Habit, error) {
	query := s.db.Where("user_id = ?", userID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var habits []db.Habit
	if err := query.Order("created_at ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id, userID uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.Where("user_id = ?", userID).First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// Create 新建习惯，未填写的频率与目标天数回退默认值
func (s *HabitService) Create(userID uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(&input); err != nil {
		return nil, err
	}

	habit := db.Habit{
		UserID:           userID,
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		FrequencyPerWeek: input.FrequencyPerWeek,
		ReminderTime:     strings.TrimSpace(input.ReminderTime),
		TargetDays:       input.TargetDays,
		Level:            1,
		IsActive:         true,
	}
	if input.IsActive != nil {
		habit.IsActive = *input.IsActive
	}

	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Update 更新习惯的可配置字段，进度字段不受影响
func (s *HabitService) Update(id, userID uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(&input); err != nil {
		return nil, err
	}

	existing, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Description = strings.TrimSpace(input.Description)
	existing.FrequencyPerWeek = input.FrequencyPerWeek
	existing.ReminderTime = strings.TrimSpace(input.ReminderTime)
	existing.TargetDays = input.TargetDays
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return existing, nil
}

// Delete 删除习惯及其打卡记录（外键级联）
func (s *HabitService) Delete(id, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&db.Habit{}, id).Error; err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// SetCompletion 按日打卡或取消打卡，随后无条件重算连胜：
// 取消今天的打卡同样可能缩短或清零连胜
func (s *HabitService) SetCompletion(habitID, userID uint, now time.Time, completed bool) (*db.Habit, error) {
	habit, err := s.Get(habitID, userID)
	if err != nil {
		return nil, err
	}

	logDate := normalizeToDate(now)

	if completed {
		record := db.HabitLog{
			HabitID:   habit.ID,
			UserID:    userID,
			LogDate:   logDate,
			Completed: true,
		}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return nil, fmt.Errorf("upsert habit log: %w", err)
		}
	} else {
		// 取消打卡保留行，仅翻转状态；不存在时为无操作
		if err := s.db.Model(&db.HabitLog{}).
			Where("habit_id = ? AND log_date = ?", habit.ID, logDate).
			Update("completed", false).Error; err != nil {
			return nil, fmt.Errorf("unset habit log: %w", err)
		}
	}

	if err := s.RecomputeStreak(habit.ID, now); err != nil {
		return nil, err
	}

	return s.Get(habitID, userID)
}

// RecomputeStreak 把连胜字段重算为打卡历史的纯函数：
// 今天或昨天均未打卡视为断签；否则以其中较近的一天为锚点向前回数
func (s *HabitService) RecomputeStreak(habitID uint, now time.Time) error {
	var logs []db.HabitLog
	if err := s.db.Where("habit_id = ? AND completed = ?", habitID, true).
		Order("log_date DESC").
		Find(&logs).Error; err != nil {
		return fmt.Errorf("list habit logs: %w", err)
	}

	if len(logs) == 0 {
		return s.writeStreak(habitID, 0)
	}

	completedDates := make(map[string]struct{}, len(logs))
	for _, log := range logs {
		completedDates[log.LogDate.Format(dateLayout)] = struct{}{}
	}

	today := normalizeToDate(now)
	yesterday := today.AddDate(0, 0, -1)

	_, todayDone := completedDates[today.Format(dateLayout)]
	_, yesterdayDone := completedDates[yesterday.Format(dateLayout)]
	if !todayDone && !yesterdayDone {
		return s.writeStreak(habitID, 0)
	}

	anchor := today
	if !todayDone {
		anchor = yesterday
	}

	streak := 0
	for cursor := anchor; ; cursor = cursor.AddDate(0, 0, -1) {
		if _, ok := completedDates[cursor.Format(dateLayout)]; !ok {
			break
		}
		streak++
	}

	return s.writeStreak(habitID, streak)
}

// writeStreak 落库连胜与派生等级，LongestStreak 只增不减
func (s *HabitService) writeStreak(habitID uint, streak int) error {
	var habit db.Habit
	if err := s.db.First(&habit, habitID).Error; err != nil {
		return fmt.Errorf("load habit for streak: %w", err)
	}

	habit.CurrentStreak = streak
	if streak > habit.LongestStreak {
		habit.LongestStreak = streak
	}
	habit.Level = LevelForStreak(streak)

	if err := s.db.Save(&habit).Error; err != nil {
		return fmt.Errorf("save habit streak: %w", err)
	}
	return nil
}

// SweepBroken 断签清理：激活且连胜大于零的习惯若昨天没有打卡，直接清零
// 只检测断签不做回数，比全量重算便宜，由每日结算调用
func (s *HabitService) SweepBroken(userID uint, now time.Time) error {
	var habits []db.Habit
	if err := s.db.Where("user_id = ? AND is_active = ? AND current_streak > 0", userID, true).
		Find(&habits).Error; err != nil {
		return fmt.Errorf("list habits for sweep: %w", err)
	}

	yesterday := normalizeToDate(now).AddDate(0, 0, -1)

	for _, habit := range habits {
		var count int64
		if err := s.db.Model(&db.HabitLog{}).
			Where("habit_id = ? AND log_date = ? AND completed = ?", habit.ID, yesterday, true).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check yesterday log: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := s.db.Model(&db.Habit{}).
			Where("id = ?", habit.ID).
			Updates(map[string]interface{}{"current_streak": 0, "level": 1}).Error; err != nil {
			return fmt.Errorf("reset broken streak: %w", err)
		}
	}

	return nil
}

// TodayLogs 返回当日全部打卡记录，用于列表页标记完成状态
func (s *HabitService) TodayLogs(userID uint, now time.Time) ([]db.HabitLog, error) {
	today := normalizeToDate(now)

	var logs []db.HabitLog
	if err := s.db.Where("user_id = ? AND log_date = ?", userID, today).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list today habit logs: %w", err)
	}
	return logs, nil
}

// WeekLogs 返回指定习惯最近 7 天（含今天）的打卡记录
func (s *HabitService) WeekLogs(habitID, userID uint, now time.Time) ([]db.HabitLog, error) {
	if _, err := s.Get(habitID, userID); err != nil {
		return nil, err
	}

	today := normalizeToDate(now)
	weekAgo := today.AddDate(0, 0, -6)

	var logs []db.HabitLog
	if err := s.db.Where("habit_id = ? AND log_date BETWEEN ? AND ?", habitID, weekAgo, today).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list week habit logs: %w", err)
	}
	return logs, nil
}

func validateHabitInput(input *HabitInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrHabitInvalidInput)
	}

	if input.FrequencyPerWeek == 0 {
		input.FrequencyPerWeek = 7
	}
	if input.FrequencyPerWeek < 1 || input.FrequencyPerWeek > 7 {
		return fmt.Errorf("%w: frequency must be within 1-7", ErrHabitInvalidInput)
	}

	if input.TargetDays == 0 {
		input.TargetDays = levelMasterStreak
	}
	if input.TargetDays < 1 {
		return fmt.Errorf("%w: target days must be positive", ErrHabitInvalidInput)
	}

	if trimmed := strings.TrimSpace(input.ReminderTime); trimmed != "" {
		if _, err := time.Parse("15:04", trimmed); err != nil {
			return fmt.Errorf("%w: invalid reminder time %q", ErrHabitInvalidInput, input.ReminderTime)
		}
	}

	return nil
}
