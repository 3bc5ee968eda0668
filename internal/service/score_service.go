package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
)

// 六个模块的权重，合计 100
const (
	weightHydration = 15
	weightTasks     = 25
	weightHabits    = 15
	weightGym       = 15
	weightDiet      = 15
	weightReading   = 15

	dietScorePartial = 8

	readingDailyGoalPages = 10
)

// 分项连胜的达标线（沿用产品侧的阈值）
const (
	streakHydrationML    = 2000
	streakTaskRatio      = 0.8
	streakReadingPages   = 5
	streakScanWindowDays = 365
)

// ScoreService 负责把六个模块的当日数据合成 0-100 的综合得分
// 得分是只读投影，按需计算，不落库
type ScoreService struct {
	db *gorm.DB
}

// NewScoreService 构造 ScoreService
func NewScoreService(gdb *gorm.DB) *ScoreService {
	return &ScoreService{db: gdb}
}

// DailyScore 是当日综合得分及各模块的分项贡献
// Streak 字段预留"连续高分天数"能力，算法待产品定义，目前恒为 0
type DailyScore struct {
	Score     int
	Streak    int
	Hydration int
	Tasks     int
	Habits    int
	Gym       int
	Diet      int
	Reading   int
}

// Today 计算当日综合得分
func (s *ScoreService) Today(userID uint, now time.Time) (*DailyScore, error) {
	today := normalizeToDate(now)
	score := &DailyScore{}

	// 饮水（15 分）：达到目标即满分，封顶
	goal := db.DefaultHydrationGoalML
	var profile db.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err == nil {
		if profile.HydrationGoalML > 0 {
			goal = profile.HydrationGoalML
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var totalML int64
	if err := s.db.Model(&db.HydrationLog{}).
		Where("user_id = ? AND date = ?", userID, today).
		Select("COALESCE(SUM(amount_ml), 0)").
		Scan(&totalML).Error; err != nil {
		return nil, fmt.Errorf("sum hydration: %w", err)
	}
	score.Hydration = min(weightHydration, roundRatio(float64(totalML), float64(goal), weightHydration))

	// 任务（25 分）：按完成比例给分，没有任务不给分
	var totalTasks, completedTasks int64
	if err := s.db.Model(&db.Task{}).
		Where("user_id = ? AND date = ?", userID, today).
		Count(&totalTasks).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	if totalTasks > 0 {
		if err := s.db.Model(&db.Task{}).
			Where("user_id = ? AND date = ? AND is_completed = ?", userID, today, true).
			Count(&completedTasks).Error; err != nil {
			return nil, fmt.Errorf("count completed tasks: %w", err)
		}
		score.Tasks = roundRatio(float64(completedTasks), float64(totalTasks), weightTasks)
	}

	// 习惯（15 分）：按激活习惯的当日打卡比例给分
	var activeHabits int64
	if err := s.db.Model(&db.Habit{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&activeHabits).Error; err != nil {
		return nil, fmt.Errorf("count habits: %w", err)
	}
	if activeHabits > 0 {
		var completedHabits int64
		if err := s.db.Model(&db.HabitLog{}).
			Joins("JOIN habits ON habits.id = habit_logs.habit_id").
			Where("habit_logs.user_id = ? AND habit_logs.log_date = ? AND habit_logs.completed = ?", userID, today, true).
			Where("habits.is_active = ? AND habits.deleted_at IS NULL", true).
			Count(&completedHabits).Error; err != nil {
			return nil, fmt.Errorf("count habit logs: %w", err)
		}
		score.Habits = min(weightHabits, roundRatio(float64(completedHabits), float64(activeHabits), weightHabits))
	}

	// 健身（15 分）：当日有打卡即满分
	var gymCount int64
	if err := s.db.Model(&db.GymSession{}).
		Where("user_id = ? AND date = ?", userID, today).
		Count(&gymCount).Error; err != nil {
		return nil, fmt.Errorf("count gym sessions: %w", err)
	}
	if gymCount > 0 {
		score.Gym = weightGym
	}

	// 饮食（15 分）：clean 满分，partial 折半取 8，free 或未标记为 0
	var dietStatus db.DietDailyStatus
	err := s.db.Where("user_id = ? AND date = ?", userID, today).First(&dietStatus).Error
	switch {
	case err == nil:
		switch dietStatus.Status {
		case DietStatusClean:
			score.Diet = weightDiet
		case DietStatusPartial:
			score.Diet = dietScorePartial
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 未标记视为 0 分
	default:
		return nil, fmt.Errorf("load diet status: %w", err)
	}

	// 阅读（15 分）：达到每日 10 页即满分
	var pagesRead int64
	if err := s.db.Model(&db.ReadingLog{}).
		Where("user_id = ? AND date = ?", userID, today).
		Select("COALESCE(SUM(pages_read), 0)").
		Scan(&pagesRead).Error; err != nil {
		return nil, fmt.Errorf("sum reading: %w", err)
	}
	if pagesRead >= readingDailyGoalPages {
		score.Reading = weightReading
	} else {
		score.Reading = roundRatio(float64(pagesRead), readingDailyGoalPages, weightReading)
	}

	score.Score = score.Hydration + score.Tasks + score.Habits + score.Gym + score.Diet + score.Reading
	return score, nil
}

// DomainStreaks 是各模块的连续达标天数，从昨天起向前统计
type DomainStreaks struct {
	Overall   int
	Hydration int
	Gym       int
	Tasks     int
	Reading   int
}

type dayTaskTally struct {
	total     int
	completed int
}

// Streaks 逐日回看最多一年，统计各模块的连续达标天数
// 达标线：饮水 2000ml、健身有打卡、任务完成率 80%、阅读 5 页
func (s *ScoreService) Streaks(userID uint, now time.Time) (*DomainStreaks, error) {
	today := normalizeToDate(now)
	windowStart := today.AddDate(0, 0, -streakScanWindowDays)

	hydrationByDay := make(map[string]int)
	var hydrationLogs []db.HydrationLog
	if err := s.db.Where("user_id = ? AND date >= ?", userID, windowStart).
		Find(&hydrationLogs).Error; err != nil {
		return nil, fmt.Errorf("list hydration logs: %w", err)
	}
	for _, log := range hydrationLogs {
		hydrationByDay[log.Date.Format(dateLayout)] += log.AmountML
	}

	gymDays := make(map[string]struct{})
	var gymSessions []db.GymSession
	if err := s.db.Where("user_id = ? AND date >= ?", userID, windowStart).
		Find(&gymSessions).Error; err != nil {
		return nil, fmt.Errorf("list gym sessions: %w", err)
	}
	for _, session := range gymSessions {
		gymDays[session.Date.Format(dateLayout)] = struct{}{}
	}

	tasksByDay := make(map[string]*dayTaskTally)
	var tasks []db.Task
	if err := s.db.Where("user_id = ? AND date >= ?", userID, windowStart).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for _, task := range tasks {
		key := task.Date.Format(dateLayout)
		tally := tasksByDay[key]
		if tally == nil {
			tally = &dayTaskTally{}
			tasksByDay[key] = tally
		}
		tally.total++
		if task.IsCompleted {
			tally.completed++
		}
	}

	readingByDay := make(map[string]int)
	var readingLogs []db.ReadingLog
	if err := s.db.Where("user_id = ? AND date >= ?", userID, windowStart).
		Find(&readingLogs).Error; err != nil {
		return nil, fmt.Errorf("list reading logs: %w", err)
	}
	for _, log := range readingLogs {
		readingByDay[log.Date.Format(dateLayout)] += log.PagesRead
	}

	streaks := &DomainStreaks{}
	for i := 1; i <= streakScanWindowDays; i++ {
		key := today.AddDate(0, 0, -i).Format(dateLayout)

		if hydrationByDay[key] >= streakHydrationML && streaks.Hydration == i-1 {
			streaks.Hydration = i
		}
		if _, ok := gymDays[key]; ok && streaks.Gym == i-1 {
			streaks.Gym = i
		}
		if tally := tasksByDay[key]; tally != nil && tally.total > 0 &&
			float64(tally.completed) >= float64(tally.total)*streakTaskRatio && streaks.Tasks == i-1 {
			streaks.Tasks = i
		}
		if readingByDay[key] >= streakReadingPages && streaks.Reading == i-1 {
			streaks.Reading = i
		}

		// 所有模块都已断档时提前结束扫描
		if streaks.Hydration != i && streaks.Gym != i && streaks.Tasks != i && streaks.Reading != i {
			break
		}
	}

	streaks.Overall = max(max(streaks.Hydration, streaks.Gym), max(streaks.Tasks, streaks.Reading))
	return streaks, nil
}

// roundRatio 把 value/base 的比例映射到权重分值并四舍五入
func roundRatio(value, base float64, weight int) int {
	if base <= 0 {
		return 0
	}
	return int(math.Round(value / base * float64(weight)))
}
