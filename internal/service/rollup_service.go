package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
)

// RollupService 是一次性的每日结算闸门：
// 每个用户每天首次触发时生成当日例行任务并清理断签，
// 之后的触发只走幂等的修补路径。标记保存在服务端档案的
// LastRollupDate 上，而不是依赖客户端状态
type RollupService struct {
	db       *gorm.DB
	routines *RoutineService
	habits   *HabitService
}

// NewRollupService 构造 RollupService
func NewRollupService(gdb *gorm.DB, routines *RoutineService, habits *HabitService) *RollupService {
	return &RollupService{db: gdb, routines: routines, habits: habits}
}

// RunIfPending 执行每日结算；返回是否执行了完整结算
// 任一步骤失败时不写标记，下次触发整体重试；底层操作均幂等或只增
func (s *RollupService) RunIfPending(userID uint, now time.Time) (bool, error) {
	today := normalizeToDate(now)

	var profile db.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("load profile: %w", err)
		}
		profile = db.UserProfile{UserID: userID, HydrationGoalML: db.DefaultHydrationGoalML}
		if err := s.db.Create(&profile).Error; err != nil {
			return false, fmt.Errorf("create profile: %w", err)
		}
	}

	if profile.LastRollupDate != nil && sameDay(*profile.LastRollupDate, today) {
		// 今天已结算过：只跑廉价的修补路径
		if _, err := s.routines.BackfillToday(userID, now); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.routines.MaterializeToday(userID, now); err != nil {
		return false, err
	}
	if err := s.habits.SweepBroken(userID, now); err != nil {
		return false, err
	}

	if err := s.db.Model(&db.UserProfile{}).
		Where("id = ?", profile.ID).
		Update("last_rollup_date", today).Error; err != nil {
		return false, fmt.Errorf("write rollup marker: %w", err)
	}

	return true, nil
}

// RunAll 为全部用户执行每日结算，单个用户失败不阻断其他用户
func (s *RollupService) RunAll(now time.Time) error {
	var users []db.User
	if err := s.db.Find(&users).Error; err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var errs []error
	for _, user := range users {
		if _, err := s.RunIfPending(user.ID, now); err != nil {
			errs = append(errs, fmt.Errorf("rollup user %d: %w", user.ID, err))
		}
	}
	return errors.Join(errs...)
}
