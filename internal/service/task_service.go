package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
	"slices"
)

var (
	// ErrTaskNotFound 在指定任务不存在时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskInvalidInput 在任务输入不完整时返回
	ErrTaskInvalidInput = errors.New("invalid task input")
)

// TaskService 负责单日任务的增删改查与当日汇总
// 任务不跨天滚动：每天的列表只由当天的记录构成
type TaskService struct {
	db *gorm.DB
}

// NewTaskService 构造 TaskService
func NewTaskService(gdb *gorm.DB) *TaskService {
	return &TaskService{db: gdb}
}

// TodaySummary 汇总当日任务完成情况
type TodaySummary struct {
	Total      int
	Completed  int
	Percentage int
	Tasks      []db.Task
}

// Today 返回当日任务列表及完成度
// 排序规则：有预定时间的在前按时间升序，其余按展示顺序、创建时间
func (s *TaskService) Today(userID uint, now time.Time) (*TodaySummary, error) {
	today := normalizeToDate(now)

	var tasks []db.Task
	if err := s.db.Where("user_id = ? AND date = ?", userID, today).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list today tasks: %w", err)
	}

	slices.SortStableFunc(tasks, func(a, b db.Task) int {
		switch {
		case a.ScheduledTime != "" && b.ScheduledTime != "":
			if diff := strings.Compare(a.ScheduledTime, b.ScheduledTime); diff != 0 {
				return diff
			}
		case a.ScheduledTime != "":
			return -1
		case b.ScheduledTime != "":
			return 1
		}
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex - b.OrderIndex
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	summary := &TodaySummary{Total: len(tasks), Tasks: tasks}
	for _, task := range tasks {
		if task.IsCompleted {
			summary.Completed++
		}
	}
	if summary.Total > 0 {
		summary.Percentage = int(math.Round(float64(summary.Completed) / float64(summary.Total) * 100))
	}

	return summary, nil
}

// Add 为今天创建一条手动任务
func (s *TaskService) Add(userID uint, title string, now time.Time) (*db.Task, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: title is required", ErrTaskInvalidInput)
	}

	task := db.Task{
		UserID: userID,
		Title:  trimmed,
		Date:   normalizeToDate(now),
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Toggle 切换任务完成状态
func (s *TaskService) Toggle(id, userID uint, isCompleted bool) (*db.Task, error) {
	var task db.Task
	if err := s.db.Where("user_id = ?", userID).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	task.IsCompleted = isCompleted
	if err := s.db.Save(&task).Error; err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}
	return &task, nil
}

// Delete 删除任务
func (s *TaskService) Delete(id, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&db.Task{}, id).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
