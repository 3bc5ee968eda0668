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
	// ErrTemplateNotFound 在指定模板不存在时返回
	ErrTemplateNotFound = errors.New("routine template not found")
	// ErrTemplateInvalidInput 在模板配置异常时返回
	ErrTemplateInvalidInput = errors.New("invalid routine template input")
)

// RoutineService 负责例行任务模板的增删改查与按日生成
// 生成逻辑保证幂等：同一模板同一天至多生成一条任务，
// 由 (template_id, date) 唯一索引加 insert-or-ignore 兜底，
// 两个并发触发也不会产生重复
type RoutineService struct {
	db *gorm.DB
}

// NewRoutineService 构造 RoutineService
func NewRoutineService(gdb *gorm.DB) *RoutineService {
	return &RoutineService{db: gdb}
}

// TimeTypeFixed/TimeTypeFlexible 描述模板的时段类型
const (
	TimeTypeFixed    = "fixed"
	TimeTypeFlexible = "flexible"
)

// RoutineTemplateInput 定义创建/更新模板时可配置字段
type RoutineTemplateInput struct {
	Title      string
	DaysOfWeek []int
	TimeType   string
	StartTime  string
	EndTime    string
	Category   string
	IsActive   *bool
}

// List 返回用户的全部模板：有固定时段的在前按时间升序，其余按展示顺序
func (s *RoutineService) List(userID uint) ([]db.RoutineTemplate, error) {
	var templates []db.RoutineTemplate
	if err := s.db.Where("user_id = ?", userID).
		Order("CASE WHEN start_time = '' THEN 1 ELSE 0 END, start_time ASC, order_index ASC, created_at ASC").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list routine templates: %w", err)
	}
	return templates, nil
}

// Get 根据 ID 获取模板
func (s *RoutineService) Get(id, userID uint) (*db.RoutineTemplate, error) {
	var template db.RoutineTemplate
	if err := s.db.Where("user_id = ?", userID).First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get routine template: %w", err)
	}
	return &template, nil
}

// Create 新建模板并立即为今天生成任务（若今天在适用星期内）
func (s *RoutineService) Create(userID uint, input RoutineTemplateInput, now time.Time) (*db.RoutineTemplate, error) {
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}

	// 展示顺序追加到末尾
	var maxIndex int
	if err := s.db.Model(&db.RoutineTemplate{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(order_index), -1)").
		Scan(&maxIndex).Error; err != nil {
		return nil, fmt.Errorf("next order index: %w", err)
	}

	template := db.RoutineTemplate{
		UserID:     userID,
		Title:      strings.TrimSpace(input.Title),
		DaysOfWeek: db.FormatWeekdays(input.DaysOfWeek),
		IsActive:   true,
		OrderIndex: maxIndex + 1,
		TimeType:   normalizeTimeType(input.TimeType),
		StartTime:  strings.TrimSpace(input.StartTime),
		EndTime:    strings.TrimSpace(input.EndTime),
		Category:   strings.TrimSpace(input.Category),
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := s.db.Create(&template).Error; err != nil {
		return nil, fmt.Errorf("create routine template: %w", err)
	}

	if template.IsActive {
		if err := s.materializeTemplate(template, now); err != nil {
			return nil, err
		}
	}

	return &template, nil
}

// Update 更新模板；更新后若处于激活状态则确保今天的任务存在
func (s *RoutineService) Update(id, userID uint, input RoutineTemplateInput, now time.Time) (*db.RoutineTemplate, error) {
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.DaysOfWeek = db.FormatWeekdays(input.DaysOfWeek)
	existing.TimeType = normalizeTimeType(input.TimeType)
	existing.StartTime = strings.TrimSpace(input.StartTime)
	existing.EndTime = strings.TrimSpace(input.EndTime)
	existing.Category = strings.TrimSpace(input.Category)
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update routine template: %w", err)
	}

	if existing.IsActive {
		if err := s.materializeTemplate(*existing, now); err != nil {
			return nil, err
		}
	}

	return existing, nil
}

// ToggleActive 切换模板的激活状态；激活时立即生成今天的任务
func (s *RoutineService) ToggleActive(id, userID uint, isActive bool, now time.Time) (*db.RoutineTemplate, error) {
	existing, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	existing.IsActive = isActive
	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("toggle routine template: %w", err)
	}

	if isActive {
		if err := s.materializeTemplate(*existing, now); err != nil {
			return nil, err
		}
	}

	return existing, nil
}

// Delete 删除模板。历史任务保留：已生成的任务是既成事实，不随模板回收
func (s *RoutineService) Delete(id, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&db.RoutineTemplate{}, id).Error; err != nil {
		return fmt.Errorf("delete routine template: %w", err)
	}
	return nil
}

// MaterializeToday 为今天生成所有适用模板的任务，可在同一天内重复调用
// 先修补历史任务缺失的时段，再按星期筛选未生成的模板逐一落库
func (s *RoutineService) MaterializeToday(userID uint, now time.Time) error {
	today := normalizeToDate(now)

	materialized, err := s.BackfillToday(userID, now)
	if err != nil {
		return err
	}

	var templates []db.RoutineTemplate
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("order_index ASC").
		Find(&templates).Error; err != nil {
		return fmt.Errorf("list active templates: %w", err)
	}

	weekday := int(today.Weekday())
	for _, template := range templates {
		if _, exists := materialized[template.ID]; exists {
			continue
		}
		if !template.AppliesTo(weekday) {
			continue
		}
		if err := s.insertTaskFor(template, today); err != nil {
			return err
		}
	}

	return nil
}

// BackfillToday 只执行修补路径：为今天已生成但缺失时段的任务补上模板固定时间，
// 不触碰完成状态。返回今天已生成任务的模板 ID 集合供生成路径复用
func (s *RoutineService) BackfillToday(userID uint, now time.Time) (map[uint]struct{}, error) {
	today := normalizeToDate(now)

	var tasks []db.Task
	if err := s.db.Where("user_id = ? AND date = ? AND is_routine = ?", userID, today, true).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list routine tasks: %w", err)
	}

	materialized := make(map[uint]struct{}, len(tasks))
	var needTime []db.Task
	for _, task := range tasks {
		if task.TemplateID == nil {
			continue
		}
		materialized[*task.TemplateID] = struct{}{}
		if task.ScheduledTime == "" {
			needTime = append(needTime, task)
		}
	}

	for _, task := range needTime {
		var template db.RoutineTemplate
		if err := s.db.First(&template, *task.TemplateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("load template for backfill: %w", err)
		}
		if template.TimeType != TimeTypeFixed || template.StartTime == "" {
			continue
		}
		if err := s.db.Model(&db.Task{}).
			Where("id = ?", task.ID).
			Update("scheduled_time", template.StartTime).Error; err != nil {
			return nil, fmt.Errorf("backfill scheduled time: %w", err)
		}
	}

	return materialized, nil
}

// materializeTemplate 为单个模板生成今天的任务（创建/激活时的即时路径）
func (s *RoutineService) materializeTemplate(template db.RoutineTemplate, now time.Time) error {
	today := normalizeToDate(now)
	if !template.AppliesTo(int(today.Weekday())) {
		return nil
	}
	return s.insertTaskFor(template, today)
}

func (s *RoutineService) insertTaskFor(template db.RoutineTemplate, today time.Time) error {
	scheduled := ""
	if template.TimeType == TimeTypeFixed {
		scheduled = template.StartTime
	}

	templateID := template.ID
	task := db.Task{
		UserID:        template.UserID,
		TemplateID:    &templateID,
		Title:         template.Title,
		Date:          today,
		IsCompleted:   false,
		IsRoutine:     true,
		ScheduledTime: scheduled,
		OrderIndex:    template.OrderIndex,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "template_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&task).Error; err != nil {
		return fmt.Errorf("materialize task: %w", err)
	}

	return nil
}

func validateTemplateInput(input RoutineTemplateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrTemplateInvalidInput)
	}

	active := input.IsActive == nil || *input.IsActive
	if active && db.FormatWeekdays(input.DaysOfWeek) == "" {
		return fmt.Errorf("%w: active template needs at least one weekday", ErrTemplateInvalidInput)
	}

	for _, value := range []string{input.StartTime, input.EndTime} {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, err := time.Parse("15:04", trimmed); err != nil {
			return fmt.Errorf("%w: invalid time %q", ErrTemplateInvalidInput, value)
		}
	}

	if normalizeTimeType(input.TimeType) == TimeTypeFixed && strings.TrimSpace(input.StartTime) == "" {
		return fmt.Errorf("%w: fixed time type needs a start time", ErrTemplateInvalidInput)
	}

	return nil
}

func normalizeTimeType(timeType string) string {
	if strings.TrimSpace(strings.ToLower(timeType)) == TimeTypeFixed {
		return TimeTypeFixed
	}
	return TimeTypeFlexible
}
