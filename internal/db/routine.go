package db

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// RoutineTemplate 定义了周期性例行任务的模板
// DaysOfWeek 以逗号分隔保存适用的星期（0=周日 … 6=周六）
// TimeType 为 fixed 时 StartTime/EndTime 为 "15:04" 格式的固定时段
// OrderIndex 控制列表展示顺序
// 模板本身不是任务，只负责按天生成 Task
type RoutineTemplate struct {
	gorm.Model
	UserID     uint `gorm:"index"`
	User       User `gorm:"constraint:OnDelete:CASCADE"`
	Title      string
	DaysOfWeek string
	IsActive   bool `gorm:"default:true"`
	OrderIndex int  `gorm:"default:0"`
	TimeType   string
	StartTime  string
	EndTime    string
	Category   string
}

// TableName 指定自定义表名。
func (RoutineTemplate) TableName() string {
	return "routine_templates"
}

// Weekdays 解析 DaysOfWeek 字段为星期索引集合，忽略非法片段。
func (t RoutineTemplate) Weekdays() []int {
	parts := strings.Split(t.DaysOfWeek, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		day, err := strconv.Atoi(trimmed)
		if err != nil || day < 0 || day > 6 {
			continue
		}
		days = append(days, day)
	}
	return days
}

// AppliesTo 判断模板是否适用于给定星期索引。
func (t RoutineTemplate) AppliesTo(weekday int) bool {
	for _, day := range t.Weekdays() {
		if day == weekday {
			return true
		}
	}
	return false
}

// FormatWeekdays 将星期索引集合序列化为 DaysOfWeek 存储格式。
func FormatWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, day := range days {
		if day < 0 || day > 6 {
			continue
		}
		parts = append(parts, strconv.Itoa(day))
	}
	return strings.Join(parts, ",")
}

// Task 定义了单日的可执行任务
// TemplateID 指向生成它的模板；手动创建的任务该字段为空
// (template_id, date) 唯一索引保证同一模板每天至多生成一条任务
// ScheduledTime 在生成时从模板固定时段拷贝，避免读取时动态回退
type Task struct {
	gorm.Model
	UserID        uint  `gorm:"index"`
	User          User  `gorm:"constraint:OnDelete:CASCADE"`
	TemplateID    *uint `gorm:"index:idx_task_template_date,unique"`
	Title         string
	Date          time.Time `gorm:"index;index:idx_task_template_date,unique"`
	IsCompleted   bool      `gorm:"default:false"`
	IsRoutine     bool      `gorm:"default:false"`
	ScheduledTime string
	OrderIndex    int `gorm:"default:0"`
}

// TableName 重写确保唯一索引作用到 template_id + date。
func (Task) TableName() string {
	return "tasks"
}
