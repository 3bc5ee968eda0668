package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// FrequencyPerWeek 为每周目标次数，TargetDays 为养成目标天数（默认 66）
// CurrentStreak/LongestStreak/Level 仅由连胜引擎写入，用户不可直接修改
// Level 取值 1-4，由连胜天数派生
type Habit struct {
	gorm.Model
	UserID           uint `gorm:"index"`
	User             User `gorm:"constraint:OnDelete:CASCADE"`
	Title            string
	Description      string
	FrequencyPerWeek int `gorm:"default:7"`
	ReminderTime     string
	TargetDays       int  `gorm:"default:66"`
	CurrentStreak    int  `gorm:"default:0"`
	LongestStreak    int  `gorm:"default:0"`
	Level            int  `gorm:"default:1"`
	IsActive         bool `gorm:"default:true"`
}

// HabitLog 记录习惯的按日完成状态
// Habit + LogDate 采用唯一索引，保证幂等；取消完成不删除行，仅置 Completed=false
type HabitLog struct {
	gorm.Model
	HabitID   uint      `gorm:"index;index:idx_habit_log_unique,unique"`
	Habit     Habit     `gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint      `gorm:"index"`
	LogDate   time.Time `gorm:"index:idx_habit_log_unique,unique"`
	Completed bool      `gorm:"default:false"`
}

// TableName 重写确保唯一索引作用到 habit_id + log_date。
func (HabitLog) TableName() string {
	return "habit_logs"
}
