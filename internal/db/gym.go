package db

import (
	"time"

	"gorm.io/gorm"
)

// GymSession 记录当日的训练打卡
// UserID + Date 采用唯一索引：每天至多一次打卡，重复打卡按更新处理
// Notes 支持 Markdown，展示时经过消毒渲染
type GymSession struct {
	gorm.Model
	UserID          uint      `gorm:"index;index:idx_gym_user_date,unique"`
	User            User      `gorm:"constraint:OnDelete:CASCADE"`
	Date            time.Time `gorm:"index:idx_gym_user_date,unique"`
	WorkoutType     string
	DurationMinutes int
	Notes           string
}

// TableName 重写确保唯一索引作用到 user_id + date。
func (GymSession) TableName() string {
	return "gym_sessions"
}
