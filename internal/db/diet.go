package db

import (
	"time"

	"gorm.io/gorm"
)

// DietLog 记录单餐饮食，Description 支持 Markdown
type DietLog struct {
	gorm.Model
	UserID      uint      `gorm:"index"`
	User        User      `gorm:"constraint:OnDelete:CASCADE"`
	Date        time.Time `gorm:"index"`
	Description string
	IsOnDiet    bool
}

// TableName 指定自定义表名。
func (DietLog) TableName() string {
	return "diet_logs"
}

// DietDailyStatus 标记整日饮食状态
// Status 取值 clean/partial/free；未标记与显式 free 在得分上同为 0，
// 但对外展示时需要区分"未记录"与"自由日"
type DietDailyStatus struct {
	gorm.Model
	UserID uint      `gorm:"index;index:idx_diet_status_unique,unique"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`
	Date   time.Time `gorm:"index:idx_diet_status_unique,unique"`
	Status string
}

// TableName 重写确保唯一索引作用到 user_id + date。
func (DietDailyStatus) TableName() string {
	return "diet_daily_status"
}
