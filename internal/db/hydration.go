package db

import (
	"time"

	"gorm.io/gorm"
)

// HydrationLog 记录单次饮水量（毫升），按日汇总
type HydrationLog struct {
	gorm.Model
	UserID   uint `gorm:"index"`
	User     User `gorm:"constraint:OnDelete:CASCADE"`
	AmountML int
	Date     time.Time `gorm:"index"`
}

// TableName 指定自定义表名。
func (HydrationLog) TableName() string {
	return "hydration_logs"
}
