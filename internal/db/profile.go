package db

import (
	"time"

	"gorm.io/gorm"
)

// DefaultHydrationGoalML 是未配置时的每日饮水目标（毫升）。
const DefaultHydrationGoalML = 2500

// UserProfile 保存用户的个人档案与跨模块配置。
// LastRollupDate 是服务端的"当日结算"标记：每日例行任务生成与
// 习惯断签清理每天只在该日期落后于今天时执行一次。
type UserProfile struct {
	gorm.Model
	UserID          uint `gorm:"uniqueIndex"`
	User            User `gorm:"constraint:OnDelete:CASCADE"`
	FullName        string
	Timezone        string
	HydrationGoalML int `gorm:"default:2500"`
	AvatarURL       string
	LastRollupDate  *time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (UserProfile) TableName() string {
	return "user_profiles"
}
