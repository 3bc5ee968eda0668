package db

import (
	"time"

	"gorm.io/gorm"
)

// Book 定义了书籍模型
// Status 取值 reading/completed/paused/abandoned
// CurrentPage 由阅读日志联动更新，不超过 TotalPages
type Book struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	User        User `gorm:"constraint:OnDelete:CASCADE"`
	Title       string
	Author      string
	TotalPages  int
	CurrentPage int    `gorm:"default:0"`
	Status      string `gorm:"default:reading"`
}

// ReadingLog 记录单次阅读的页数，按日汇总
type ReadingLog struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	User      User `gorm:"constraint:OnDelete:CASCADE"`
	BookID    uint `gorm:"index"`
	Book      Book `gorm:"constraint:OnDelete:CASCADE"`
	PagesRead int
	Date      time.Time `gorm:"index"`
}

// TableName 指定自定义表名。
func (ReadingLog) TableName() string {
	return "reading_logs"
}
