package db

import (
	"time"

	"gorm.io/gorm"
)

// FinanceCategory 定义了支出分类，BudgetLimit 为可选的月度预算
type FinanceCategory struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	User        User `gorm:"constraint:OnDelete:CASCADE"`
	Name        string
	Icon        string
	Color       string
	BudgetLimit float64 `gorm:"default:0"`
}

// TableName 指定自定义表名。
func (FinanceCategory) TableName() string {
	return "finance_categories"
}

// Expense 记录单笔支出，分类可为空
type Expense struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	User        User `gorm:"constraint:OnDelete:CASCADE"`
	CategoryID  *uint
	Category    *FinanceCategory `gorm:"foreignKey:CategoryID"`
	Amount      float64
	Description string
	Date        time.Time `gorm:"index"`
}
