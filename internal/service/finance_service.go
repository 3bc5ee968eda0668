package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound 在指定分类不存在时返回
	ErrCategoryNotFound = errors.New("finance category not found")
	// ErrExpenseInvalidInput 在支出输入异常时返回
	ErrExpenseInvalidInput = errors.New("invalid expense input")
)

// FinanceService 负责支出分类与支出记录
type FinanceService struct {
	db *gorm.DB
}

// NewFinanceService 构造 FinanceService
func NewFinanceService(gdb *gorm.DB) *FinanceService {
	return &FinanceService{db: gdb}
}

// ExpenseInput 定义记录支出时可配置字段，Date 为空时默认今天
type ExpenseInput struct {
	Amount      float64
	Description string
	CategoryID  *uint
	Date        *time.Time
}

// CategoryInput 定义创建分类时可配置字段
type CategoryInput struct {
	Name        string
	Icon        string
	Color       string
	BudgetLimit float64
}

// ExpenseSummary 汇总当日支出
type ExpenseSummary struct {
	Total    float64
	Count    int
	Expenses []db.Expense
}

// CategoryTotal 是按分类聚合的月度支出
type CategoryTotal struct {
	Name  string
	Color string
	Total float64
}

// MonthlySummary 汇总当月支出与分类分布
type MonthlySummary struct {
	Total      float64
	ByCategory []CategoryTotal
	Expenses   []db.Expense
}

// Categories 返回用户的全部分类，按名称升序
func (s *FinanceService) Categories(userID uint) ([]db.FinanceCategory, error) {
	var categories []db.FinanceCategory
	if err := s.db.Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list finance categories: %w", err)
	}
	return categories, nil
}

// AddCategory 新建分类
func (s *FinanceService) AddCategory(userID uint, input CategoryInput) (*db.FinanceCategory, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrExpenseInvalidInput)
	}

	category := db.FinanceCategory{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Icon:        strings.TrimSpace(input.Icon),
		Color:       strings.TrimSpace(input.Color),
		BudgetLimit: input.BudgetLimit,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create finance category: %w", err)
	}
	return &category, nil
}

// AddExpense 记录一笔支出，分类可选且必须归属当前用户
func (s *FinanceService) AddExpense(userID uint, input ExpenseInput) (*db.Expense, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrExpenseInvalidInput)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrExpenseInvalidInput)
	}

	if input.CategoryID != nil {
		var category db.FinanceCategory
		if err := s.db.Where("user_id = ?", userID).First(&category, *input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("find finance category: %w", err)
		}
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	expense := db.Expense{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Date:        normalizeToDate(date),
	}
	if err := s.db.Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return &expense, nil
}

// DeleteExpense 删除一笔支出
func (s *FinanceService) DeleteExpense(id, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&db.Expense{}, id).Error; err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// Today 汇总当日支出
func (s *FinanceService) Today(userID uint, now time.Time) (*ExpenseSummary, error) {
	today := normalizeToDate(now)

	var expenses []db.Expense
	if err := s.db.Preload("Category").
		Where("user_id = ? AND date = ?", userID, today).
		Order("created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list today expenses: %w", err)
	}

	summary := &ExpenseSummary{Count: len(expenses), Expenses: expenses}
	for _, expense := range expenses {
		summary.Total += expense.Amount
	}
	return summary, nil
}

// Monthly 汇总当月支出并按分类聚合，无分类的支出归入"uncategorized"
func (s *FinanceService) Monthly(userID uint, now time.Time) (*MonthlySummary, error) {
	today := normalizeToDate(now)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	var expenses []db.Expense
	if err := s.db.Preload("Category").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, monthStart, monthEnd).
		Order("date DESC").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list monthly expenses: %w", err)
	}

	summary := &MonthlySummary{Expenses: expenses}
	totals := make(map[string]*CategoryTotal)
	order := make([]string, 0)

	for _, expense := range expenses {
		summary.Total += expense.Amount

		name := "uncategorized"
		color := ""
		if expense.Category != nil {
			name = expense.Category.Name
			color = expense.Category.Color
		}

		entry := totals[name]
		if entry == nil {
			entry = &CategoryTotal{Name: name, Color: color}
			totals[name] = entry
			order = append(order, name)
		}
		entry.Total += expense.Amount
	}

	summary.ByCategory = make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		summary.ByCategory = append(summary.ByCategory, *totals[name])
	}
	return summary, nil
}
