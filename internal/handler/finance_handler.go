package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

// ListFinanceCategories 返回支出分类列表
func (a *API) ListFinanceCategories(c *gin.Context) {
	categories, err := a.finance.Categories(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		items = append(items, gin.H{
			"id":           category.ID,
			"name":         category.Name,
			"icon":         category.Icon,
			"color":        category.Color,
			"budget_limit": category.BudgetLimit,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": items})
}

// AddFinanceCategory 新建支出分类
func (a *API) AddFinanceCategory(c *gin.Context) {
	var payload struct {
		Name        string  `json:"name"`
		Icon        string  `json:"icon"`
		Color       string  `json:"color"`
		BudgetLimit float64 `json:"budget_limit"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	category, err := a.finance.AddCategory(currentUserID(c), service.CategoryInput{
		Name:        payload.Name,
		Icon:        payload.Icon,
		Color:       payload.Color,
		BudgetLimit: payload.BudgetLimit,
	})
	if err != nil {
		handleFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": gin.H{
		"id":           category.ID,
		"name":         category.Name,
		"icon":         category.Icon,
		"color":        category.Color,
		"budget_limit": category.BudgetLimit,
	}})
}

// AddExpense 记录一笔支出，日期缺省为今天
func (a *API) AddExpense(c *gin.Context) {
	var payload struct {
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		CategoryID  *uint   `json:"category_id"`
		Date        string  `json:"date"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	input := service.ExpenseInput{
		Amount:      payload.Amount,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
	}
	if trimmed := strings.TrimSpace(payload.Date); trimmed != "" {
		parsed, err := time.ParseInLocation(dateFormat, trimmed, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的日期")
			return
		}
		input.Date = &parsed
	}

	expense, err := a.finance.AddExpense(currentUserID(c), input)
	if err != nil {
		handleFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expenseToPayload(*expense)})
}

// DeleteExpense 删除一笔支出
func (a *API) DeleteExpense(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的支出ID")
		return
	}

	if err := a.finance.DeleteExpense(id, currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "删除支出失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetFinanceToday 返回当日支出汇总
func (a *API) GetFinanceToday(c *gin.Context) {
	summary, err := a.finance.Today(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取支出汇总失败")
		return
	}

	items := make([]gin.H, 0, len(summary.Expenses))
	for _, expense := range summary.Expenses {
		items = append(items, expenseToPayload(expense))
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    summary.Total,
		"count":    summary.Count,
		"expenses": items,
	})
}

// GetFinanceMonthly 返回当月支出与分类分布
func (a *API) GetFinanceMonthly(c *gin.Context) {
	summary, err := a.finance.Monthly(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取月度汇总失败")
		return
	}

	byCategory := make([]gin.H, 0, len(summary.ByCategory))
	for _, entry := range summary.ByCategory {
		byCategory = append(byCategory, gin.H{
			"name":  entry.Name,
			"color": entry.Color,
			"total": entry.Total,
		})
	}

	items := make([]gin.H, 0, len(summary.Expenses))
	for _, expense := range summary.Expenses {
		items = append(items, expenseToPayload(expense))
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       summary.Total,
		"by_category": byCategory,
		"expenses":    items,
	})
}

func expenseToPayload(expense db.Expense) gin.H {
	item := gin.H{
		"id":          expense.ID,
		"amount":      expense.Amount,
		"description": expense.Description,
		"date":        expense.Date.Format(dateFormat),
	}
	if expense.CategoryID != nil {
		item["category_id"] = *expense.CategoryID
	}
	if expense.Category != nil {
		item["category_name"] = expense.Category.Name
	}
	return item
}

func handleFinanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "分类不存在")
	case errors.Is(err, service.ErrExpenseInvalidInput):
		respondError(c, http.StatusBadRequest, "支出信息无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
