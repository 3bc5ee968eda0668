package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

// GetDietToday 返回当日饮食记录与整日状态
func (a *API) GetDietToday(c *gin.Context) {
	summary, err := a.diet.Today(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取饮食记录失败")
		return
	}

	logs := make([]gin.H, 0, len(summary.Logs))
	for _, log := range summary.Logs {
		logs = append(logs, dietLogToPayload(log))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       summary.Status,
		"has_status":   summary.HasStatus,
		"meals_logged": summary.MealsLogged,
		"logs":         logs,
	})
}

// AddDietMeal 记录一餐饮食
func (a *API) AddDietMeal(c *gin.Context) {
	var payload struct {
		Description string `json:"description"`
		IsOnDiet    bool   `json:"is_on_diet"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	log, err := a.diet.AddMeal(currentUserID(c), payload.Description, payload.IsOnDiet, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrDietInvalidInput) {
			respondError(c, http.StatusBadRequest, "饮食描述不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "记录饮食失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": dietLogToPayload(*log)})
}

// DeleteDietMeal 删除一餐记录
func (a *API) DeleteDietMeal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的记录ID")
		return
	}

	if err := a.diet.DeleteMeal(id, currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "删除饮食记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetDietStatus 标记整日饮食状态
func (a *API) SetDietStatus(c *gin.Context) {
	var payload struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	record, err := a.diet.SetDayStatus(currentUserID(c), payload.Status, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrDietInvalidStatus) {
			respondError(c, http.StatusBadRequest, "不支持的饮食状态")
			return
		}
		respondError(c, http.StatusInternalServerError, "标记饮食状态失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": record.Status,
		"date":   record.Date.Format(dateFormat),
	})
}

func dietLogToPayload(log db.DietLog) gin.H {
	return gin.H{
		"id":               log.ID,
		"date":             log.Date.Format(dateFormat),
		"description":      log.Description,
		"description_html": renderMarkdown(log.Description),
		"is_on_diet":       log.IsOnDiet,
	}
}
