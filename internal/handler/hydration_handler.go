package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

// GetHydrationToday 返回当日饮水进度
func (a *API) GetHydrationToday(c *gin.Context) {
	summary, err := a.hydration.Today(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取饮水记录失败")
		return
	}

	logs := make([]gin.H, 0, len(summary.Logs))
	for _, log := range summary.Logs {
		logs = append(logs, hydrationLogToPayload(log))
	}

	c.JSON(http.StatusOK, gin.H{
		"total_ml":   summary.TotalML,
		"goal_ml":    summary.GoalML,
		"percentage": summary.Percentage,
		"logs":       logs,
	})
}

// GetHydrationWeek 返回最近一周的每日饮水总量
func (a *API) GetHydrationWeek(c *gin.Context) {
	days, err := a.hydration.Week(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取饮水统计失败")
		return
	}

	items := make([]gin.H, 0, len(days))
	for _, day := range days {
		items = append(items, gin.H{"date": day.Date, "total_ml": day.TotalML})
	}
	c.JSON(http.StatusOK, gin.H{"days": items})
}

// AddHydration 记录一次饮水
func (a *API) AddHydration(c *gin.Context) {
	var payload struct {
		AmountML int `json:"amount_ml"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	log, err := a.hydration.Add(currentUserID(c), payload.AmountML, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrHydrationInvalidAmount) {
			respondError(c, http.StatusBadRequest, "饮水量必须为正数")
			return
		}
		respondError(c, http.StatusInternalServerError, "记录饮水失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": hydrationLogToPayload(*log)})
}

// DeleteHydration 删除一条饮水记录
func (a *API) DeleteHydration(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的记录ID")
		return
	}

	if err := a.hydration.Delete(id, currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "删除饮水记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func hydrationLogToPayload(log db.HydrationLog) gin.H {
	return gin.H{
		"id":        log.ID,
		"amount_ml": log.AmountML,
		"date":      log.Date.Format(dateFormat),
	}
}
