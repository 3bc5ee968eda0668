package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

type routinePayload struct {
	Title      string `json:"title"`
	DaysOfWeek []int  `json:"days_of_week"`
	TimeType   string `json:"time_type"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Category   string `json:"category"`
	IsActive   *bool  `json:"is_active"`
}

// ListRoutines 返回例程模板列表
func (a *API) ListRoutines(c *gin.Context) {
	templates, err := a.routines.List(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取例程列表失败")
		return
	}

	items := make([]gin.H, 0, len(templates))
	for _, template := range templates {
		items = append(items, routineToPayload(template))
	}
	c.JSON(http.StatusOK, gin.H{"routines": items})
}

// CreateRoutine 创建例程模板；激活状态下立即生成当日任务
func (a *API) CreateRoutine(c *gin.Context) {
	var payload routinePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	template, err := a.routines.Create(currentUserID(c), routineInputFromPayload(payload), time.Now())
	if err != nil {
		handleRoutineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routine": routineToPayload(*template)})
}

// UpdateRoutine 更新例程模板
func (a *API) UpdateRoutine(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的例程ID")
		return
	}

	var payload routinePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	template, err := a.routines.Update(id, currentUserID(c), routineInputFromPayload(payload), time.Now())
	if err != nil {
		handleRoutineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routine": routineToPayload(*template)})
}

// ToggleRoutine 切换例程激活状态
func (a *API) ToggleRoutine(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的例程ID")
		return
	}

	var payload struct {
		IsActive bool `json:"is_active"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	template, err := a.routines.ToggleActive(id, currentUserID(c), payload.IsActive, time.Now())
	if err != nil {
		handleRoutineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routine": routineToPayload(*template)})
}

// DeleteRoutine 删除例程模板，历史任务保留
func (a *API) DeleteRoutine(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的例程ID")
		return
	}

	if err := a.routines.Delete(id, currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "删除例程失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func routineInputFromPayload(payload routinePayload) service.RoutineTemplateInput {
	return service.RoutineTemplateInput{
		Title:      payload.Title,
		DaysOfWeek: payload.DaysOfWeek,
		TimeType:   payload.TimeType,
		StartTime:  payload.StartTime,
		EndTime:    payload.EndTime,
		Category:   payload.Category,
		IsActive:   payload.IsActive,
	}
}

func routineToPayload(template db.RoutineTemplate) gin.H {
	return gin.H{
		"id":           template.ID,
		"title":        template.Title,
		"days_of_week": template.Weekdays(),
		"time_type":    template.TimeType,
		"start_time":   template.StartTime,
		"end_time":     template.EndTime,
		"category":     template.Category,
		"is_active":    template.IsActive,
		"order_index":  template.OrderIndex,
	}
}

func handleRoutineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		respondError(c, http.StatusNotFound, "例程不存在")
	case errors.Is(err, service.ErrTemplateInvalidInput):
		respondError(c, http.StatusBadRequest, "例程配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
