package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

// GetTodayTasks 返回当日任务清单与完成度
// 每天首次访问会先触发例程生成与断签清理
func (a *API) GetTodayTasks(c *gin.Context) {
	userID := currentUserID(c)
	now := time.Now()

	if _, err := a.rollups.RunIfPending(userID, now); err != nil {
		respondError(c, http.StatusInternalServerError, "每日初始化失败")
		return
	}

	summary, err := a.tasks.Today(userID, now)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	items := make([]gin.H, 0, len(summary.Tasks))
	for _, task := range summary.Tasks {
		items = append(items, taskToPayload(task))
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      summary.Total,
		"completed":  summary.Completed,
		"percentage": summary.Percentage,
		"tasks":      items,
	})
}

// AddTask 添加当日一次性任务
func (a *API) AddTask(c *gin.Context) {
	var payload struct {
		Title string `json:"title"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	task, err := a.tasks.Add(currentUserID(c), payload.Title, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrTaskInvalidInput) {
			respondError(c, http.StatusBadRequest, "任务标题不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "创建任务失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// ToggleTask 切换任务完成状态
func (a *API) ToggleTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	var payload struct {
		IsCompleted bool `json:"is_completed"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	task, err := a.tasks.Toggle(id, currentUserID(c), payload.IsCompleted)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "更新任务失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// DeleteTask 删除任务
func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	if err := a.tasks.Delete(id, currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "删除任务失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func taskToPayload(task db.Task) gin.H {
	item := gin.H{
		"id":             task.ID,
		"title":          task.Title,
		"date":           task.Date.Format(dateFormat),
		"is_completed":   task.IsCompleted,
		"is_routine":     task.IsRoutine,
		"scheduled_time": task.ScheduledTime,
		"order_index":    task.OrderIndex,
	}
	if task.TemplateID != nil {
		item["template_id"] = *task.TemplateID
	}
	return item
}
