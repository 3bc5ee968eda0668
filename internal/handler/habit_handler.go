package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

type habitPayload struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	FrequencyPerWeek int    `json:"frequency_per_week"`
	ReminderTime     string `json:"reminder_time"`
	TargetDays       int    `json:"target_days"`
	IsActive         *bool  `json:"is_active"`
}

// ListHabits 返回习惯列表 JSON
func (a *API) ListHabits(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	habits, err := a.habits.List(currentUserID(c), includeInactive)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}
	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(id, currentUserID(c))
	if err != nil {
		handleHabitError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	habit, err := a.habits.Create(currentUserID(c), habitInputFromPayload(payload))
	if err != nil {
		handleHabitError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	habit, err := a.habits.Update(id, currentUserID(c), habitInputFromPayload(payload))
	if err != nil {
		handleHabitError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// DeleteHabit 删除习惯
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Delete(id, currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "删除习惯失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetHabitCompletion 标记/取消当日打卡，随后重算连续天数与等级
func (a *API) SetHabitCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload struct {
		Completed bool `json:"completed"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	habit, err := a.habits.SetCompletion(id, currentUserID(c), time.Now(), payload.Completed)
	if err != nil {
		handleHabitError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// TodayHabitLogs 返回当日全部打卡记录
func (a *API) TodayHabitLogs(c *gin.Context) {
	logs, err := a.habits.TodayLogs(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": serializeHabitLogs(logs)})
}

// GetHabitWeek 返回习惯最近一周的打卡记录
func (a *API) GetHabitWeek(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	logs, err := a.habits.WeekLogs(id, currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": serializeHabitLogs(logs)})
}

func habitInputFromPayload(payload habitPayload) service.HabitInput {
	return service.HabitInput{
		Title:            payload.Title,
		Description:      payload.Description,
		FrequencyPerWeek: payload.FrequencyPerWeek,
		ReminderTime:     payload.ReminderTime,
		TargetDays:       payload.TargetDays,
		IsActive:         payload.IsActive,
	}
}

func habitToPayload(habit db.Habit) gin.H {
	return gin.H{
		"id":                 habit.ID,
		"title":              habit.Title,
		"description":        habit.Description,
		"frequency_per_week": habit.FrequencyPerWeek,
		"reminder_time":      habit.ReminderTime,
		"target_days":        habit.TargetDays,
		"current_streak":     habit.CurrentStreak,
		"longest_streak":     habit.LongestStreak,
		"level":              habit.Level,
		"level_name":         service.LevelName(habit.Level),
		"is_active":          habit.IsActive,
	}
}

func serializeHabitLogs(logs []db.HabitLog) []gin.H {
	items := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		items = append(items, gin.H{
			"id":        log.ID,
			"habit_id":  log.HabitID,
			"log_date":  log.LogDate.Format(dateFormat),
			"completed": log.Completed,
		})
	}
	return items
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitInvalidInput):
		respondError(c, http.StatusBadRequest, "习惯配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
