package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

// GymCheckIn 当日训练打卡，重复打卡覆盖原记录
func (a *API) GymCheckIn(c *gin.Context) {
	var payload struct {
		WorkoutType     string `json:"workout_type"`
		DurationMinutes int    `json:"duration_minutes"`
		Notes           string `json:"notes"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	session, err := a.gym.CheckIn(currentUserID(c), service.GymCheckInInput{
		WorkoutType:     payload.WorkoutType,
		DurationMinutes: payload.DurationMinutes,
		Notes:           payload.Notes,
	}, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrGymInvalidWorkoutType) {
			respondError(c, http.StatusBadRequest, "不支持的训练类型")
			return
		}
		respondError(c, http.StatusInternalServerError, "打卡失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": gymSessionToPayload(*session)})
}

// GetGymToday 返回当日打卡记录，未打卡时 session 为 null
func (a *API) GetGymToday(c *gin.Context) {
	session, err := a.gym.Today(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": gymSessionToPayload(*session)})
}

// GetGymStats 返回最近一周与一月的打卡次数
func (a *API) GetGymStats(c *gin.Context) {
	stats, err := a.gym.Stats(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取训练统计失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"week_count": stats.WeekCount, "month_count": stats.MonthCount})
}

// CancelGymToday 撤销当日打卡
func (a *API) CancelGymToday(c *gin.Context) {
	if err := a.gym.CancelToday(currentUserID(c), time.Now()); err != nil {
		respondError(c, http.StatusInternalServerError, "撤销打卡失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func gymSessionToPayload(session db.GymSession) gin.H {
	return gin.H{
		"id":               session.ID,
		"date":             session.Date.Format(dateFormat),
		"workout_type":     session.WorkoutType,
		"duration_minutes": session.DurationMinutes,
		"notes":            session.Notes,
		"notes_html":       renderMarkdown(session.Notes),
	}
}
