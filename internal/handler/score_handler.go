package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetDailyScore 返回当日综合得分与分项贡献
// 计算前先触发每日初始化，保证例程任务已生成、断签已清理
func (a *API) GetDailyScore(c *gin.Context) {
	userID := currentUserID(c)
	now := time.Now()

	if _, err := a.rollups.RunIfPending(userID, now); err != nil {
		respondError(c, http.StatusInternalServerError, "每日初始化失败")
		return
	}

	score, err := a.scores.Today(userID, now)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算当日得分失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score":  score.Score,
		"streak": score.Streak,
		"breakdown": gin.H{
			"hydration": score.Hydration,
			"tasks":     score.Tasks,
			"habits":    score.Habits,
			"gym":       score.Gym,
			"diet":      score.Diet,
			"reading":   score.Reading,
		},
	})
}

// GetStreaks 返回各模块的连续达标天数
func (a *API) GetStreaks(c *gin.Context) {
	streaks, err := a.scores.Streaks(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算连续天数失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"overall":   streaks.Overall,
		"hydration": streaks.Hydration,
		"gym":       streaks.Gym,
		"tasks":     streaks.Tasks,
		"reading":   streaks.Reading,
	})
}
