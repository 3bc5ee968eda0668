package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RunRollup 手动触发每日初始化；当日已执行时仅补齐缺失的例程任务
func (a *API) RunRollup(c *gin.Context) {
	ran, err := a.rollups.RunIfPending(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "每日初始化失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ran": ran})
}
