package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/config"
	"github.com/perfboard/internal/handler"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("perfboard_session", store))

	// 静态文件服务（头像等上传内容）
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	api := handler.NewAPI(gdb, cfg.UploadDir, cfg.UploadURLPath)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
	}

	authed := r.Group("/api")
	authed.Use(handler.AuthRequired())
	{
		authed.POST("/rollup", api.RunRollup)

		authed.GET("/score/today", api.GetDailyScore)
		authed.GET("/score/streaks", api.GetStreaks)

		authed.GET("/routines", api.ListRoutines)
		authed.POST("/routines", api.CreateRoutine)
		authed.PUT("/routines/:id", api.UpdateRoutine)
		authed.PATCH("/routines/:id/active", api.ToggleRoutine)
		authed.DELETE("/routines/:id", api.DeleteRoutine)

		authed.GET("/tasks/today", api.GetTodayTasks)
		authed.POST("/tasks", api.AddTask)
		authed.PATCH("/tasks/:id", api.ToggleTask)
		authed.DELETE("/tasks/:id", api.DeleteTask)

		authed.GET("/habits", api.ListHabits)
		authed.GET("/habits/today", api.TodayHabitLogs)
		authed.GET("/habits/:id", api.GetHabit)
		authed.GET("/habits/:id/week", api.GetHabitWeek)
		authed.POST("/habits", api.CreateHabit)
		authed.PUT("/habits/:id", api.UpdateHabit)
		authed.POST("/habits/:id/log", api.SetHabitCompletion)
		authed.DELETE("/habits/:id", api.DeleteHabit)

		authed.GET("/hydration/today", api.GetHydrationToday)
		authed.GET("/hydration/week", api.GetHydrationWeek)
		authed.POST("/hydration", api.AddHydration)
		authed.DELETE("/hydration/:id", api.DeleteHydration)

		authed.GET("/gym/today", api.GetGymToday)
		authed.GET("/gym/stats", api.GetGymStats)
		authed.POST("/gym/checkin", api.GymCheckIn)
		authed.DELETE("/gym/today", api.CancelGymToday)

		authed.GET("/diet/today", api.GetDietToday)
		authed.POST("/diet/meals", api.AddDietMeal)
		authed.DELETE("/diet/meals/:id", api.DeleteDietMeal)
		authed.PUT("/diet/status", api.SetDietStatus)

		authed.GET("/reading/today", api.GetReadingToday)
		authed.GET("/books", api.ListBooks)
		authed.POST("/books", api.AddBook)
		authed.PATCH("/books/:id/status", api.UpdateBookStatus)
		authed.POST("/books/:id/log", api.LogReading)

		authed.GET("/finance/categories", api.ListFinanceCategories)
		authed.POST("/finance/categories", api.AddFinanceCategory)
		authed.GET("/finance/today", api.GetFinanceToday)
		authed.GET("/finance/monthly", api.GetFinanceMonthly)
		authed.POST("/finance/expenses", api.AddExpense)
		authed.DELETE("/finance/expenses/:id", api.DeleteExpense)

		authed.GET("/skills", api.ListSkills)
		authed.POST("/skills", api.AddSkill)
		authed.GET("/skills/:id", api.GetSkillDetail)
		authed.POST("/skills/:id/projects", api.AddProject)
		authed.PATCH("/projects/:id/status", api.UpdateProjectStatus)
		authed.POST("/projects/:id/deliveries", api.AddDelivery)
		authed.PATCH("/deliveries/:id", api.ToggleDelivery)

		authed.GET("/profile", api.GetProfile)
		authed.PUT("/profile", api.UpdateProfile)
		authed.POST("/profile/avatar", api.UploadAvatar)
	}

	return r
}
