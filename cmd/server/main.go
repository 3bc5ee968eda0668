package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/perfboard/internal/config"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/router"
	"github.com/perfboard/internal/service"
	"github.com/robfig/cron/v3"
)

func main() {
	// 加载 .env（不存在时忽略）
	_ = godotenv.Load()
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 确保根用户存在
	if cfg.RootUserPassword != "" {
		if err := db.EnsureUser(cfg.RootUserName, cfg.RootUserPassword); err != nil {
			log.Fatalf("failed to ensure root user: %v", err)
		}
	}

	// 每天零点为全部用户执行每日初始化（例程生成 + 断签清理）
	rollups := service.NewRollupService(db.DB, service.NewRoutineService(db.DB), service.NewHabitService(db.DB))
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 0 * * *", func() {
		if err := rollups.RunAll(time.Now()); err != nil {
			log.Printf("daily rollup failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("failed to schedule daily rollup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(db.DB, cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
