package handler

import (
	"github.com/perfboard/internal/service"
	"gorm.io/gorm"
)

const dateFormat = "2006-01-02"

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	routines  *service.RoutineService
	tasks     *service.TaskService
	habits    *service.HabitService
	scores    *service.ScoreService
	rollups   *service.RollupService
	profiles  *service.ProfileService
	hydration *service.HydrationService
	gym       *service.GymService
	diet      *service.DietService
	reading   *service.ReadingService
	finance   *service.FinanceService
	skills    *service.SkillService
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploadDir, uploadURL string) *API {
	routineService := service.NewRoutineService(gdb)
	habitService := service.NewHabitService(gdb)
	profileService := service.NewProfileService(gdb)

	return &API{
		db:        gdb,
		routines:  routineService,
		tasks:     service.NewTaskService(gdb),
		habits:    habitService,
		scores:    service.NewScoreService(gdb),
		rollups:   service.NewRollupService(gdb, routineService, habitService),
		profiles:  profileService,
		hydration: service.NewHydrationService(gdb, profileService),
		gym:       service.NewGymService(gdb),
		diet:      service.NewDietService(gdb),
		reading:   service.NewReadingService(gdb),
		finance:   service.NewFinanceService(gdb),
		skills:    service.NewSkillService(gdb),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
