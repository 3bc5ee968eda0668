package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthEngine(t *testing.T) (*gin.Engine, *API) {
	t.Helper()
	api := setupTestAPI(t)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("perfboard_session", store))

	r.POST("/auth/login", api.Login)
	authed := r.Group("/api")
	authed.Use(AuthRequired())
	authed.GET("/profile", api.GetProfile)

	return r, api
}

func seedUser(t *testing.T, api *API, username, password string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := api.db.Create(&db.User{Username: username, Password: string(hashed)}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	r, _ := setupAuthEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestLoginAndAccessProtectedRoute(t *testing.T) {
	r, api := setupAuthEngine(t)
	seedUser(t, api, "ana", "segredo123")

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "segredo123"})
	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	r.ServeHTTP(loginW, loginReq)

	if loginW.Code != http.StatusOK {
		t.Fatalf("expected login status 200, got %d: %s", loginW.Code, loginW.Body.String())
	}

	cookies := loginW.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie to be set")
	}

	profileReq := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	for _, c := range cookies {
		profileReq.AddCookie(c)
	}
	profileW := httptest.NewRecorder()
	r.ServeHTTP(profileW, profileReq)

	if profileW.Code != http.StatusOK {
		t.Fatalf("expected profile status 200, got %d: %s", profileW.Code, profileW.Body.String())
	}
}

func TestLoginTriggersDailyRollup(t *testing.T) {
	r, api := setupAuthEngine(t)
	seedUser(t, api, "ana", "segredo123")

	var user db.User
	if err := api.db.Where("username = ?", "ana").First(&user).Error; err != nil {
		t.Fatalf("failed to load seeded user: %v", err)
	}

	// 今天适用的激活模板：登录应立即生成当日例程任务
	template := db.RoutineTemplate{
		UserID:     user.ID,
		Title:      "晨间例程",
		DaysOfWeek: db.FormatWeekdays([]int{int(time.Now().Weekday())}),
		IsActive:   true,
		TimeType:   "flexible",
	}
	if err := api.db.Create(&template).Error; err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "segredo123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected login status 200, got %d: %s", w.Code, w.Body.String())
	}

	var taskCount int64
	api.db.Model(&db.Task{}).Where("template_id = ?", template.ID).Count(&taskCount)
	if taskCount != 1 {
		t.Fatalf("expected login rollup to materialize 1 task, got %d", taskCount)
	}

	var profile db.UserProfile
	if err := api.db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("expected profile created by rollup: %v", err)
	}
	if profile.LastRollupDate == nil {
		t.Fatal("expected rollup marker to be written on login")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r, api := setupAuthEngine(t)
	seedUser(t, api, "ana", "segredo123")

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "errada"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}
