package controller

import (
	"book_platform_backend/internal/config"
	"book_platform_backend/internal/middleware"
	"book_platform_backend/internal/model"
	"book_platform_backend/internal/repository"
	"book_platform_backend/internal/service"
	"book_platform_backend/internal/util"
	"book_platform_backend/pkg/logger"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

// testStack wires the full request path against an in-memory database and
// redis, with the same route and middleware layout the server uses.
type testStack struct {
	Router *gin.Engine
	DB     *gorm.DB
	Auth   *service.AuthService
	RBAC   *service.RBACService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.UserProgress{},
		&model.UserPageView{},
		&model.UserInteraction{},
		&model.UserExercise{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Session: config.SessionConfig{
			Lifetime:         168 * time.Hour,
			RememberLifetime: 720 * time.Hour,
		},
		Content: config.ContentConfig{TotalChapters: 10},
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	sessionRepo := repository.NewSessionRepository(rdb)
	progressRepo := repository.NewProgressRepository(db)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg)
	rbac := service.NewRBACService(userRepo, roleRepo)
	progress := service.NewProgressService(progressRepo, cfg, db)
	dashboard := service.NewDashboardService(userRepo, progressRepo)

	require.NoError(t, rbac.Bootstrap())

	authCtrl := NewAuthController(auth, rbac, false)
	userCtrl := NewUserController(auth)
	progressCtrl := NewProgressController(progress, dashboard)
	adminCtrl := NewAdminController(dashboard, rbac)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.SessionMiddleware(auth))
	{
		api.POST("/register", authCtrl.Register)
		api.POST("/login", authCtrl.Login)
		api.POST("/progress/track", progressCtrl.Track)

		authed := api.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.POST("/logout", authCtrl.Logout)
			authed.GET("/profile", authCtrl.GetProfile)
			authed.PUT("/user/profile", userCtrl.UpdateProfile)
			authed.PUT("/user/password", userCtrl.ChangePassword)
			authed.GET("/progress/dashboard", progressCtrl.Dashboard)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			admin.GET("/dashboard",
				middleware.RequirePermission(rbac, util.ResourceAnalytics, util.ActionRead),
				adminCtrl.Dashboard)
			admin.POST("/users/:id/roles",
				middleware.RequirePermission(rbac, util.ResourceUser, util.ActionWrite),
				adminCtrl.AssignRole)
			admin.DELETE("/users/:id/roles/:role",
				middleware.RequirePermission(rbac, util.ResourceUser, util.ActionWrite),
				adminCtrl.RemoveRole)
		}
	}

	return &testStack{Router: router, DB: db, Auth: auth, RBAC: rbac}
}

func (s *testStack) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account through the public API and returns the
// session token and user id.
func (s *testStack) registerAndLogin(t *testing.T, username string) (string, uint) {
	t.Helper()

	w := s.request(t, http.MethodPost, "/api/register", "", gin.H{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
		"firstName":       "Test",
		"lastName":        "User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.request(t, http.MethodPost, "/api/login", "", gin.H{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID uint `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token, resp.Data.User.ID
}

// promote grants a role directly through the service layer.
func (s *testStack) promote(t *testing.T, userID uint, role string) {
	t.Helper()

	_, err := s.RBAC.AssignRole(userID, role)
	require.NoError(t, err)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
