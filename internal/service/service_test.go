package service

import (
	"book_platform_backend/internal/config"
	"book_platform_backend/internal/model"
	"book_platform_backend/internal/repository"
	"book_platform_backend/pkg/logger"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// testDB opens a private in-memory database migrated to the current schema.
// The pool is pinned to one connection so every query sees the same memory
// database.
func testDB(t *testing.T) *gorm.DB {
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
	return db
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			Lifetime:         168 * time.Hour,
			RememberLifetime: 720 * time.Hour,
		},
		Content: config.ContentConfig{TotalChapters: 10},
	}
}

func seedUser(t *testing.T, db *gorm.DB, username, password string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newProgressService(t *testing.T) (*ProgressService, *gorm.DB) {
	t.Helper()

	db := testDB(t)
	return NewProgressService(repository.NewProgressRepository(db), testConfig(), db), db
}
