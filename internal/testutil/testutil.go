// Package testutil holds the in-memory backends shared by package tests.
package testutil

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-matcher/internal/cache"
	"github.com/oggyb/muzz-matcher/internal/db"
	applog "github.com/oggyb/muzz-matcher/internal/logger"
)

// SQLite opens a private in-memory database named after the test and
// migrates the schema. A single connection serialises writers the way
// row locks would on MySQL.
func SQLite(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// Redis starts a miniredis and returns a cache bound to it.
func Redis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

// Logger discards everything.
func Logger() *slog.Logger {
	return applog.Discard()
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// SeedUsers inserts users with filler account columns. Zero Active/LocationVisible
// are stored as the column defaults (true); flip them with Update afterwards.
func SeedUsers(t *testing.T, gdb *gorm.DB, users ...db.User) {
	t.Helper()
	for i := range users {
		u := users[i]
		if u.Username == "" {
			u.Username = fmt.Sprintf("user%d", u.ID)
		}
		if u.Email == "" {
			u.Email = fmt.Sprintf("user%d@test.com", u.ID)
		}
		if u.PasswordHash == "" {
			u.PasswordHash = "x"
		}
		if u.Gender == "" {
			u.Gender = "female"
		}
		require.NoError(t, gdb.Create(&u).Error)
	}
}
