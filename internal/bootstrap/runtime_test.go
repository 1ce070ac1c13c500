package bootstrap

import (
	"context"
	"testing"
	"time"

	"amateurs/internal/config"
	"amateurs/internal/database"
	"amateurs/internal/embedding"
	"amateurs/internal/events"
	"amateurs/internal/models"
	"amateurs/internal/seed"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqliteConnect(t *testing.T) func(*config.Config) (*gorm.DB, error) {
	t.Helper()
	return func(*config.Config) (*gorm.DB, error) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, database.Migrate(db)
	}
}

func testConfig(redisURL string) *config.Config {
	return &config.Config{
		Env:                     "test",
		DBDriver:                config.DriverSQLite,
		RedisURL:                redisURL,
		ViewEventsBroker:        config.BrokerLocal,
		ViewDedupeWindowMinutes: 60,
		EmbeddingWorkers:        2,
		EmbeddingTimeoutSeconds: 1,
	}
}

func TestInitRuntime_WiresPostLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	rt, err := InitRuntime(testConfig(mr.Addr()), Options{Connect: sqliteConnect(t)})
	require.NoError(t, err)

	require.NotNil(t, rt.Redis)
	assert.Equal(t, config.BrokerLocal, rt.Bus.Broker)

	ctx := context.Background()
	owner := models.User{Email: "o@example.com", Nickname: "owner", Role: models.RoleUser}
	require.NoError(t, rt.DB.Create(&owner).Error)
	viewer := models.Viewer{ID: owner.ID, Role: owner.Role}

	post, err := rt.Community.CreatePost(ctx, models.PostRequest{Title: "hello"}, models.BoardFree, viewer)
	require.NoError(t, err)

	_, err = rt.Community.GetPost(ctx, post.ID, models.Viewer{}, "10.0.0.1")
	require.NoError(t, err)
	_, err = rt.Community.GetPost(ctx, post.ID, models.Viewer{}, "10.0.0.1")
	require.NoError(t, err)

	local, ok := rt.Bus.Publisher.(*events.LocalPublisher)
	require.True(t, ok)
	local.Wait()

	var stats models.PostStatistics
	require.NoError(t, rt.DB.First(&stats, "post_id = ?", post.ID).Error)
	assert.EqualValues(t, 1, stats.ViewCount, "repeat view from one address counts once")

	db := rt.DB
	require.NoError(t, rt.Close(context.Background()))
	assert.Error(t, db.Exec("SELECT 1").Error, "database should be closed")
}

func TestInitRuntime_WithoutRedis(t *testing.T) {
	rt, err := InitRuntime(testConfig(""), Options{Connect: sqliteConnect(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	assert.Nil(t, rt.Redis)
	assert.Equal(t, config.BrokerLocal, rt.Bus.Broker)
	assert.NotNil(t, rt.Community)
}

func TestInitRuntime_RedisBrokerFallsBackWithoutRedis(t *testing.T) {
	cfg := testConfig("")
	cfg.ViewEventsBroker = config.BrokerRedis

	rt, err := InitRuntime(cfg, Options{Connect: sqliteConnect(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	assert.Equal(t, config.BrokerLocal, rt.Bus.Broker)
}

func TestInitRuntime_SeedsEmptyDatabase(t *testing.T) {
	rt, err := InitRuntime(testConfig(""), Options{Connect: sqliteConnect(t), SeedDemoData: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	var posts int64
	require.NoError(t, rt.DB.Model(&models.Post{}).Count(&posts).Error)
	assert.Positive(t, posts)

	var admin models.User
	require.NoError(t, rt.DB.First(&admin, "email = ?", seed.DemoAdminEmail).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestNewIndexer(t *testing.T) {
	db, err := sqliteConnect(t)(nil)
	require.NoError(t, err)

	cfg := testConfig("")
	assert.IsType(t, embedding.NoopIndexer{}, newIndexer(cfg, db, time.Second))

	cfg.EmbeddingEnabled = true
	cfg.EmbeddingEndpoint = "http://localhost:11434/api/embeddings"
	cfg.EmbeddingDimensions = 8
	// pgvector is postgres only
	assert.IsType(t, embedding.NoopIndexer{}, newIndexer(cfg, db, time.Second))
}
