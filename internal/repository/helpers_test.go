package repository

import (
	"testing"
	"time"

	"amateurs/internal/database"
	"amateurs/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()
	u := &models.User{
		Email:          nickname + "@example.com",
		Nickname:       nickname,
		ImageURL:       "https://img.example.com/" + nickname + ".png",
		DevcourseName:  "BACKEND",
		DevcourseBatch: "5",
		Role:           models.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type postSeed struct {
	board     models.BoardType
	title     string
	content   string
	tags      []string
	views     int64
	createdAt time.Time
}

func seedPost(t *testing.T, db *gorm.DB, owner *models.User, s postSeed) *models.Post {
	t.Helper()
	if s.board == "" {
		s.board = models.BoardFree
	}
	p := models.NewPost(models.PostRequest{Title: s.title, Content: s.content, Tags: s.tags}, owner.ID, s.board)
	if !s.createdAt.IsZero() {
		p.CreatedAt = s.createdAt
		p.UpdatedAt = s.createdAt
	}
	require.NoError(t, NewPostRepository(db).Create(t.Context(), p))
	require.NoError(t, db.Create(&models.PostStatistics{PostID: p.ID, ViewCount: s.views}).Error)
	return p
}
