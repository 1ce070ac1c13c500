package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"amateurs/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsRepository_IncrementIsAtomicUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStatisticsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "post_statistics" SET "view_count"=view_count + $1,"updated_at"=$2 WHERE post_id = $3`)).
		WithArgs(1, sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.IncrementViewCount(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsRepository_Lifecycle(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewStatisticsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, 11))
	views, err := repo.GetViewCount(ctx, 11)
	require.NoError(t, err)
	assert.Zero(t, views)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementViewCount(ctx, 11))
		}()
	}
	wg.Wait()

	views, err = repo.GetViewCount(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(10), views)

	require.NoError(t, repo.DeleteByPostID(ctx, 11))
	_, err = repo.GetViewCount(ctx, 11)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(repo.IncrementViewCount(ctx, 11)))
}
