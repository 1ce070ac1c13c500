package repository

import (
	"context"
	"errors"
	"testing"

	"amateurs/internal/models"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_TransactionRollsBack(t *testing.T) {
	db := setupSQLiteDB(t)
	store := NewStore(db)
	ctx := context.Background()
	owner := seedUser(t, db, "tx")

	boom := errors.New("boom")
	var postID uint
	err := store.Transaction(ctx, func(tx Store) error {
		post := models.NewPost(models.PostRequest{Title: "rolled back"}, owner.ID, models.BoardFree)
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		postID = post.ID
		if err := tx.Statistics().Create(ctx, post.ID); err != nil {
			return err
		}
		if err := tx.Images().SaveAll(ctx, post.ID, []string{"https://img/a.png"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NotZero(t, postID)

	_, err = store.Posts().FindByID(ctx, postID)
	assert.True(t, models.IsNotFound(err))
	_, err = store.Statistics().GetViewCount(ctx, postID)
	assert.True(t, models.IsNotFound(err))
	images, err := store.Images().FindByPostID(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestPostImageRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostImageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, 3, nil))
	require.NoError(t, repo.SaveAll(ctx, 3, []string{"https://img/a.png", "https://img/b.png"}))

	images, err := repo.FindByPostID(ctx, 3)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "https://img/a.png", images[0].ImageURL)

	require.NoError(t, repo.DeleteByPostID(ctx, 3))
	images, err = repo.FindByPostID(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestEmbeddingRepository_Upsert(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewEmbeddingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.PostEmbedding{
		PostID: 4, BoardType: models.BoardFree, Content: "v1", Embedding: pgvector.NewVector([]float32{1, 0}),
	}))
	require.NoError(t, repo.Upsert(ctx, &models.PostEmbedding{
		PostID: 4, BoardType: models.BoardFree, Content: "v2", Embedding: pgvector.NewVector([]float32{0, 1}),
	}))

	got, err := repo.FindByPostID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
	assert.Equal(t, []float32{0, 1}, got.Embedding.Slice())

	require.NoError(t, repo.DeleteByPostID(ctx, 4))
	_, err = repo.FindByPostID(ctx, 4)
	assert.True(t, models.IsNotFound(err))
}
