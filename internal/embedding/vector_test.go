package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"amateurs/internal/database"
	"amateurs/internal/models"
	"amateurs/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newEmbeddingServer(t *testing.T, vector []float32, status int) (*httptest.Server, *[]embedRequest) {
	t.Helper()
	var seen []embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		seen = append(seen, req)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: vector})
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestHTTPEmbedder(t *testing.T) {
	srv, seen := newEmbeddingServer(t, []float32{0.1, 0.2, 0.3}, http.StatusOK)

	vec, err := NewHTTPEmbedder(srv.URL, 3, time.Second).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	require.Len(t, *seen, 1)
	assert.Equal(t, embedRequest{Input: "hello", Dimensions: 3}, (*seen)[0])

	_, err = NewHTTPEmbedder(srv.URL, 4, time.Second).Embed(context.Background(), "hello")
	assert.ErrorContains(t, err, "dimensions")
}

func TestHTTPEmbedderServerError(t *testing.T) {
	srv, _ := newEmbeddingServer(t, nil, http.StatusBadGateway)
	_, err := NewHTTPEmbedder(srv.URL, 3, time.Second).Embed(context.Background(), "hello")
	assert.ErrorContains(t, err, "502")
}

func TestVectorIndexer(t *testing.T) {
	srv, seen := newEmbeddingServer(t, []float32{1, 2}, http.StatusOK)
	repo := repository.NewEmbeddingRepository(newSQLite(t))
	idx := NewVectorIndexer(NewHTTPEmbedder(srv.URL, 2, time.Second), repo)
	ctx := context.Background()

	post := models.Post{ID: 8, BoardType: models.BoardQnA, Title: "How to", Content: "use pgvector", Tags: "go, sql"}
	require.NoError(t, idx.Create(ctx, post))

	stored, err := repo.FindByPostID(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, models.BoardQnA, stored.BoardType)
	assert.Equal(t, []float32{1, 2}, stored.Embedding.Slice())
	assert.True(t, strings.Contains((*seen)[0].Input, "use pgvector"))

	post.Content = "edited"
	require.NoError(t, idx.Update(ctx, post))
	stored, err = repo.FindByPostID(ctx, 8)
	require.NoError(t, err)
	assert.Contains(t, stored.Content, "edited")

	require.NoError(t, idx.DeleteByPostID(ctx, 8))
	_, err = repo.FindByPostID(ctx, 8)
	assert.True(t, models.IsNotFound(err))
}
