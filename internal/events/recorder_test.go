package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"amateurs/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsStub struct {
	mu          sync.Mutex
	increments  map[uint]int
	incrementFn func(ctx context.Context, postID uint) error
}

func newStatsStub() *statsStub {
	return &statsStub{increments: map[uint]int{}}
}

func (s *statsStub) Create(context.Context, uint) error { return nil }

func (s *statsStub) GetViewCount(_ context.Context, postID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.increments[postID]), nil
}

func (s *statsStub) IncrementViewCount(ctx context.Context, postID uint) error {
	if s.incrementFn != nil {
		if err := s.incrementFn(ctx, postID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments[postID]++
	return nil
}

func (s *statsStub) DeleteByPostID(context.Context, uint) error { return nil }

func (s *statsStub) count(postID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.increments[postID]
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestViewRecorder_DedupesWithinWindow(t *testing.T) {
	mr, rdb := newRedis(t)
	stats := newStatsStub()
	rec := NewViewRecorder(stats, rdb, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, NewPostViewedEvent(1, 0, "10.0.0.1")))
	require.NoError(t, rec.Record(ctx, NewPostViewedEvent(1, 0, "10.0.0.1")))
	assert.Equal(t, 1, stats.count(1), "repeat view from one origin is ignored")

	require.NoError(t, rec.Record(ctx, NewPostViewedEvent(1, 0, "10.0.0.2")))
	require.NoError(t, rec.Record(ctx, NewPostViewedEvent(1, 7, "10.0.0.1")))
	assert.Equal(t, 3, stats.count(1))

	require.NoError(t, rec.Record(ctx, NewPostViewedEvent(2, 0, "10.0.0.1")))
	assert.Equal(t, 1, stats.count(2), "dedupe is per post")

	mr.FastForward(11 * time.Minute)
	require.NoError(t, rec.Record(ctx, NewPostViewedEvent(1, 0, "10.0.0.1")))
	assert.Equal(t, 4, stats.count(1), "window expiry counts the origin again")
}

func TestViewRecorder_WithoutRedisCountsEveryView(t *testing.T) {
	stats := newStatsStub()
	rec := NewViewRecorder(stats, nil, 10*time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, rec.Record(context.Background(), NewPostViewedEvent(5, 0, "1.1.1.1")))
	}
	assert.Equal(t, 3, stats.count(5))
}

func TestViewRecorder_Errors(t *testing.T) {
	stats := newStatsStub()
	rec := NewViewRecorder(stats, nil, 0)

	stats.incrementFn = func(context.Context, uint) error {
		return models.NewNotFoundError("PostStatistics", 9)
	}
	assert.NoError(t, rec.Record(context.Background(), NewPostViewedEvent(9, 0, "ip")), "views of deleted posts are dropped")

	boom := errors.New("db down")
	stats.incrementFn = func(context.Context, uint) error { return boom }
	assert.ErrorIs(t, rec.Record(context.Background(), NewPostViewedEvent(9, 0, "ip")), boom)
}

func TestPostViewedEvent(t *testing.T) {
	a := NewPostViewedEvent(1, 0, "1.2.3.4")
	b := NewPostViewedEvent(1, 0, "1.2.3.4")
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.Equal(t, "ip:1.2.3.4", a.Origin())
	assert.Equal(t, "user:3", NewPostViewedEvent(1, 3, "1.2.3.4").Origin())
	assert.WithinDuration(t, time.Now(), a.OccurredAt, time.Second)
}
