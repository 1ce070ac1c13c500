package events

import (
	"context"
	"log/slog"
	"time"

	"amateurs/internal/cache"
	"amateurs/internal/models"
	"amateurs/internal/observability"
	"amateurs/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ViewRecorder turns view events into view count increments.
type ViewRecorder struct {
	stats  repository.StatisticsRepository
	rdb    *redis.Client
	window time.Duration
}

// NewViewRecorder returns a recorder. With a nil rdb or a zero window every
// event is counted.
func NewViewRecorder(stats repository.StatisticsRepository, rdb *redis.Client, window time.Duration) *ViewRecorder {
	return &ViewRecorder{stats: stats, rdb: rdb, window: window}
}

// Record counts evt unless the same origin already viewed the post within the window.
// Events for posts that no longer exist are dropped.
func (r *ViewRecorder) Record(ctx context.Context, evt PostViewedEvent) error {
	if r.rdb != nil && r.window > 0 {
		first, err := r.rdb.SetNX(ctx, cache.ViewDedupeKey(evt.PostID, evt.Origin()), evt.EventID, r.window).Result()
		if err != nil {
			observability.GlobalLogger.WarnContext(ctx, "view dedupe unavailable, counting view",
				slog.Uint64("post_id", uint64(evt.PostID)),
				slog.String("error", err.Error()),
			)
		} else if !first {
			observability.PostViewEventsTotal.WithLabelValues("recorder", "deduplicated").Inc()
			return nil
		}
	}

	if err := r.stats.IncrementViewCount(ctx, evt.PostID); err != nil {
		if models.IsNotFound(err) {
			observability.PostViewEventsTotal.WithLabelValues("recorder", "dropped").Inc()
			return nil
		}
		observability.PostViewEventsTotal.WithLabelValues("recorder", "failed").Inc()
		return err
	}
	observability.PostViewEventsTotal.WithLabelValues("recorder", "recorded").Inc()
	return nil
}
