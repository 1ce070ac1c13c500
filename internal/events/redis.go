package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"amateurs/internal/observability"

	"github.com/redis/go-redis/v9"
)

// PostViewedChannel is the Redis pub/sub channel carrying PostViewedEvent JSON.
const PostViewedChannel = "posts:viewed"

// RedisPublisher publishes view events on PostViewedChannel.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishPostViewed(ctx context.Context, evt PostViewedEvent) error {
	if p.rdb == nil {
		return errors.New("redis client is nil")
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, PostViewedChannel, payload).Err(); err != nil {
		return err
	}
	observability.PostViewEventsTotal.WithLabelValues("redis", "published").Inc()
	return nil
}

// RedisSubscriber feeds events from PostViewedChannel into a Recorder.
type RedisSubscriber struct {
	rdb      *redis.Client
	recorder Recorder
}

func NewRedisSubscriber(rdb *redis.Client, recorder Recorder) *RedisSubscriber {
	return &RedisSubscriber{rdb: rdb, recorder: recorder}
}

// Start subscribes and returns once the subscription is confirmed. Messages
// are handled on a goroutine until ctx is cancelled.
func (s *RedisSubscriber) Start(ctx context.Context) error {
	if s.rdb == nil {
		return errors.New("redis client is nil")
	}
	sub := s.rdb.Subscribe(ctx, PostViewedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", PostViewedChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.handle(ctx, msg.Payload)
			}
		}
	}()
	return nil
}

func (s *RedisSubscriber) handle(ctx context.Context, payload string) {
	defer func() {
		if r := recover(); r != nil {
			observability.GlobalLogger.Error("panic handling post view event",
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()

	var evt PostViewedEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		observability.PostViewEventsTotal.WithLabelValues("redis", "malformed").Inc()
		observability.GlobalLogger.WarnContext(ctx, "malformed post view event", slog.String("error", err.Error()))
		return
	}
	if err := s.recorder.Record(ctx, evt); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to record post view",
			slog.Uint64("post_id", uint64(evt.PostID)),
			slog.String("error", err.Error()),
		)
	}
}
