package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"amateurs/internal/observability"
)

const localRecordTimeout = 5 * time.Second

// LocalPublisher records events in-process on a separate goroutine.
type LocalPublisher struct {
	recorder Recorder
	wg       sync.WaitGroup
}

func NewLocalPublisher(recorder Recorder) *LocalPublisher {
	return &LocalPublisher{recorder: recorder}
}

func (p *LocalPublisher) PublishPostViewed(ctx context.Context, evt PostViewedEvent) error {
	correlationID := observability.ExtractCorrelationID(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		recordCtx, cancel := context.WithTimeout(
			observability.WithCorrelationID(context.Background(), correlationID), localRecordTimeout)
		defer cancel()
		if err := p.recorder.Record(recordCtx, evt); err != nil {
			observability.GlobalLogger.WarnContext(recordCtx, "failed to record post view",
				slog.Uint64("post_id", uint64(evt.PostID)),
				slog.String("error", err.Error()),
			)
		}
	}()
	observability.PostViewEventsTotal.WithLabelValues("local", "published").Inc()
	return nil
}

// Wait blocks until every published event has been recorded.
func (p *LocalPublisher) Wait() {
	p.wg.Wait()
}
