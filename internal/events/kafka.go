package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"amateurs/internal/observability"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a synchronous writer keyed by post id, so events for
// one post stay on one partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewKafkaReader builds a consumer group reader with manual commits.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
}

// KafkaPublisher writes view events to a Kafka topic.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishPostViewed(ctx context.Context, evt PostViewedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(evt.PostID), 10)),
		Value: payload,
		Time:  evt.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	observability.PostViewEventsTotal.WithLabelValues("kafka", "published").Inc()
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaConsumer feeds events from a Kafka topic into a Recorder. View counts
// are best effort: a message is committed even when recording it fails.
type KafkaConsumer struct {
	reader   MessageReader
	recorder Recorder
}

func NewKafkaConsumer(reader MessageReader, recorder Recorder) *KafkaConsumer {
	return &KafkaConsumer{reader: reader, recorder: recorder}
}

// Run consumes until ctx is cancelled or the reader is closed.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			observability.GlobalLogger.WarnContext(ctx, "kafka commit failed",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message) {
	var evt PostViewedEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		observability.PostViewEventsTotal.WithLabelValues("kafka", "malformed").Inc()
		observability.GlobalLogger.WarnContext(ctx, "malformed post view event",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := c.recorder.Record(ctx, evt); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to record post view",
			slog.Uint64("post_id", uint64(evt.PostID)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
