package events

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"amateurs/internal/config"
	"amateurs/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Bus wires the publisher and consumer for the configured VIEW_EVENTS_BROKER.
type Bus struct {
	Publisher Publisher
	Broker    string

	start  func(ctx context.Context) error
	closer func() error
}

// NewBus selects the view event transport. The redis broker falls back to
// local delivery when no Redis client is available.
func NewBus(cfg *config.Config, rdb *redis.Client, recorder Recorder) (*Bus, error) {
	switch cfg.ViewEventsBroker {
	case config.BrokerKafka:
		brokers := splitBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka broker")
		}
		writer := NewKafkaWriter(brokers, cfg.KafkaViewTopic)
		consumer := NewKafkaConsumer(NewKafkaReader(brokers, cfg.KafkaViewTopic, cfg.KafkaGroupID), recorder)
		return &Bus{
			Publisher: NewKafkaPublisher(writer),
			Broker:    config.BrokerKafka,
			start: func(ctx context.Context) error {
				go func() {
					if err := consumer.Run(ctx); err != nil {
						observability.GlobalLogger.Error("kafka view consumer stopped", slog.String("error", err.Error()))
					}
				}()
				return nil
			},
			closer: func() error {
				return errors.Join(writer.Close(), consumer.Close())
			},
		}, nil

	case config.BrokerRedis:
		if rdb != nil {
			sub := NewRedisSubscriber(rdb, recorder)
			return &Bus{
				Publisher: NewRedisPublisher(rdb),
				Broker:    config.BrokerRedis,
				start:     sub.Start,
			}, nil
		}
		observability.GlobalLogger.Warn("redis unavailable, delivering view events locally")
	}

	local := NewLocalPublisher(recorder)
	return &Bus{
		Publisher: local,
		Broker:    config.BrokerLocal,
		closer: func() error {
			local.Wait()
			return nil
		},
	}, nil
}

// Start launches the consumer side, if the broker has one.
func (b *Bus) Start(ctx context.Context) error {
	if b.start == nil {
		return nil
	}
	return b.start(ctx)
}

// Close flushes and releases broker connections.
func (b *Bus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

func splitBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
