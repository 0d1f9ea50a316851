package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"vaxledger/internal/platform/config"
)

const kafkaSetupTimeout = 10 * time.Second

func kadmTopicExists(err error) bool {
	return errors.Is(err, kerr.TopicAlreadyExists)
}

// KafkaBroadcaster publishes ledger events to a Kafka topic for external
// subscribers (dashboards, notification services). The ledger never consumes
// this topic itself.
type KafkaBroadcaster struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaBroadcaster connects to the brokers and ensures the topic exists.
// Returns nil if no brokers are configured.
func NewKafkaBroadcaster(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaBroadcaster, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	ctx, cancel := context.WithTimeout(context.Background(), kafkaSetupTimeout)
	defer cancel()
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, cfg.Topic); err != nil {
		// Already-exists is fine; anything else is surfaced at startup.
		if !kadmTopicExists(err) {
			client.Close()
			return nil, fmt.Errorf("ensure topic %q: %w", cfg.Topic, err)
		}
	}

	return &KafkaBroadcaster{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish sends one event. Keyed by child identifier so per-record ordering
// survives partitioning.
func (b *KafkaBroadcaster) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: b.topic,
		Key:   []byte(event.ChildID.String()),
		Value: value,
	}
	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (b *KafkaBroadcaster) Close() {
	b.client.Close()
}
