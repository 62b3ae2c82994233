package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTopic is the topic events land on unless the deployment picks
// another one.
const DefaultTopic = "namelease.events"

// KafkaSink produces events to a Kafka-compatible broker as JSON records
// keyed by Event.Key, so consumers see per-name changes in order.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// KafkaSinkOption configures optional sink dependencies.
type KafkaSinkOption func(*KafkaSink)

// WithKafkaLogger sets the logger used during sink setup.
func WithKafkaLogger(logger *slog.Logger) KafkaSinkOption {
	return func(s *KafkaSink) {
		s.logger = logger
	}
}

// NewKafkaSink connects to the brokers and makes sure the topic exists.
// Broker defaults decide partition count and replication; per-key ordering
// holds at any partition count.
func NewKafkaSink(ctx context.Context, brokers []string, topic string, opts ...KafkaSinkOption) (*KafkaSink, error) {
	if topic == "" {
		topic = DefaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to kafka: %w", err)
	}

	s := &KafkaSink{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	s.logger.InfoContext(ctx, "kafka sink ready", slog.String("topic", topic))
	return s, nil
}

func (s *KafkaSink) ensureTopic(ctx context.Context) error {
	adm := kadm.NewClient(s.client)
	resps, err := adm.CreateTopics(ctx, -1, -1, nil, s.topic)
	if err != nil {
		return fmt.Errorf("creating topic %q: %w", s.topic, err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("creating topic %q: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Publish produces one event and waits for broker acknowledgement.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", event.ID, err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Key()),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("producing event %s: %w", event.ID, err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}
