// Package kafka publishes run lifecycle events to a Kafka topic.
//
// Events are best-effort notifications for downstream consumers such as ATS
// sync or alerting. Publishing failures are logged by callers and never fail
// a run.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// Publisher wraps a Kafka producer and implements domain.EventPublisher.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New constructs a Publisher and ensures the topic exists. Topic creation
// failures are logged but not fatal; the broker may disallow auto-creation.
func New(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	slog.Info("creating kafka event publisher", slog.Any("brokers", brokers), slog.String("topic", topic))

	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.WithHooks(kotelService.Hooks()...),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := createTopicIfNotExists(context.Background(), client, topic, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", topic),
			slog.Any("error", err))
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish emits one run lifecycle event, keyed by run id so per-run ordering
// is preserved within a partition.
func (p *Publisher) Publish(ctx domain.Context, ev domain.RunEvent) error {
	rec, err := buildRecord(p.topic, ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce: %w", err)
	}
	slog.Info("run event published",
		slog.String("type", ev.Type),
		slog.String("run_id", ev.RunID),
		slog.String("topic", p.topic))
	return nil
}

func buildRecord(topic string, ev domain.RunEvent) (*kgo.Record, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(ev.RunID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "run_id", Value: []byte(ev.RunID)},
		},
	}, nil
}

// Ping checks broker connectivity, used by the readiness probe.
func (p *Publisher) Ping(ctx domain.Context) error {
	return p.client.Ping(ctx)
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
