// Package kafka publishes audit events to a Kafka topic. It is an optional
// sink alongside the in-process dispatcher: downstream compliance consumers
// read the topic, while the registry keeps serving even if the brokers are
// slow or down.
package kafka

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

	"healthledger/internal/audit"
)

// Sink produces audit events asynchronously via franz-go.
type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewSink connects to the brokers and ensures the topic exists.
func NewSink(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("create topic %s: %w", topic, err)
	}

	return &Sink{client: client, topic: topic, logger: logger}, nil
}

// payload is the JSON structure published to Kafka.
type payload struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Grantee   string `json:"grantee,omitempty"`
	ContentID string `json:"content_id,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Emit produces the event without waiting for broker acknowledgement.
// Delivery failures are logged; the calling operation has already committed.
func (s *Sink) Emit(event audit.Event) {
	p := payload{
		ID:        event.ID.String(),
		Kind:      string(event.Kind),
		Subject:   event.Subject,
		Grantee:   event.Grantee,
		ContentID: event.ContentID,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
	}
	if !event.ExpiresAt.IsZero() {
		p.ExpiresAt = event.ExpiresAt.Format(time.RFC3339Nano)
	}
	value, err := json.Marshal(p)
	if err != nil {
		s.logger.Error("marshal audit event", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: value,
	}
	s.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("audit event publish failed",
				"kind", string(event.Kind),
				"subject", event.Subject,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
