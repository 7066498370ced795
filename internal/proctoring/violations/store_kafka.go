package violations

import (
	"context"
	"encoding/json"
	"fmt"

	"proctor/internal/platform/kafka/producer"
)

const DefaultKafkaTopic = "proctoring.violations"

// MessageProducer is satisfied by producer.Producer and producer.NoopProducer.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaWriter publishes records keyed by session so a session's violations
// stay ordered within one partition.
type KafkaWriter struct {
	producer MessageProducer
	topic    string
}

func NewKafkaWriter(p MessageProducer, topic string) *KafkaWriter {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	return &KafkaWriter{producer: p, topic: topic}
}

func (w *KafkaWriter) Append(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal violation record: %w", err)
	}
	return w.producer.Produce(ctx, &producer.Message{
		Topic: w.topic,
		Key:   []byte(rec.SessionID),
		Value: payload,
		Headers: map[string]string{
			"violation_type": string(rec.Type),
			"severity":       rec.Severity.String(),
		},
	})
}
