// Package consumer runs a franz-go consumer group with manual, at-least-once
// commits.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"proctor/internal/platform/kafka"
)

// Message is a received record, detached from the client.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one message. A returned error leaves the offset
// uncommitted so the message is delivered again after a restart or rebalance.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error { return f(ctx, msg) }

type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

type Option func(*Consumer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) { c.logger = logger }
}

func New(cfg kafka.ConsumerConfig, handler Handler, opts ...Option) (*Consumer, error) {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		return nil, errors.New("kafka consumer group ID not configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka consumer topic not configured")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	reset := kgo.NewOffset().AtStart()
	if cfg.ResetOffset == "latest" {
		reset = kgo.NewOffset().AtEnd()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(reset),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	c := &Consumer{client: client, handler: handler, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run polls until ctx ends or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, fe := range fetches.Errors() {
			c.logger.Error("kafka_fetch_failed", "topic", fe.Topic, "partition", fe.Partition, "error", fe.Err)
		}

		var records []*kgo.Record
		fetches.EachRecord(func(r *kgo.Record) { records = append(records, r) })
		done := handleBatch(ctx, records, c.handler, c.logger)
		if len(done) == 0 {
			continue
		}
		if err := c.client.CommitRecords(ctx, done...); err != nil {
			c.logger.Error("kafka_commit_failed", "records", len(done), "error", err)
		}
	}
}

// handleBatch returns the records that may be committed. After a failure the
// rest of that partition is held back, since committing a later offset would
// skip the failed one.
func handleBatch(ctx context.Context, records []*kgo.Record, h Handler, logger *slog.Logger) []*kgo.Record {
	type partition struct {
		topic string
		id    int32
	}
	failed := make(map[partition]bool)
	done := make([]*kgo.Record, 0, len(records))
	for _, r := range records {
		p := partition{r.Topic, r.Partition}
		if failed[p] {
			continue
		}
		msg := fromRecord(r)
		if err := h.Handle(ctx, msg); err != nil {
			logger.Error("kafka_message_failed",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			failed[p] = true
			continue
		}
		done = append(done, r)
	}
	return done
}

func fromRecord(r *kgo.Record) *Message {
	headers := make(map[string]string, len(r.Headers))
	for _, h := range r.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Key:       r.Key,
		Value:     r.Value,
		Headers:   headers,
		Timestamp: r.Timestamp,
	}
}

// Close leaves the group and releases the client. Run returns afterwards.
func (c *Consumer) Close() {
	c.client.Close()
}
