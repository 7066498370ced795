//go:build integration

package consumer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proctor/internal/platform/kafka"
	"proctor/internal/platform/kafka/consumer"
	"proctor/internal/platform/kafka/producer"
	"proctor/pkg/testutil/containers"
)

func TestConsumerReceivesProducedMessages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	kc := containers.GetManager().GetKafka(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	const topic = "proctoring.violations.consumer-it"
	require.NoError(t, kc.CreateTopic(ctx, topic, 1))

	pcfg := kafka.DefaultProducerConfig()
	pcfg.Brokers = kc.Brokers
	pcfg.Topic = topic
	prod, err := producer.New(pcfg)
	require.NoError(t, err)
	defer func() { _ = prod.Close(5 * time.Second) }()
	require.NoError(t, prod.Produce(ctx, &producer.Message{
		Key:     []byte("s-1"),
		Value:   []byte(`{"id":"v-1"}`),
		Headers: map[string]string{"violation_type": "TAB_SWITCH"},
	}))

	received := make(chan *consumer.Message, 1)
	ccfg := kafka.DefaultConsumerConfig()
	ccfg.Brokers = kc.Brokers
	ccfg.Topic = topic
	ccfg.GroupID = "consumer-it"
	c, err := consumer.New(ccfg, consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		select {
		case received <- msg:
		default:
		}
		return nil
	}))
	require.NoError(t, err)
	go func() { _ = c.Run(ctx) }()
	defer c.Close()

	select {
	case msg := <-received:
		assert.Equal(t, "s-1", string(msg.Key))
		assert.Equal(t, "TAB_SWITCH", msg.Headers["violation_type"])
	case <-ctx.Done():
		t.Fatal("no message consumed")
	}
}
