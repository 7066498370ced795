package kafka

import (
	"strings"
	"time"
)

// ProducerConfig configures the violation-stream producer.
type ProducerConfig struct {
	Brokers         string
	Topic           string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Topic:           "proctoring.violations",
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}
}

// Enabled reports whether any broker is configured.
func (c ProducerConfig) Enabled() bool {
	return strings.TrimSpace(c.Brokers) != ""
}

// BrokerList splits the comma-separated broker string, dropping blanks.
func (c ProducerConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// ConsumerConfig configures the archive consumer group.
type ConsumerConfig struct {
	Brokers string
	GroupID string
	Topic   string
	// ResetOffset is "earliest" or "latest" for groups without a commit.
	ResetOffset string
}

func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		GroupID:     "proctor-violation-archive",
		Topic:       "proctoring.violations",
		ResetOffset: "earliest",
	}
}

func (c ConsumerConfig) BrokerList() []string {
	return ProducerConfig{Brokers: c.Brokers}.BrokerList()
}
