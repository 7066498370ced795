package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// HealthChecker dials each broker until one answers.
type HealthChecker struct {
	brokers []string
	timeout time.Duration
}

func NewHealthChecker(cfg ProducerConfig) *HealthChecker {
	return &HealthChecker{brokers: cfg.BrokerList(), timeout: 3 * time.Second}
}

func (h *HealthChecker) Name() string { return "kafka" }

func (h *HealthChecker) Check(ctx context.Context) error {
	if len(h.brokers) == 0 {
		return errors.New("kafka brokers not configured")
	}
	dialer := net.Dialer{Timeout: h.timeout}
	var lastErr error
	for _, broker := range h.brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
}
