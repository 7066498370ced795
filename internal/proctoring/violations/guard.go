package violations

import (
	"context"
	"fmt"
	"log/slog"

	"proctor/internal/platform/sentinel"
	"proctor/internal/proctoring/metrics"
	"proctor/pkg/platform/circuit"
)

// Guarded skips a failing backend while its breaker is open so the publisher
// queue keeps draining into the healthy ones.
type Guarded struct {
	writer  Writer
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func Guard(writer Writer, breaker *circuit.Breaker, logger *slog.Logger, m *metrics.Metrics) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{writer: writer, breaker: breaker, logger: logger, metrics: m}
}

func (g *Guarded) Append(ctx context.Context, rec Record) error {
	if !g.breaker.Allow() {
		return fmt.Errorf("sink %s skipped: %w", g.breaker.Name(), sentinel.ErrUnavailable)
	}
	err := g.writer.Append(ctx, rec)
	from, to := g.breaker.Record(err)
	if from != to {
		g.logger.Warn("proctoring_sink_circuit_changed",
			"sink", g.breaker.Name(),
			"from", from.String(),
			"to", to.String(),
		)
		g.metrics.SetSinkCircuitOpen(g.breaker.Name(), to == circuit.StateOpen)
	}
	return err
}
