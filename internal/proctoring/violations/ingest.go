package violations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"proctor/internal/platform/kafka/consumer"
)

// Ingester replays the violation stream into a Writer. It is the consumer
// side of KafkaWriter.
type Ingester struct {
	writer Writer
	logger *slog.Logger
}

func NewIngester(writer Writer, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{writer: writer, logger: logger}
}

// Handle decodes and appends one record. Undecodable payloads are logged and
// acknowledged so they cannot stall the partition; writer failures are
// returned for redelivery.
func (i *Ingester) Handle(ctx context.Context, msg *consumer.Message) error {
	var rec Record
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		i.logger.Warn("proctoring_violation_undecodable",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	if rec.ID == "" || rec.SessionID == "" || !rec.Type.IsValid() {
		i.logger.Warn("proctoring_violation_rejected",
			"offset", msg.Offset,
			"id", rec.ID,
			"violation_type", rec.Type,
		)
		return nil
	}
	if err := i.writer.Append(ctx, rec); err != nil {
		return fmt.Errorf("archive violation %s: %w", rec.ID, err)
	}
	return nil
}
