// Package violations records every emitted violation for later review. The
// Publisher sits on the proctoring hot path, so in async mode it never blocks:
// when the buffer is full the record is dropped and counted.
package violations

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
)

type Publisher struct {
	writer  Writer
	records chan Record
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	async   bool

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues records and persists them on a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.records = make(chan Record, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithPublisherMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func WithPublisherClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(writer Writer, opts ...PublisherOption) *Publisher {
	p := &Publisher{writer: writer, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.process()
	}
	return p
}

func (p *Publisher) process() {
	defer p.wg.Done()
	for rec := range p.records {
		if err := p.writer.Append(context.Background(), rec); err != nil {
			p.failed(rec, err)
		}
	}
}

func (p *Publisher) failed(rec Record, err error) {
	p.metrics.IncrementSinkFailure("publisher")
	if p.logger != nil {
		p.logger.Error("proctoring_violation_persist_failed",
			"error", err,
			"session_id", rec.SessionID,
			"violation_id", rec.ID,
			"violation_type", rec.Type,
		)
	}
}

// Emit satisfies the session sink contract.
func (p *Publisher) Emit(ctx context.Context, info models.SessionInfo, ev models.ViolationEvent) error {
	rec := NewRecord(info, ev, p.now())
	if !p.async {
		return p.writer.Append(ctx, rec)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil
	}
	select {
	case p.records <- rec:
	default:
		p.metrics.IncrementSinkDropped()
		if p.logger != nil {
			p.logger.Warn("proctoring_violation_buffer_full",
				"session_id", rec.SessionID,
				"violation_type", rec.Type,
			)
		}
	}
	return nil
}

// Close stops accepting records and waits for queued ones to be persisted.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if !p.async {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.records)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
