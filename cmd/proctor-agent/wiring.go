package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proctor/internal/platform/config"
	"proctor/internal/platform/database"
	"proctor/internal/platform/health"
	"proctor/internal/platform/kafka"
	"proctor/internal/platform/kafka/producer"
	"proctor/internal/platform/middleware"
	platformredis "proctor/internal/platform/redis"
	"proctor/internal/platform/tracer"
	"proctor/internal/proctoring/facedetect"
	"proctor/internal/proctoring/handler"
	"proctor/internal/proctoring/media"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/replay"
	"proctor/internal/proctoring/report"
	"proctor/internal/proctoring/session"
	"proctor/internal/proctoring/violations"
	"proctor/pkg/platform/circuit"
)

const poolStatsInterval = 15 * time.Second

// infra holds the optional backing services; each field is nil when unconfigured.
type infra struct {
	redis    *platformredis.Client
	db       *database.Pool
	producer *producer.Producer
	cancel   context.CancelFunc
}

func openInfra(ctx context.Context, cfg config.Agent, reg prometheus.Registerer, log *slog.Logger) (*infra, error) {
	in := &infra{cancel: func() {}}

	rc, err := platformredis.New(ctx, cfg.Redis, platformredis.NewPoolMetrics(reg))
	if err != nil {
		return nil, err
	}
	in.redis = rc

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		in.close(log)
		return nil, err
	}
	in.db = db

	if cfg.Kafka.Enabled() {
		p, err := producer.New(cfg.Kafka, producer.WithLogger(log))
		if err != nil {
			in.close(log)
			return nil, err
		}
		in.producer = p
	}

	if in.redis != nil {
		statsCtx, cancel := context.WithCancel(ctx)
		in.cancel = cancel
		go recordPoolStats(statsCtx, in.redis)
	}
	return in, nil
}

func recordPoolStats(ctx context.Context, c *platformredis.Client) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}

func (in *infra) close(log *slog.Logger) {
	in.cancel()
	if in.producer != nil {
		if err := in.producer.Close(5 * time.Second); err != nil {
			log.Warn("kafka_close_failed", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("redis_close_failed", "error", err)
		}
	}
	if err := in.db.Close(); err != nil {
		log.Warn("database_close_failed", "error", err)
	}
}

// buildDetector prefers the ONNX model and falls back to the trace's scripted
// face timeline.
func buildDetector(cfg config.Agent, player *replay.Player, tr tracer.Tracer) (media.FaceDetector, func(), error) {
	if cfg.FaceModel == "" {
		return player, func() {}, nil
	}
	d, err := facedetect.New(cfg.FaceModel,
		facedetect.WithLibraryPath(cfg.ORTLibrary),
		facedetect.WithTracer(tr),
	)
	if err != nil {
		return nil, nil, err
	}
	return d, func() { _ = d.Close() }, nil
}

// buildViolationLog fans every violation out to the memory store and each
// configured backend. The lister backing GET /session/violations is the most
// durable store available.
func buildViolationLog(cfg config.Agent, in *infra, m *metrics.Metrics, log *slog.Logger) (*violations.Publisher, handler.ViolationLister) {
	memory := violations.NewInMemoryStore()
	writers := []violations.Writer{memory}
	var lister handler.ViolationLister = memory

	guard := func(name string, w violations.Writer) violations.Writer {
		return violations.Guard(w, circuit.New(name), log, m)
	}

	if in.redis != nil {
		rs := violations.NewRedisStore(in.redis.Client, cfg.Redis.TTL)
		writers = append(writers, guard("redis", rs))
		lister = rs
	}
	if in.db != nil {
		ps := violations.NewPostgresStore(in.db.DB())
		writers = append(writers, guard("postgres", ps))
		lister = ps
	}
	if in.producer != nil {
		writers = append(writers, guard("kafka", violations.NewKafkaWriter(in.producer, cfg.Kafka.Topic)))
	}

	log.Info("proctoring_violation_log_configured", "writers", len(writers))
	pub := violations.NewPublisher(violations.NewMulti(writers...),
		violations.WithAsyncBuffer(cfg.PublishBuffer),
		violations.WithPublisherLogger(log),
		violations.WithPublisherMetrics(m),
	)
	return pub, lister
}

func buildSubmitter(cfg config.Agent, log *slog.Logger) (session.Submitter, error) {
	if cfg.SubmitURL == "" {
		log.Warn("proctoring_submit_url_missing", "fallback", "log")
		return report.NewLogSubmitter(log), nil
	}
	opts := []report.Option{report.WithLogger(log)}
	if cfg.SigningKey != "" {
		opts = append(opts, report.WithSigningKey([]byte(cfg.SigningKey)))
	}
	return report.NewHTTPSubmitter(cfg.SubmitURL, opts...)
}

func newRouter(cfg config.Agent, sess handler.Session, lister handler.ViolationLister, in *infra, reg *prometheus.Registry, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.ContentTypeJSON)

	hh := health.New(cfg.Environment)
	if in.redis != nil {
		hh.RegisterCheck("redis", in.redis.Health)
	}
	if in.db != nil {
		hh.RegisterCheck("postgres", in.db.Health)
	}
	if in.producer != nil {
		hh.RegisterCheck("kafka", kafka.NewHealthChecker(cfg.Kafka).Check)
	}
	hh.Register(r)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	handler.New(sess, lister, log).Register(r)
	return r
}
