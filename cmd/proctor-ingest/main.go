package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proctor/internal/platform/config"
	"proctor/internal/platform/database"
	"proctor/internal/platform/health"
	"proctor/internal/platform/kafka"
	"proctor/internal/platform/kafka/consumer"
	"proctor/internal/platform/logger"
	"proctor/internal/platform/middleware"
	platformredis "proctor/internal/platform/redis"
	"proctor/internal/proctoring/violations"
)

// main drains the violation topic into the durable archive stores.
func main() {
	cfg, err := config.IngestFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("proctor_ingest_failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Ingest, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	hh := health.New(cfg.Environment)

	var writers []violations.Writer
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if db != nil {
		writers = append(writers, violations.NewPostgresStore(db.DB()))
		hh.RegisterCheck("postgres", db.Health)
	}

	rc, err := platformredis.New(ctx, cfg.Redis, platformredis.NewPoolMetrics(reg))
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
		writers = append(writers, violations.NewRedisStore(rc.Client, cfg.Redis.TTL))
		hh.RegisterCheck("redis", rc.Health)
	}
	hh.RegisterCheck("kafka", kafka.NewHealthChecker(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers}).Check)

	ingester := violations.NewIngester(violations.NewMulti(writers...), log)
	c, err := consumer.New(cfg.Kafka, ingester, consumer.WithLogger(log))
	if err != nil {
		return err
	}
	defer c.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	hh.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("proctor_ingest_started",
		"topic", cfg.Kafka.Topic,
		"group", cfg.Kafka.GroupID,
		"writers", len(writers),
	)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("proctor_ingest_stopped")
	return nil
}
