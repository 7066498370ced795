package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"proctor/internal/platform/config"
	"proctor/internal/platform/logger"
	"proctor/internal/platform/tracer"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
	"proctor/internal/proctoring/replay"
	"proctor/internal/proctoring/session"
)

const shutdownTimeout = 10 * time.Second

// main proctors one session: it replays the configured trace through the
// engine, serves the local status API while the session runs, and exits once
// the session has been submitted or the process is signalled.
func main() {
	os.Exit(agent())
}

func agent() int {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 2
	}
	log := logger.New(cfg.LogLevel)
	if cfg.LogFile != "" {
		var closer io.Closer
		log, closer = logger.NewRotating(cfg.LogLevel, logger.FileConfig{
			Path:       cfg.LogFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		})
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("proctor_agent_failed", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Agent, log *slog.Logger) error {
	if cfg.TraceFile == "" {
		return errors.New("PROCTOR_TRACE_FILE is required")
	}
	trace, err := replay.Load(cfg.TraceFile)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	tr := tracer.NewOTel()

	infra, err := openInfra(ctx, cfg, reg, log)
	if err != nil {
		return err
	}
	defer infra.close(log)

	player := replay.NewPlayer(trace, replay.WithLogger(log))
	detector, closeDetector, err := buildDetector(cfg, player, tr)
	if err != nil {
		return err
	}
	defer closeDetector()

	publisher, lister := buildViolationLog(cfg, infra, m, log)
	defer publisher.Close()

	submitter, err := buildSubmitter(cfg, log)
	if err != nil {
		return err
	}

	ctrl, err := session.New(player, detector, submitter,
		session.WithLogger(log),
		session.WithConfig(cfg.Engine),
		session.WithMetrics(m),
		session.WithTracer(tr),
		session.WithSink(publisher),
		session.WithSignals(player),
		session.WithSessionInfo(trace.SessionInfo()),
		session.WithUserAgent(trace.Session.UserAgent),
		session.OnWarning(func(w models.Warning) {
			log.Warn("proctoring_candidate_warned", "type", w.Type, "strike", w.Strike, "message", w.Message)
		}),
		session.OnTerminated(func(n models.TerminationNotice) {
			log.Warn("proctoring_candidate_notified", "reason", n.Reason, "message", n.Message)
		}),
	)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, ctrl, lister, infra, reg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("proctor_agent_listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http_shutdown_failed", "error", err)
		}
	}()

	if err := ctrl.Start(ctx, trace.Requirements); err != nil {
		return fmt.Errorf("start proctoring: %w", err)
	}

	playCtx, cancelPlay := context.WithCancel(ctx)
	defer cancelPlay()
	go func() {
		if err := player.Run(playCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("replay_interrupted", "error", err)
		}
	}()

	select {
	case <-ctrl.Done():
		log.Info("proctor_agent_session_closed", "state", ctrl.State())
	case <-player.Done():
		if ctx.Err() != nil || ctrl.State().IsTerminal() {
			return nil
		}
		if err := ctrl.Submit(ctx); err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("proctor_agent_interrupted", "state", ctrl.State())
	}
	return nil
}
