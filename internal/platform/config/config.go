// Package config reads the agent's environment. The proctoring core never
// touches env vars; it receives a proctoring config.Config built here.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"proctor/internal/platform/database"
	"proctor/internal/platform/kafka"
	proctoring "proctor/internal/proctoring/config"
)

type Agent struct {
	Addr        string
	Environment string
	LogLevel    string
	TraceFile   string
	// LogFile adds a rotating JSON log file next to stdout when set.
	LogFile string

	SubmitURL  string
	SigningKey string

	FaceModel  string
	ORTLibrary string

	Redis    RedisConfig
	Kafka    kafka.ProducerConfig
	Database database.Config

	// PublishBuffer sizes the async violation publisher; 0 writes inline.
	PublishBuffer int

	Engine proctoring.Config
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		PoolSize:     10,
		MinIdleConns: 1,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		TTL:          7 * 24 * time.Hour,
	}
}

// FromEnv reads the process environment.
func FromEnv() (Agent, error) {
	return Load(os.Getenv)
}

// Load builds the agent config from getenv, starting from defaults. Every
// malformed value is reported, not just the first.
func Load(getenv func(string) string) (Agent, error) {
	r := reader{getenv: getenv}
	cfg := Agent{
		Addr:          r.str("PROCTOR_ADDR", ":8090"),
		Environment:   r.str("PROCTOR_ENV", "local"),
		LogLevel:      r.str("PROCTOR_LOG_LEVEL", "info"),
		TraceFile:     r.str("PROCTOR_TRACE_FILE", ""),
		LogFile:       r.str("PROCTOR_LOG_FILE", ""),
		SubmitURL:     r.str("PROCTOR_SUBMIT_URL", ""),
		SigningKey:    r.str("PROCTOR_SIGNING_KEY", ""),
		FaceModel:     r.str("PROCTOR_FACE_MODEL", ""),
		ORTLibrary:    r.str("PROCTOR_ORT_LIBRARY", ""),
		PublishBuffer: r.int("PROCTOR_PUBLISH_BUFFER", 256),
		Redis:         DefaultRedisConfig(),
		Kafka:         kafka.DefaultProducerConfig(),
		Database:      database.DefaultConfig(),
		Engine:        proctoring.DefaultConfig(),
	}

	cfg.Redis.URL = r.str("REDIS_URL", "")
	cfg.Redis.TTL = r.duration("REDIS_VIOLATION_TTL", cfg.Redis.TTL)
	cfg.Kafka.Brokers = r.str("KAFKA_BROKERS", "")
	cfg.Kafka.Topic = r.str("KAFKA_VIOLATIONS_TOPIC", cfg.Kafka.Topic)
	cfg.Database.URL = r.str("DATABASE_URL", "")

	e := &cfg.Engine
	e.ThrottleWindow = r.duration("PROCTOR_THROTTLE_WINDOW", e.ThrottleWindow)
	e.FacePollInterval = r.duration("PROCTOR_FACE_POLL_INTERVAL", e.FacePollInterval)
	e.AudioPollInterval = r.duration("PROCTOR_AUDIO_POLL_INTERVAL", e.AudioPollInterval)
	e.VoiceMinDuration = r.duration("PROCTOR_VOICE_MIN_DURATION", e.VoiceMinDuration)
	e.VoiceThreshold = r.float("PROCTOR_VOICE_THRESHOLD", e.VoiceThreshold)
	e.HighSeverityViolationLimit = r.int("PROCTOR_VIOLATION_LIMIT", e.HighSeverityViolationLimit)
	e.TabSwitchStrikes = r.int("PROCTOR_TAB_SWITCH_STRIKES", e.TabSwitchStrikes)

	if err := errors.Join(r.errs...); err != nil {
		return Agent{}, err
	}
	if err := e.Validate(); err != nil {
		return Agent{}, err
	}
	return cfg, nil
}

// Ingest configures the archive process that drains the violation topic.
type Ingest struct {
	Addr        string
	Environment string
	LogLevel    string

	Kafka    kafka.ConsumerConfig
	Redis    RedisConfig
	Database database.Config
}

func IngestFromEnv() (Ingest, error) {
	return LoadIngest(os.Getenv)
}

// LoadIngest requires brokers and at least one archive backend.
func LoadIngest(getenv func(string) string) (Ingest, error) {
	r := reader{getenv: getenv}
	cfg := Ingest{
		Addr:        r.str("PROCTOR_INGEST_ADDR", ":8091"),
		Environment: r.str("PROCTOR_ENV", "local"),
		LogLevel:    r.str("PROCTOR_LOG_LEVEL", "info"),
		Kafka:       kafka.DefaultConsumerConfig(),
		Redis:       DefaultRedisConfig(),
		Database:    database.DefaultConfig(),
	}
	cfg.Kafka.Brokers = r.str("KAFKA_BROKERS", "")
	cfg.Kafka.Topic = r.str("KAFKA_VIOLATIONS_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = r.str("KAFKA_CONSUMER_GROUP", cfg.Kafka.GroupID)
	cfg.Kafka.ResetOffset = r.str("KAFKA_RESET_OFFSET", cfg.Kafka.ResetOffset)
	cfg.Redis.URL = r.str("REDIS_URL", "")
	cfg.Redis.TTL = r.duration("REDIS_VIOLATION_TTL", cfg.Redis.TTL)
	cfg.Database.URL = r.str("DATABASE_URL", "")

	if cfg.Kafka.Brokers == "" {
		r.errs = append(r.errs, errors.New("KAFKA_BROKERS is required"))
	}
	if cfg.Kafka.ResetOffset != "earliest" && cfg.Kafka.ResetOffset != "latest" {
		r.errs = append(r.errs, fmt.Errorf("KAFKA_RESET_OFFSET: must be earliest or latest, got %q", cfg.Kafka.ResetOffset))
	}
	if cfg.Database.URL == "" && cfg.Redis.URL == "" {
		r.errs = append(r.errs, errors.New("DATABASE_URL or REDIS_URL is required"))
	}
	if err := errors.Join(r.errs...); err != nil {
		return Ingest{}, err
	}
	return cfg, nil
}

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) str(key, fallback string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (r *reader) int(key string, fallback int) int {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *reader) float(key string, fallback float64) float64 {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}
