package sampler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"proctor/internal/platform/tracer"
	"proctor/internal/proctoring/media"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
)

const faceSamplerName = "face"

var errInvalidFrame = errors.New("camera returned an invalid frame")

// FaceSampler feeds camera frames to a FaceDetector. A failing detector never
// stops sampling: the reading falls back to a single face and is marked Degraded.
type FaceSampler struct {
	camera   media.CameraStream
	detector media.FaceDetector
	consume  func(models.FaceReading)
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	now      func() time.Time
	loop     loop
}

type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	now     func() time.Time
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithClock overrides the timestamp source for readings.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewFaceSampler(camera media.CameraStream, detector media.FaceDetector, interval time.Duration, consume func(models.FaceReading), opts ...Option) *FaceSampler {
	o := applyOptions(opts)
	return &FaceSampler{
		camera:   camera,
		detector: detector,
		consume:  consume,
		interval: interval,
		logger:   o.logger,
		metrics:  o.metrics,
		tracer:   o.tracer,
		now:      o.now,
	}
}

// Start begins sampling. Returns false if the sampler is already running.
func (s *FaceSampler) Start(ctx context.Context) bool {
	return s.loop.start(ctx, s.interval, s.tick, func(n int) {
		for i := 0; i < n; i++ {
			s.metrics.IncrementSkippedTick(faceSamplerName)
		}
	})
}

// Stop halts sampling and waits for any in-flight detection to finish. No
// reading is delivered after Stop returns.
func (s *FaceSampler) Stop() {
	s.loop.stop()
}

func (s *FaceSampler) Running() bool {
	return s.loop.running()
}

func (s *FaceSampler) tick(ctx context.Context) {
	reading, ok := s.Sample(ctx)
	if !ok {
		return
	}
	s.consume(reading)
}

// Sample runs one detection. ok is false only when ctx was cancelled.
func (s *FaceSampler) Sample(ctx context.Context) (reading models.FaceReading, ok bool) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanFaceDetect)
	var spanErr error
	defer func() { span.End(spanErr) }()

	started := time.Now()
	count, err := s.detect(ctx)
	s.metrics.ObserveDetection(time.Since(started))

	if ctx.Err() != nil {
		return models.FaceReading{}, false
	}
	at := s.now()
	if err != nil {
		spanErr = err
		span.AddEvent(tracer.EventDetectorFailed)
		s.metrics.IncrementDetectorErrors()
		s.logger.Warn("face_detection_failed",
			"error", err,
			"fallback_face_count", 1,
		)
		span.SetAttributes(tracer.Bool(tracer.AttrDegraded, true))
		return models.FaceReading{FaceCount: 1, At: at, Degraded: true}, true
	}
	span.SetAttributes(tracer.Int64(tracer.AttrFaceCount, int64(count)))
	return models.FaceReading{FaceCount: count, At: at}, true
}

func (s *FaceSampler) detect(ctx context.Context) (int, error) {
	frame, err := s.camera.Frame(ctx)
	if err != nil {
		return 0, err
	}
	if !frame.Valid() {
		return 0, errInvalidFrame
	}
	count, err := s.detector.DetectFaces(ctx, frame)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, errors.New("face detector returned a negative count")
	}
	return count, nil
}
