package sampler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"proctor/internal/proctoring/media"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
)

type fakeCamera struct {
	err error
}

func (c *fakeCamera) Stop() {}

func (c *fakeCamera) Frame(context.Context) (media.Frame, error) {
	if c.err != nil {
		return media.Frame{}, c.err
	}
	return media.Frame{Width: 2, Height: 2, Pix: make([]byte, 12)}, nil
}

type fakeMic struct {
	mu   sync.Mutex
	bins []byte
}

func (m *fakeMic) Stop() {}

func (m *fakeMic) FrequencyData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bins
}

type collector[T any] struct {
	mu    sync.Mutex
	items []T
}

func (c *collector[T]) add(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, v)
}

func (c *collector[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *collector[T]) first() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[0]
}

// =============================================================================
// Face sampler
// =============================================================================

type FaceSamplerSuite struct {
	suite.Suite
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func TestFaceSamplerSuite(t *testing.T) {
	suite.Run(t, new(FaceSamplerSuite))
}

func (s *FaceSamplerSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = metrics.New(prometheus.NewRegistry())
}

func (s *FaceSamplerSuite) TestDeliversDetectorCount() {
	got := &collector[models.FaceReading]{}
	detector := media.FaceDetectorFunc(func(context.Context, media.Frame) (int, error) { return 2, nil })
	fs := NewFaceSampler(&fakeCamera{}, detector, 5*time.Millisecond, got.add, WithLogger(s.logger), WithMetrics(s.metrics))

	s.True(fs.Start(context.Background()))
	s.False(fs.Start(context.Background()), "second start is a no-op")
	s.Eventually(func() bool { return got.len() >= 2 }, time.Second, time.Millisecond)
	fs.Stop()

	r := got.first()
	s.Equal(2, r.FaceCount)
	s.False(r.Degraded)
}

func (s *FaceSamplerSuite) TestDetectorFailureIsOptimistic() {
	s.Run("detector error", func() {
		detector := media.FaceDetectorFunc(func(context.Context, media.Frame) (int, error) {
			return 0, errors.New("model not loaded")
		})
		fs := NewFaceSampler(&fakeCamera{}, detector, time.Hour, nil, WithLogger(s.logger), WithMetrics(s.metrics))
		r, ok := fs.Sample(context.Background())
		s.Require().True(ok)
		s.Equal(1, r.FaceCount)
		s.True(r.Degraded)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.DetectorErrors))
	})

	s.Run("frame error", func() {
		detector := media.FaceDetectorFunc(func(context.Context, media.Frame) (int, error) { return 0, nil })
		fs := NewFaceSampler(&fakeCamera{err: errors.New("device lost")}, detector, time.Hour, nil, WithLogger(s.logger))
		r, ok := fs.Sample(context.Background())
		s.Require().True(ok)
		s.Equal(1, r.FaceCount)
		s.True(r.Degraded)
	})

	s.Run("negative count", func() {
		detector := media.FaceDetectorFunc(func(context.Context, media.Frame) (int, error) { return -1, nil })
		fs := NewFaceSampler(&fakeCamera{}, detector, time.Hour, nil, WithLogger(s.logger))
		r, _ := fs.Sample(context.Background())
		s.True(r.Degraded)
	})
}

func (s *FaceSamplerSuite) TestNoReadingAfterStop() {
	var delivered atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	detector := media.FaceDetectorFunc(func(ctx context.Context, _ media.Frame) (int, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-release:
			return 0, nil
		}
	})
	fs := NewFaceSampler(&fakeCamera{}, detector, time.Millisecond, func(models.FaceReading) {
		delivered.Add(1)
	}, WithLogger(s.logger))

	fs.Start(context.Background())
	<-entered
	fs.Stop()
	close(release)

	s.False(fs.Running())
	s.Equal(int32(0), delivered.Load(), "cancelled detection must not be delivered")
	fs.Stop()
}

func (s *FaceSamplerSuite) TestSlowDetectorSkipsTicks() {
	detector := media.FaceDetectorFunc(func(context.Context, media.Frame) (int, error) {
		time.Sleep(25 * time.Millisecond)
		return 1, nil
	})
	var calls atomic.Int32
	var inFlight atomic.Int32
	var overlapped atomic.Bool
	wrapped := media.FaceDetectorFunc(func(ctx context.Context, f media.Frame) (int, error) {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer inFlight.Add(-1)
		calls.Add(1)
		return detector(ctx, f)
	})
	fs := NewFaceSampler(&fakeCamera{}, wrapped, 5*time.Millisecond, func(models.FaceReading) {},
		WithLogger(s.logger), WithMetrics(s.metrics))

	fs.Start(context.Background())
	s.Eventually(func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	fs.Stop()

	s.False(overlapped.Load(), "detections must never overlap")
	s.Greater(testutil.ToFloat64(s.metrics.SamplerTicksSkipped.WithLabelValues("face")), 0.0)
}

func (s *FaceSamplerSuite) TestRestartAfterStop() {
	got := &collector[models.FaceReading]{}
	detector := media.FaceDetectorFunc(func(context.Context, media.Frame) (int, error) { return 1, nil })
	fs := NewFaceSampler(&fakeCamera{}, detector, 2*time.Millisecond, got.add, WithLogger(s.logger))

	fs.Start(context.Background())
	fs.Stop()
	before := got.len()
	s.True(fs.Start(context.Background()))
	s.Eventually(func() bool { return got.len() > before }, time.Second, time.Millisecond)
	fs.Stop()
}

// =============================================================================
// Audio sampler
// =============================================================================

func TestAudioSamplerEmitsBandEnergy(t *testing.T) {
	bins := make([]byte, 128)
	for i := 10; i < 50; i++ {
		bins[i] = 80
	}
	bins[0], bins[127] = 255, 255

	mic := &fakeMic{bins: bins}
	got := &collector[models.AudioReading]{}
	as := NewAudioSampler(mic, 2*time.Millisecond, 10, 50, got.add,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	require.True(t, as.Start(context.Background()))
	assert.Eventually(t, func() bool { return got.len() >= 1 }, time.Second, time.Millisecond)
	as.Stop()
	as.Stop()

	assert.InDelta(t, 80.0, got.first().Level, 0.001)
	assert.False(t, as.Running())

	n := got.len()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, got.len(), "no readings after stop")
}

func TestBandEnergy(t *testing.T) {
	bins := []byte{0, 10, 20, 30, 40}

	assert.InDelta(t, 20.0, BandEnergy(bins, 1, 4), 0.001)
	assert.InDelta(t, 30.0, BandEnergy(bins, 2, 100), 0.001, "upper bound clamps")
	assert.InDelta(t, 5.0, BandEnergy(bins, -3, 2), 0.001, "lower bound clamps")
	assert.Zero(t, BandEnergy(bins, 4, 2))
	assert.Zero(t, BandEnergy(nil, 10, 50))
}
