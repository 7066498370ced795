package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"proctor/internal/platform/sentinel"
	"proctor/internal/proctoring/config"
	"proctor/internal/proctoring/media"
	mediamocks "proctor/internal/proctoring/media/mocks"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
	"proctor/internal/proctoring/session/mocks"
	dErrors "proctor/pkg/domain-errors"
)

// =============================================================================
// Session Controller Test Suite
// =============================================================================
// The controller owns lifecycle and concurrency: capability acquisition,
// stream release on every exit path, and the single forced submission.

type fakeSignals struct {
	mu           sync.Mutex
	fn           func(models.BrowserEvent)
	fullscreen   bool
	unsubscribed bool
}

func (f *fakeSignals) Subscribe(fn func(models.BrowserEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.fn = nil
		f.unsubscribed = true
	}
}

func (f *fakeSignals) Fullscreen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullscreen
}

func (f *fakeSignals) fire(kind models.BrowserEventKind, active bool) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(models.BrowserEvent{Kind: kind, Active: active})
	}
}

func (f *fakeSignals) isUnsubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}

type countingDetector struct {
	calls atomic.Int32
	faces atomic.Int32
	err   error
}

func (d *countingDetector) DetectFaces(context.Context, media.Frame) (int, error) {
	d.calls.Add(1)
	if d.err != nil {
		return 0, d.err
	}
	return int(d.faces.Load()), nil
}

var validFrame = media.Frame{Width: 1, Height: 1, Pix: []byte{0, 0, 0}}

type ControllerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	provider  *mediamocks.MockProvider
	submitter *mocks.MockSubmitter
	sink      *mocks.MockSink
	signals   *fakeSignals
	detector  *countingDetector
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       config.Config
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.provider = mediamocks.NewMockProvider(s.ctrl)
	s.submitter = mocks.NewMockSubmitter(s.ctrl)
	s.sink = mocks.NewMockSink(s.ctrl)
	s.signals = &fakeSignals{fullscreen: true}
	s.detector = &countingDetector{}
	s.detector.faces.Store(1)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.cfg = config.DefaultConfig()
	s.cfg.FacePollInterval = 2 * time.Millisecond
	s.cfg.AudioPollInterval = 2 * time.Millisecond
}

func (s *ControllerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ControllerSuite) newController(opts ...Option) *Controller {
	base := []Option{
		WithLogger(s.logger),
		WithConfig(s.cfg),
		WithMetrics(s.metrics),
		WithSignals(s.signals),
		WithSink(s.sink),
	}
	c, err := New(s.provider, s.detector, s.submitter, append(base, opts...)...)
	s.Require().NoError(err)
	return c
}

// expectCamera returns a channel closed when the camera stream is released.
func (s *ControllerSuite) expectCamera() <-chan struct{} {
	released := make(chan struct{})
	cam := mediamocks.NewMockCameraStream(s.ctrl)
	cam.EXPECT().Frame(gomock.Any()).Return(validFrame, nil).AnyTimes()
	cam.EXPECT().Stop().Do(func() { close(released) }).Times(1)
	s.provider.EXPECT().AcquireCamera(gomock.Any()).Return(cam, nil)
	return released
}

func (s *ControllerSuite) waitReleased(released <-chan struct{}) {
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		s.FailNow("camera was never released")
	}
}

func (s *ControllerSuite) expectMicrophone(level byte) *mediamocks.MockMicrophoneStream {
	bins := make([]byte, 128)
	for i := range bins {
		bins[i] = level
	}
	mic := mediamocks.NewMockMicrophoneStream(s.ctrl)
	mic.EXPECT().FrequencyData().Return(bins).AnyTimes()
	mic.EXPECT().Stop().Times(1)
	s.provider.EXPECT().AcquireMicrophone(gomock.Any()).Return(mic, nil)
	return mic
}

func (s *ControllerSuite) expectScreenShare(ended chan struct{}) {
	screen := mediamocks.NewMockScreenShareStream(s.ctrl)
	screen.EXPECT().Ended().Return((<-chan struct{})(ended)).AnyTimes()
	screen.EXPECT().Stop().Times(1)
	s.provider.EXPECT().AcquireScreenShare(gomock.Any()).Return(screen, nil)
}

func (s *ControllerSuite) waitDone(c *Controller) {
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		s.FailNow("session was never submitted")
	}
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ControllerSuite) TestNewRejectsMissingDependencies() {
	_, err := New(nil, s.detector, s.submitter)
	s.ErrorContains(err, "media provider is required")

	_, err = New(s.provider, nil, s.submitter)
	s.ErrorContains(err, "face detector is required")

	_, err = New(s.provider, s.detector, nil)
	s.ErrorContains(err, "submitter is required")

	bad := config.DefaultConfig()
	bad.TabSwitchStrikes = 0
	_, err = New(s.provider, s.detector, s.submitter, WithConfig(bad))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ControllerSuite) TestSessionInfo() {
	c := s.newController(
		WithSessionInfo(models.SessionInfo{CandidateID: "cand-1", TestSessionID: "test-9"}),
		WithUserAgent("Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"),
	)
	info := c.Info()
	s.NotEmpty(info.SessionID)
	s.Equal(c.SessionID(), info.SessionID)
	s.Equal("cand-1", info.CandidateID)
	s.Contains(info.Device, "Firefox")
	s.NotEmpty(info.Fingerprint)
}

// =============================================================================
// Start
// =============================================================================

func (s *ControllerSuite) TestStartAcquiresRequiredCapabilities() {
	s.expectCamera()
	s.expectMicrophone(0)
	s.expectScreenShare(make(chan struct{}))

	c := s.newController()
	req := models.Requirements{RequireCamera: true, DetectFaces: true, RequireFullScreen: true, MonitorAudio: true, RequireScreenShare: true}
	s.Require().NoError(c.Start(context.Background(), req))
	s.Equal(models.StateRunning, c.State())
	s.Equal(req, c.Requirements())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ActiveSessions))

	s.Run("starting twice fails", func() {
		s.ErrorIs(c.Start(context.Background(), req), ErrAlreadyStarted)
	})

	s.Eventually(func() bool { return s.detector.calls.Load() > 2 }, time.Second, time.Millisecond)
	c.Stop()
	s.True(s.signals.isUnsubscribed())
	s.Equal(0.0, testutil.ToFloat64(s.metrics.ActiveSessions))
}

func (s *ControllerSuite) TestSetupFailureReleasesAcquiredStreams() {
	s.expectCamera()
	s.expectScreenShare(make(chan struct{}))
	s.provider.EXPECT().AcquireMicrophone(gomock.Any()).
		Return(nil, fmt.Errorf("getUserMedia: %w", sentinel.ErrPermissionDenied))
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.SessionInfo, ev models.ViolationEvent) error {
			s.Equal(models.ViolationSuspiciousActivity, ev.Type)
			s.Equal("Camera/microphone access denied", ev.Description)
			return nil
		})

	c := s.newController()
	err := c.Start(context.Background(), models.Requirements{
		RequireCamera: true, MonitorAudio: true, RequireScreenShare: true,
	})
	s.Require().Error(err)

	var setupErr *SetupError
	s.Require().ErrorAs(err, &setupErr)
	s.Equal(models.CapabilityMicrophone, setupErr.Requirement)
	s.ErrorIs(err, sentinel.ErrPermissionDenied)
	s.True(dErrors.HasCode(err, dErrors.CodeCapabilityUnavailable))

	counters := c.Counters()
	s.Equal(1, counters.ViolationsByType[models.ViolationSuspiciousActivity])
	s.True(c.Stopped())
	s.ErrorIs(c.Start(context.Background(), models.Requirements{}), ErrStopped)

	err = c.Submit(context.Background())
	s.ErrorIs(err, ErrStopped, "a session that never began is not submitted")
	s.ErrorIs(err, sentinel.ErrPermissionDenied)
	s.Equal(models.StateRunning, c.State())
}

func (s *ControllerSuite) TestFullscreenRequired() {
	s.signals.fullscreen = false
	s.expectCamera()
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	c := s.newController()
	err := c.Start(context.Background(), models.Requirements{RequireCamera: true, RequireFullScreen: true})

	var setupErr *SetupError
	s.Require().ErrorAs(err, &setupErr)
	s.Equal(models.CapabilityFullscreen, setupErr.Requirement)
}

// =============================================================================
// Escalation
// =============================================================================

func (s *ControllerSuite) TestTabSwitchTwoStrikes() {
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	var submitted models.Submission
	s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sub models.Submission) error {
			submitted = sub
			return nil
		}).Times(1)

	var (
		mu       sync.Mutex
		warnings []models.Warning
		notices  []models.TerminationNotice
	)
	c := s.newController(
		OnWarning(func(w models.Warning) {
			mu.Lock()
			defer mu.Unlock()
			warnings = append(warnings, w)
		}),
		OnTerminated(func(n models.TerminationNotice) {
			mu.Lock()
			defer mu.Unlock()
			notices = append(notices, n)
		}),
	)
	s.Require().NoError(c.Start(context.Background(), models.Requirements{}))

	s.signals.fire(models.BrowserEventVisibility, false)
	s.Equal(models.StateRunning, c.State())
	s.signals.fire(models.BrowserEventVisibility, true)
	s.signals.fire(models.BrowserEventVisibility, false)
	s.waitDone(c)

	mu.Lock()
	defer mu.Unlock()
	s.Require().Len(warnings, 1)
	s.Equal(models.TabSwitchWarningMessage, warnings[0].Message)
	s.Require().Len(notices, 1)
	s.Equal("Assessment terminated due to multiple tab switches.", notices[0].Message)

	s.True(submitted.Terminated)
	s.Equal(models.TerminationTabSwitchLimit, submitted.Reason)
	s.Equal(2, submitted.Summary.TabSwitches)
	s.Eventually(func() bool { return c.State() == models.StateTerminated }, time.Second, time.Millisecond)
	s.Eventually(c.Stopped, time.Second, time.Millisecond)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Terminations.WithLabelValues("tab_switch_limit")))
}

func (s *ControllerSuite) TestHighSeverityLimitSubmitsOnce() {
	s.cfg.ThrottleWindow = 0
	s.detector.faces.Store(2)
	released := s.expectCamera()
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(5)
	s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sub models.Submission) error {
			s.True(sub.Terminated)
			s.Equal(models.TerminationViolationLimit, sub.Reason)
			s.Equal(5, sub.Summary.TotalViolations)
			return nil
		}).Times(1)

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{DetectFaces: true}))
	s.waitDone(c)
	s.waitReleased(released)

	counters := c.Counters()
	s.Equal(5, counters.ViolationsByType[models.ViolationMultipleFaces])
	s.True(counters.Consistent())
	s.Len(c.Recent(), 3)
}

func (s *ControllerSuite) TestVoiceDetection() {
	s.cfg.VoiceMinDuration = 5 * time.Millisecond
	s.expectMicrophone(120)
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{MonitorAudio: true}))
	s.Eventually(func() bool { return c.Counters().VoiceDetectionCount == 1 }, time.Second, time.Millisecond)
	c.Stop()
}

// =============================================================================
// Normal submission
// =============================================================================

func (s *ControllerSuite) TestCleanSessionSubmits() {
	s.expectCamera()
	s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sub models.Submission) error {
			s.False(sub.Terminated)
			s.Equal(models.Summary{}, sub.Summary)
			return nil
		})

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{DetectFaces: true}))
	s.Require().NoError(c.Submit(context.Background()))

	s.Equal(models.StateSubmitted, c.State())
	s.True(c.Stopped())
	s.waitDone(c)

	s.Run("second submit is a no-op", func() {
		s.NoError(c.Submit(context.Background()))
	})
}

func (s *ControllerSuite) TestSubmitFailureCanBeRetried() {
	gomock.InOrder(
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(errors.New("503")),
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil),
	)

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{}))

	err := c.Submit(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
	s.Equal(models.StateSubmitted, c.State())
	s.False(c.Stopped())

	s.NoError(c.Submit(context.Background()))
	s.True(c.Stopped())
}

func (s *ControllerSuite) TestSubmitBeforeStart() {
	c := s.newController()
	s.ErrorIs(c.Submit(context.Background()), ErrNotStarted)
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *ControllerSuite) TestCameraOffStopsFaceSampling() {
	s.expectCamera()
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{RequireCamera: true, DetectFaces: true}))
	s.Eventually(func() bool { return s.detector.calls.Load() > 0 }, time.Second, time.Millisecond)

	s.signals.fire(models.BrowserEventCamera, false)
	paused := s.detector.calls.Load()
	time.Sleep(20 * time.Millisecond)
	s.Equal(paused, s.detector.calls.Load(), "no detection while the camera is off")
	s.Equal(1, c.Counters().ViolationsByType[models.ViolationCameraOff])

	s.signals.fire(models.BrowserEventCamera, true)
	s.Eventually(func() bool { return s.detector.calls.Load() > paused }, time.Second, time.Millisecond)
	c.Stop()
}

func (s *ControllerSuite) TestRacingCameraEventsSettleOnLatestState() {
	s.expectCamera()
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{RequireCamera: true, DetectFaces: true}))

	for i := 0; i < 50; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); s.signals.fire(models.BrowserEventCamera, false) }()
		go func() { defer wg.Done(); s.signals.fire(models.BrowserEventCamera, true) }()
		wg.Wait()

		c.mu.Lock()
		want := c.cameraOn
		c.mu.Unlock()
		s.Require().Equal(want, c.face.Running(), "round %d: sampler must follow the last camera event", i)
	}

	s.signals.fire(models.BrowserEventCamera, true)
	calls := s.detector.calls.Load()
	s.Eventually(func() bool { return s.detector.calls.Load() > calls }, time.Second, time.Millisecond)
	c.Stop()
}

func (s *ControllerSuite) TestDetectorFailureIsNotAViolation() {
	s.detector.err = errors.New("model missing")
	s.expectCamera()

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{DetectFaces: true}))
	s.Eventually(func() bool { return s.detector.calls.Load() > 3 }, time.Second, time.Millisecond)
	c.Stop()

	s.Zero(c.Counters().TotalViolations)
	s.Greater(testutil.ToFloat64(s.metrics.DetectorErrors), 0.0)
}

func (s *ControllerSuite) TestScreenShareEnded() {
	ended := make(chan struct{})
	s.expectScreenShare(ended)
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	var got atomic.Value
	c := s.newController(OnViolation(func(ev models.ViolationEvent) { got.Store(ev.Type) }))
	s.Require().NoError(c.Start(context.Background(), models.Requirements{RequireScreenShare: true}))

	close(ended)
	s.Eventually(func() bool { return got.Load() == models.ViolationScreenShareStopped }, time.Second, time.Millisecond)
	c.Stop()
}

func (s *ControllerSuite) TestStopIsIdempotent() {
	s.expectCamera()
	s.expectMicrophone(0)

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{DetectFaces: true, MonitorAudio: true}))

	c.Stop()
	afterFirst := s.detector.calls.Load()
	c.Stop()

	time.Sleep(10 * time.Millisecond)
	s.Equal(afterFirst, s.detector.calls.Load(), "no sampling after stop")
	s.True(c.Stopped())
	s.Equal(models.StateRunning, c.State())
}

func (s *ControllerSuite) TestStopBeforeStart() {
	c := s.newController()
	c.Stop()
	c.Stop()
	s.False(c.Stopped())

	s.Require().NoError(c.Start(context.Background(), models.Requirements{}))
	s.Equal(models.StateRunning, c.State())
	c.Stop()
	s.True(c.Stopped())
}

func (s *ControllerSuite) TestSinkFailureDoesNotBlockSession() {
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	c := s.newController()
	s.Require().NoError(c.Start(context.Background(), models.Requirements{}))
	s.signals.fire(models.BrowserEventVisibility, false)
	s.Equal(1, c.Counters().TabSwitchCount)
	c.Stop()
}
