// Package session wires samplers, the classifier and the termination policy
// into one proctored session with an explicit start/stop lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"proctor/internal/platform/sentinel"
	"proctor/internal/platform/tracer"
	"proctor/internal/proctoring/classifier"
	"proctor/internal/proctoring/config"
	"proctor/internal/proctoring/media"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
	"proctor/internal/proctoring/policy"
	"proctor/internal/proctoring/sampler"
	dErrors "proctor/pkg/domain-errors"
)

const (
	submitKindNormal     = "normal"
	submitKindTerminated = "terminated"
)

// Controller owns every piece of mutable session state. Nothing is shared
// between controllers, so independent sessions cannot affect each other.
type Controller struct {
	provider  media.Provider
	detector  media.FaceDetector
	submitter Submitter
	signals   media.Signals
	sinks     []Sink

	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        tracer.Tracer
	now           func() time.Time
	info          models.SessionInfo
	userAgent     string
	submitTimeout time.Duration

	onTerminated []func(models.TerminationNotice)
	onWarning    []func(models.Warning)
	onViolation  []func(models.ViolationEvent)

	aggregator *policy.Aggregator

	// mu guards the classifier and the lifecycle fields below it.
	mu          sync.Mutex
	classifier  *classifier.Classifier
	req         models.Requirements
	started     bool
	stopped     bool
	setupErr    error
	cameraOn    bool
	baseCtx     context.Context
	cancel      context.CancelFunc
	camera      media.CameraStream
	mic         media.MicrophoneStream
	screen      media.ScreenShareStream
	face        *sampler.FaceSampler
	audio       *sampler.AudioSampler
	unsubscribe func()

	// faceMu orders face sampler pause and resume. It is never taken with mu held.
	faceMu sync.Mutex

	submitMu  sync.Mutex
	delivered bool
	done      chan struct{}
}

func New(provider media.Provider, detector media.FaceDetector, submitter Submitter, opts ...Option) (*Controller, error) {
	if provider == nil {
		return nil, errors.New("media provider is required")
	}
	if detector == nil {
		return nil, errors.New("face detector is required")
	}
	if submitter == nil {
		return nil, errors.New("submitter is required")
	}

	c := &Controller{
		provider:      provider,
		detector:      detector,
		submitter:     submitter,
		signals:       media.NoSignals{},
		cfg:           config.DefaultConfig(),
		logger:        slog.Default(),
		tracer:        tracer.NewNoop(),
		now:           time.Now,
		info:          models.SessionInfo{SessionID: uuid.NewString()},
		submitTimeout: defaultSubmitTimeout,
		baseCtx:       context.Background(),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	c.applyUserAgent()

	c.classifier = classifier.New(c.cfg, classifier.WithThrottleObserver(func(t models.ViolationType) {
		c.metrics.IncrementThrottled(string(t))
	}))
	c.aggregator = policy.NewAggregator(c.cfg, policy.WithLogger(c.logger.With("session_id", c.info.SessionID)))
	return c, nil
}

// Start acquires every capability req marks as required and begins
// monitoring. It returns only once all of them are active; a failure releases
// whatever was acquired and returns a *SetupError naming the requirement.
func (c *Controller) Start(ctx context.Context, req models.Requirements) error {
	c.mu.Lock()
	switch {
	case c.stopped:
		c.mu.Unlock()
		return ErrStopped
	case c.started:
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.req = req
	c.mu.Unlock()

	cam, mic, screen, err := c.acquire(ctx, req)
	if err == nil && req.RequireFullScreen && !c.signals.Fullscreen() {
		err = setupFailure(models.CapabilityFullscreen, sentinel.ErrInvalidState)
	}
	if err != nil {
		release(cam, mic, screen)
		c.setupFailed(err)
		return err
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		release(cam, mic, screen)
		return ErrStopped
	}
	c.baseCtx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.camera, c.mic, c.screen = cam, mic, screen
	c.cameraOn = true
	samplerOpts := []sampler.Option{
		sampler.WithLogger(c.logger.With("session_id", c.info.SessionID)),
		sampler.WithMetrics(c.metrics),
		sampler.WithTracer(c.tracer),
		sampler.WithClock(c.now),
	}
	if req.DetectFaces && cam != nil {
		c.face = sampler.NewFaceSampler(cam, c.detector, c.cfg.FacePollInterval, c.onFace, samplerOpts...)
		c.face.Start(c.baseCtx)
	}
	if req.MonitorAudio && mic != nil {
		c.audio = sampler.NewAudioSampler(mic, c.cfg.AudioPollInterval, c.cfg.AudioBandLow, c.cfg.AudioBandHigh, c.onAudio, samplerOpts...)
		c.audio.Start(c.baseCtx)
	}
	if screen != nil {
		go c.watchScreenShare(c.baseCtx, screen)
	}
	c.mu.Unlock()

	// Subscribing outside mu: a signal source may deliver synchronously.
	unsubscribe := c.signals.Subscribe(c.HandleBrowserEvent)
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		unsubscribe()
		return ErrStopped
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	c.metrics.SessionStarted()
	c.logger.Info("proctoring_session_started",
		"session_id", c.info.SessionID,
		"candidate_id", c.info.CandidateID,
		"device", c.info.Device,
		"require_camera", req.RequireCamera,
		"detect_faces", req.DetectFaces,
		"require_full_screen", req.RequireFullScreen,
		"monitor_audio", req.MonitorAudio,
		"require_screen_share", req.RequireScreenShare,
	)
	return nil
}

func (c *Controller) acquire(ctx context.Context, req models.Requirements) (media.CameraStream, media.MicrophoneStream, media.ScreenShareStream, error) {
	var (
		cam    media.CameraStream
		mic    media.MicrophoneStream
		screen media.ScreenShareStream
	)
	g, gctx := errgroup.WithContext(ctx)
	if req.NeedsCamera() {
		g.Go(func() error {
			s, err := c.provider.AcquireCamera(gctx)
			if err != nil {
				return setupFailure(models.CapabilityCamera, err)
			}
			cam = s
			return nil
		})
	}
	if req.MonitorAudio {
		g.Go(func() error {
			s, err := c.provider.AcquireMicrophone(gctx)
			if err != nil {
				return setupFailure(models.CapabilityMicrophone, err)
			}
			mic = s
			return nil
		})
	}
	if req.RequireScreenShare {
		g.Go(func() error {
			s, err := c.provider.AcquireScreenShare(gctx)
			if err != nil {
				return setupFailure(models.CapabilityScreenShare, err)
			}
			screen = s
			return nil
		})
	}
	err := g.Wait()
	return cam, mic, screen, err
}

func (c *Controller) setupFailed(err error) {
	var setupErr *SetupError
	capability := models.Capability("media")
	if errors.As(err, &setupErr) {
		capability = setupErr.Requirement
	}
	c.logger.Error("proctoring_setup_failed",
		"session_id", c.info.SessionID,
		"requirement", capability,
		"error", err,
	)

	c.mu.Lock()
	ev, ok := c.classifier.ClassifyAccessDenied(capability, c.now())
	out := c.record(ev, ok)
	c.stopped = true
	c.setupErr = err
	c.mu.Unlock()
	c.dispatch(ev, out)
}

func (c *Controller) watchScreenShare(ctx context.Context, screen media.ScreenShareStream) {
	select {
	case <-ctx.Done():
	case <-screen.Ended():
		c.HandleBrowserEvent(models.BrowserEvent{Kind: models.BrowserEventScreenShare, Active: false, At: c.now()})
	}
}

// HandleBrowserEvent is the subscription callback for browser signals.
// Turning the camera off stops face sampling immediately; turning it back on
// resumes sampling.
func (c *Controller) HandleBrowserEvent(ev models.BrowserEvent) {
	if ev.At.IsZero() {
		ev.At = c.now()
	}

	c.mu.Lock()
	if !c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	event, ok := c.classifier.ClassifyBrowserEvent(ev, c.req)
	out := c.record(event, ok)

	camera := ev.Kind == models.BrowserEventCamera && c.face != nil
	if camera {
		c.cameraOn = ev.Active
	}
	c.mu.Unlock()

	if camera {
		c.syncFaceSampling()
	}
	c.dispatch(event, out)
}

// syncFaceSampling applies the latest camera state to the face sampler.
// Concurrent camera events queue on faceMu, and each applies whatever state
// is current when it gets the lock, so the last event wins.
func (c *Controller) syncFaceSampling() {
	c.faceMu.Lock()
	defer c.faceMu.Unlock()

	c.mu.Lock()
	face, ctx := c.face, c.baseCtx
	run := c.cameraOn && !c.stopped && c.aggregator.State() == models.StateRunning
	c.mu.Unlock()
	if face == nil {
		return
	}

	if run {
		if face.Start(ctx) {
			c.logger.Info("proctoring_face_sampling_resumed", "session_id", c.info.SessionID)
		}
		return
	}
	if face.Running() {
		face.Stop()
		c.logger.Info("proctoring_face_sampling_paused", "session_id", c.info.SessionID)
	}
}

func (c *Controller) onFace(r models.FaceReading) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	ev, ok := c.classifier.ClassifyFace(r)
	out := c.record(ev, ok)
	c.mu.Unlock()
	c.dispatch(ev, out)
}

func (c *Controller) onAudio(r models.AudioReading) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	ev, ok := c.classifier.ClassifyAudio(r)
	out := c.record(ev, ok)
	c.mu.Unlock()
	c.dispatch(ev, out)
}

// record must be called with mu held so classification and counting stay in order.
func (c *Controller) record(ev models.ViolationEvent, ok bool) policy.Outcome {
	if !ok {
		return policy.Outcome{}
	}
	return c.aggregator.Record(ev)
}

func (c *Controller) dispatch(ev models.ViolationEvent, out policy.Outcome) {
	if !out.Counted {
		return
	}
	c.metrics.IncrementViolation(string(ev.Type), ev.Severity.String())
	c.logger.Info("proctoring_violation_emitted",
		"session_id", c.info.SessionID,
		"violation_id", ev.ID,
		"violation_type", ev.Type,
		"severity", ev.Severity.String(),
		"description", ev.Description,
	)

	for _, sink := range c.sinks {
		if err := sink.Emit(c.baseCtx, c.info, ev); err != nil {
			c.logger.Error("proctoring_violation_sink_failed",
				"session_id", c.info.SessionID,
				"violation_id", ev.ID,
				"error", err,
			)
		}
	}
	for _, fn := range c.onViolation {
		fn(ev)
	}

	if out.Warning != nil {
		c.logger.Warn("proctoring_warning_issued",
			"session_id", c.info.SessionID,
			"violation_type", out.Warning.Type,
			"strike", out.Warning.Strike,
		)
		for _, fn := range c.onWarning {
			fn(*out.Warning)
		}
	}
	if out.Notice != nil {
		go c.terminate(*out.Notice)
	}
}

// terminate runs off the sampler goroutines so hooks may call Stop.
func (c *Controller) terminate(notice models.TerminationNotice) {
	c.metrics.IncrementTermination(string(notice.Reason))
	c.logger.Warn("proctoring_session_terminated",
		"session_id", c.info.SessionID,
		"reason", notice.Reason,
		"trigger_type", notice.Trigger.Type,
		"total_violations", notice.Counters.TotalViolations,
		"tab_switches", notice.Counters.TabSwitchCount,
	)
	for _, fn := range c.onTerminated {
		fn(notice)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.baseCtx), c.submitTimeout)
	defer cancel()
	if err := c.deliver(ctx, true, notice.Reason); err != nil {
		c.logger.Error("proctoring_forced_submit_failed",
			"session_id", c.info.SessionID,
			"error", err,
		)
	}
	c.aggregator.Finalize()
	c.Stop()
}

// Submit is the normal end of a session, on time expiry or manual submit.
// After a termination it retries the forced submission if that failed.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	started, setupErr := c.started, c.setupErr
	c.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	if setupErr != nil {
		return fmt.Errorf("%w: %w", ErrStopped, setupErr)
	}

	terminated := false
	var reason models.TerminationReason
	if !c.aggregator.MarkSubmitted() {
		switch c.aggregator.State() {
		case models.StateTerminating, models.StateTerminated:
			terminated = true
			if notice, ok := c.aggregator.Notice(); ok {
				reason = notice.Reason
			}
		case models.StateSubmitted:
		default:
			return dErrors.New(dErrors.CodeInvalidState, "session cannot be submitted")
		}
	}

	if err := c.deliver(ctx, terminated, reason); err != nil {
		return err
	}
	c.Stop()
	return nil
}

// deliver calls the submitter until one call succeeds; later calls are no-ops.
func (c *Controller) deliver(ctx context.Context, terminated bool, reason models.TerminationReason) error {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()
	if c.delivered {
		return nil
	}

	kind := submitKindNormal
	if terminated {
		kind = submitKindTerminated
	}
	ctx, span := c.tracer.Start(ctx, tracer.SpanSubmit,
		tracer.String(tracer.AttrSessionID, c.info.SessionID),
		tracer.Bool(tracer.AttrTerminated, terminated),
	)

	counters := c.aggregator.Counters()
	sub := models.Submission{
		SessionInfo: c.info,
		Summary:     counters.Summary(),
		Counters:    counters,
		Terminated:  terminated,
		Reason:      reason,
		SubmittedAt: c.now(),
	}
	if err := c.submitter.Submit(ctx, sub); err != nil {
		span.End(err)
		c.metrics.IncrementSubmission(kind, "error")
		return dErrors.Wrap(err, dErrors.CodeSubmissionFailed, "failed to submit assessment")
	}
	span.End(nil)
	c.metrics.IncrementSubmission(kind, "success")
	c.logger.Info("proctoring_session_submitted",
		"session_id", c.info.SessionID,
		"terminated", terminated,
		"total_violations", sub.Summary.TotalViolations,
		"tab_switches", sub.Summary.TabSwitches,
	)
	c.delivered = true
	close(c.done)
	return nil
}

// Stop releases every stream and stops every sampler. It is idempotent, and
// before Start it does nothing, so the controller can still be started. It
// must not be called from an OnViolation or OnWarning hook.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped || !c.started {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	wasRunning := c.cancel != nil
	cancel, unsubscribe := c.cancel, c.unsubscribe
	face, audio := c.face, c.audio
	cam, mic, screen := c.camera, c.mic, c.screen
	c.unsubscribe = nil
	c.camera, c.mic, c.screen = nil, nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if face != nil {
		c.faceMu.Lock()
		face.Stop()
		c.faceMu.Unlock()
	}
	if audio != nil {
		audio.Stop()
	}
	release(cam, mic, screen)

	if wasRunning {
		c.metrics.SessionEnded()
		c.logger.Info("proctoring_session_stopped",
			"session_id", c.info.SessionID,
			"state", c.aggregator.State(),
		)
	}
}

func release(cam media.CameraStream, mic media.MicrophoneStream, screen media.ScreenShareStream) {
	if cam != nil {
		cam.Stop()
	}
	if mic != nil {
		mic.Stop()
	}
	if screen != nil {
		screen.Stop()
	}
}

func (c *Controller) Counters() models.SessionCounters {
	return c.aggregator.Counters()
}

func (c *Controller) State() models.SessionState {
	return c.aggregator.State()
}

func (c *Controller) Recent() []models.ViolationEvent {
	return c.aggregator.Recent()
}

// Done is closed once a submission has been delivered.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) SessionID() string {
	return c.info.SessionID
}

func (c *Controller) Info() models.SessionInfo {
	return c.info
}

func (c *Controller) Requirements() models.Requirements {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

// Stopped reports whether every stream has been released.
func (c *Controller) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
