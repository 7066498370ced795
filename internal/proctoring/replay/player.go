package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"proctor/internal/platform/sentinel"
	"proctor/internal/proctoring/media"
	"proctor/internal/proctoring/models"
)

const (
	spectrumBins = 64
	frameWidth   = 32
	frameHeight  = 24
)

// Player implements media.Provider, media.Signals and media.FaceDetector over
// a Trace. The timeline starts at Run.
type Player struct {
	trace  *Trace
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	started     time.Time
	fullscreen  bool
	subscribers map[int]func(models.BrowserEvent)
	nextSub     int
	shares      []*screenShare
	done        chan struct{}
}

type Option func(*Player)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Player) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPlayer(trace *Trace, opts ...Option) *Player {
	p := &Player{
		trace:       trace,
		logger:      slog.Default(),
		now:         time.Now,
		fullscreen:  trace.Devices.Fullscreen,
		subscribers: make(map[int]func(models.BrowserEvent)),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.started = p.now()
	return p
}

// Done is closed when Run has replayed the whole trace.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Run restarts the timeline and fires every event at its offset. It returns
// after Duration or when ctx ends. Call it once.
func (p *Player) Run(ctx context.Context) error {
	p.mu.Lock()
	p.started = p.now()
	p.mu.Unlock()
	defer close(p.done)

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for _, ev := range p.trace.Events {
		if !p.wait(ctx, timer, ev.At) {
			return ctx.Err()
		}
		p.fire(ev)
	}
	if !p.wait(ctx, timer, p.trace.Duration) {
		return ctx.Err()
	}
	p.logger.Info("replay_trace_finished", "session_id", p.trace.Session.SessionID)
	return nil
}

func (p *Player) wait(ctx context.Context, timer *time.Timer, at time.Duration) bool {
	delay := at - p.elapsed()
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer.Reset(delay)
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (p *Player) elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now().Sub(p.started)
}

func (p *Player) fire(point EventPoint) {
	ev := models.BrowserEvent{Kind: point.Kind, Active: point.Active, At: p.now()}

	p.mu.Lock()
	switch point.Kind {
	case models.BrowserEventFullscreen:
		p.fullscreen = point.Active
	case models.BrowserEventScreenShare:
		if !point.Active {
			for _, s := range p.shares {
				s.end()
			}
		}
	}
	subs := make([]func(models.BrowserEvent), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	p.logger.Debug("replay_event_fired", "kind", ev.Kind, "active", ev.Active)
	for _, fn := range subs {
		fn(ev)
	}
}

// Subscribe implements media.Signals.
func (p *Player) Subscribe(fn func(models.BrowserEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subscribers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Fullscreen implements media.Signals.
func (p *Player) Fullscreen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fullscreen
}

// DetectFaces implements media.FaceDetector using the trace's face timeline.
func (p *Player) DetectFaces(ctx context.Context, _ media.Frame) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	point := p.trace.faceAt(p.elapsed())
	if point.Error != "" {
		return 0, errors.New(point.Error)
	}
	return point.Count, nil
}

func grant(access Access, capability models.Capability) error {
	switch access {
	case AccessDenied:
		return fmt.Errorf("%s: %w", capability, sentinel.ErrPermissionDenied)
	case AccessUnavailable:
		return fmt.Errorf("%s: %w", capability, sentinel.ErrUnavailable)
	}
	return nil
}

func (p *Player) AcquireCamera(ctx context.Context) (media.CameraStream, error) {
	if err := grant(p.trace.Devices.Camera, models.CapabilityCamera); err != nil {
		return nil, err
	}
	return &camera{}, ctx.Err()
}

func (p *Player) AcquireMicrophone(ctx context.Context) (media.MicrophoneStream, error) {
	if err := grant(p.trace.Devices.Microphone, models.CapabilityMicrophone); err != nil {
		return nil, err
	}
	return &microphone{player: p}, ctx.Err()
}

func (p *Player) AcquireScreenShare(ctx context.Context) (media.ScreenShareStream, error) {
	if err := grant(p.trace.Devices.ScreenShare, models.CapabilityScreenShare); err != nil {
		return nil, err
	}
	s := &screenShare{ended: make(chan struct{})}
	p.mu.Lock()
	p.shares = append(p.shares, s)
	p.mu.Unlock()
	return s, ctx.Err()
}

type camera struct{}

// Frame returns a blank frame; the face count comes from DetectFaces.
func (c *camera) Frame(ctx context.Context) (media.Frame, error) {
	if err := ctx.Err(); err != nil {
		return media.Frame{}, err
	}
	return media.Frame{Width: frameWidth, Height: frameHeight, Pix: make([]byte, frameWidth*frameHeight*3)}, nil
}

func (c *camera) Stop() {}

type microphone struct {
	player *Player
}

// FrequencyData returns a flat spectrum at the trace's current level, so the
// mid-band mean equals that level.
func (m *microphone) FrequencyData() []byte {
	level := byte(m.player.trace.audioAt(m.player.elapsed()))
	bins := make([]byte, spectrumBins)
	for i := range bins {
		bins[i] = level
	}
	return bins
}

func (m *microphone) Stop() {}

type screenShare struct {
	once  sync.Once
	ended chan struct{}
}

func (s *screenShare) Ended() <-chan struct{} { return s.ended }

func (s *screenShare) end() { s.once.Do(func() { close(s.ended) }) }

// Stop releases the share without signalling Ended.
func (s *screenShare) Stop() {}

var (
	_ media.Provider     = (*Player)(nil)
	_ media.Signals      = (*Player)(nil)
	_ media.FaceDetector = (*Player)(nil)
)
