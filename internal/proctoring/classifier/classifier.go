// Package classifier turns raw face, audio and browser readings into
// candidate violations and throttles repeated candidates of the same type.
package classifier

import (
	"fmt"
	"math"
	"time"

	"proctor/internal/proctoring/config"
	"proctor/internal/proctoring/models"
)

// Classifier is not safe for concurrent use. The session controller
// serializes all calls.
type Classifier struct {
	cfg            config.Config
	lastEmittedAt  map[models.ViolationType]time.Time
	voiceStart     *time.Time
	tabSwitchCount int
	throttled      func(models.ViolationType)
}

type Option func(*Classifier)

// WithThrottleObserver registers a callback invoked for each dropped candidate.
// The callback must not call back into the classifier.
func WithThrottleObserver(fn func(models.ViolationType)) Option {
	return func(c *Classifier) {
		c.throttled = fn
	}
}

func New(cfg config.Config, opts ...Option) *Classifier {
	c := &Classifier{
		cfg:           cfg,
		lastEmittedAt: make(map[models.ViolationType]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) ClassifyFace(r models.FaceReading) (models.ViolationEvent, bool) {
	switch {
	case r.FaceCount == 0:
		return c.Candidate(models.ViolationFaceNotDetected, "No face detected in camera feed", r.At)
	case r.FaceCount > 1:
		return c.Candidate(models.ViolationMultipleFaces,
			fmt.Sprintf("%d faces detected - possible collaboration", r.FaceCount), r.At)
	}
	return models.ViolationEvent{}, false
}

// ClassifyAudio applies the voice hysteresis: the level must stay strictly
// above the threshold for one continuous window of VoiceMinDuration.
func (c *Classifier) ClassifyAudio(r models.AudioReading) (models.ViolationEvent, bool) {
	if r.Level <= c.cfg.VoiceThreshold {
		c.voiceStart = nil
		return models.ViolationEvent{}, false
	}
	if c.voiceStart == nil {
		at := r.At
		c.voiceStart = &at
		return models.ViolationEvent{}, false
	}
	if r.At.Sub(*c.voiceStart) < c.cfg.VoiceMinDuration {
		return models.ViolationEvent{}, false
	}
	return c.Candidate(models.ViolationVoiceDetected,
		fmt.Sprintf("Voice activity detected (level: %d)", int(math.Round(r.Level))), r.At)
}

// ClassifyBrowserEvent maps deactivation signals to violations. Re-activation
// events and signals for capabilities the session does not require produce nothing.
func (c *Classifier) ClassifyBrowserEvent(ev models.BrowserEvent, req models.Requirements) (models.ViolationEvent, bool) {
	if ev.Active {
		return models.ViolationEvent{}, false
	}
	switch ev.Kind {
	case models.BrowserEventVisibility:
		return c.tabSwitch(ev.At)
	case models.BrowserEventFullscreen:
		if req.RequireFullScreen {
			return c.Candidate(models.ViolationFullscreenExited, "Exited fullscreen mode", ev.At)
		}
	case models.BrowserEventScreenShare:
		if req.RequireScreenShare {
			return c.Candidate(models.ViolationScreenShareStopped, "Screen sharing stopped", ev.At)
		}
	case models.BrowserEventCamera:
		if req.NeedsCamera() {
			return c.Candidate(models.ViolationCameraOff, "Camera turned off", ev.At)
		}
	case models.BrowserEventMicrophone:
		if req.MonitorAudio {
			return c.Candidate(models.ViolationMicOff, "Microphone turned off", ev.At)
		}
	}
	return models.ViolationEvent{}, false
}

// ClassifyAccessDenied reports a required capability that could not be acquired.
func (c *Classifier) ClassifyAccessDenied(capability models.Capability, at time.Time) (models.ViolationEvent, bool) {
	var desc string
	switch capability {
	case models.CapabilityCamera, models.CapabilityMicrophone:
		desc = "Camera/microphone access denied"
	case models.CapabilityScreenShare:
		desc = "Screen share access denied"
	case models.CapabilityFullscreen:
		desc = "Fullscreen mode not active"
	default:
		desc = fmt.Sprintf("%s access denied", capability)
	}
	return c.Candidate(models.ViolationSuspiciousActivity, desc, at)
}

// Candidate is the throttle gate. A candidate arriving within ThrottleWindow
// of the last emitted event of its type is dropped and leaves no trace.
func (c *Classifier) Candidate(t models.ViolationType, description string, at time.Time) (models.ViolationEvent, bool) {
	if last, ok := c.lastEmittedAt[t]; ok && at.Sub(last) < c.cfg.ThrottleWindow {
		if c.throttled != nil {
			c.throttled(t)
		}
		return models.ViolationEvent{}, false
	}
	c.lastEmittedAt[t] = at
	return models.NewViolationEvent(t, description, at), true
}

// tabSwitch bypasses the throttle: every hidden transition is a strike.
func (c *Classifier) tabSwitch(at time.Time) (models.ViolationEvent, bool) {
	c.tabSwitchCount++
	c.lastEmittedAt[models.ViolationTabSwitch] = at
	return models.NewViolationEvent(models.ViolationTabSwitch, "Tab switching detected", at), true
}

func (c *Classifier) TabSwitchCount() int {
	return c.tabSwitchCount
}

// VoiceActive reports whether a qualifying voice window is currently open.
func (c *Classifier) VoiceActive() bool {
	return c.voiceStart != nil
}
