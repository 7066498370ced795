package session

import (
	"log/slog"
	"time"

	"proctor/internal/platform/tracer"
	"proctor/internal/proctoring/config"
	"proctor/internal/proctoring/device"
	"proctor/internal/proctoring/media"
	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
)

const defaultSubmitTimeout = 30 * time.Second

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithConfig(cfg config.Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithSink adds telemetry sinks. Every emitted violation is sent to each.
func WithSink(sinks ...Sink) Option {
	return func(c *Controller) {
		for _, s := range sinks {
			if s != nil {
				c.sinks = append(c.sinks, s)
			}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithSignals(signals media.Signals) Option {
	return func(c *Controller) {
		if signals != nil {
			c.signals = signals
		}
	}
}

// WithSessionInfo sets the identifiers carried on telemetry and submission.
// An empty SessionID keeps the generated one.
func WithSessionInfo(info models.SessionInfo) Option {
	return func(c *Controller) {
		if info.SessionID == "" {
			info.SessionID = c.info.SessionID
		}
		c.info = info
	}
}

// WithUserAgent derives the device label and fingerprint from a User-Agent.
func WithUserAgent(userAgent string) Option {
	return func(c *Controller) {
		c.userAgent = userAgent
	}
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.submitTimeout = d
		}
	}
}

// OnTerminated registers a hook called once when the policy forces submission.
// Hooks run on a dedicated goroutine and may call Stop.
func OnTerminated(fn func(models.TerminationNotice)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.onTerminated = append(c.onTerminated, fn)
		}
	}
}

// OnWarning hooks run on the goroutine that produced the event and must not
// call Stop.
func OnWarning(fn func(models.Warning)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.onWarning = append(c.onWarning, fn)
		}
	}
}

// OnViolation hooks run on the goroutine that produced the event and must not
// call Stop.
func OnViolation(fn func(models.ViolationEvent)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.onViolation = append(c.onViolation, fn)
		}
	}
}

func (c *Controller) applyUserAgent() {
	if c.userAgent == "" {
		return
	}
	c.info.Device = device.Label(c.userAgent)
	c.info.Fingerprint = device.Fingerprint(c.userAgent)
	if device.Bot(c.userAgent) {
		c.logger.Warn("proctoring_automated_client",
			"session_id", c.info.SessionID,
			"device", c.info.Device,
		)
	}
}
