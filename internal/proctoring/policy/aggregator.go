// Package policy aggregates emitted violations into session counters and
// decides when a session must be terminated.
//
// Two escalation tracks run side by side. Tab switches follow a strict strike
// count. Every other signal is noisy, so termination waits until a high
// severity event pushes the running total to the configured limit.
package policy

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/looplab/fsm"

	"proctor/internal/proctoring/config"
	"proctor/internal/proctoring/models"
)

const (
	eventTerminate = "terminate"
	eventFinalize  = "finalize"
	eventSubmit    = "submit"
)

// Outcome reports what recording one event did to the session.
type Outcome struct {
	// Counted is false when the session was no longer running.
	Counted bool
	Warning *models.Warning
	// Notice is set exactly once per session, on the event that crossed a limit.
	Notice *models.TerminationNotice
}

func (o Outcome) Terminated() bool {
	return o.Notice != nil
}

type Aggregator struct {
	mu       sync.Mutex
	cfg      config.Config
	machine  *fsm.FSM
	counters models.SessionCounters
	recent   []models.ViolationEvent
	notice   *models.TerminationNotice
	fired    atomic.Bool
	logger   *slog.Logger
}

type Option func(*Aggregator)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

func NewAggregator(cfg config.Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:      cfg,
		counters: models.NewSessionCounters(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.machine = fsm.NewFSM(
		string(models.StateRunning),
		fsm.Events{
			{Name: eventTerminate, Src: []string{string(models.StateRunning)}, Dst: string(models.StateTerminating)},
			{Name: eventFinalize, Src: []string{string(models.StateTerminating)}, Dst: string(models.StateTerminated)},
			{Name: eventSubmit, Src: []string{string(models.StateRunning)}, Dst: string(models.StateSubmitted)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				a.logger.Info("proctoring_state_changed",
					"from", e.Src,
					"to", e.Dst,
					"event", e.Event,
				)
			},
		},
	)
	return a
}

// Record applies one emitted violation. Events arriving after the session
// left the running state are ignored.
func (a *Aggregator) Record(ev models.ViolationEvent) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state() != models.StateRunning {
		return Outcome{}
	}

	a.count(ev)
	out := Outcome{Counted: true}

	if ev.Type == models.ViolationTabSwitch {
		strike := a.counters.TabSwitchCount
		if strike >= a.cfg.TabSwitchStrikes {
			out.Notice = a.terminate(models.TerminationTabSwitchLimit, ev)
			return out
		}
		out.Warning = &models.Warning{
			Type:    models.ViolationTabSwitch,
			Message: models.TabSwitchWarningMessage,
			Strike:  strike,
		}
	}

	if ev.Severity == models.SeverityHigh && a.counters.MonitorViolations() >= a.cfg.HighSeverityViolationLimit {
		out.Notice = a.terminate(models.TerminationViolationLimit, ev)
	}
	return out
}

func (a *Aggregator) count(ev models.ViolationEvent) {
	switch ev.Type {
	case models.ViolationFaceNotDetected:
		a.counters.FaceDetectionFailureCount++
	case models.ViolationVoiceDetected:
		a.counters.VoiceDetectionCount++
	case models.ViolationTabSwitch:
		a.counters.TabSwitchCount++
	}
	a.counters.ViolationsByType[ev.Type]++
	a.counters.TotalViolations++

	if a.cfg.RecentViolationsKept > 0 {
		a.recent = append(a.recent, ev)
		if n := len(a.recent) - a.cfg.RecentViolationsKept; n > 0 {
			a.recent = append([]models.ViolationEvent(nil), a.recent[n:]...)
		}
	}
}

// terminate moves running to terminating. Must be called with mu held.
func (a *Aggregator) terminate(reason models.TerminationReason, trigger models.ViolationEvent) *models.TerminationNotice {
	if !a.fired.CompareAndSwap(false, true) {
		return nil
	}
	if err := a.machine.Event(context.Background(), eventTerminate); err != nil {
		a.logger.Error("proctoring_termination_transition_failed", "error", err)
		return nil
	}
	a.logger.Warn("proctoring_termination_triggered",
		"reason", reason,
		"trigger_type", trigger.Type,
		"total_violations", a.counters.TotalViolations,
		"tab_switches", a.counters.TabSwitchCount,
	)
	a.notice = &models.TerminationNotice{
		Reason:   reason,
		Message:  reason.Message(),
		Trigger:  trigger,
		Counters: a.counters.Clone(),
	}
	return a.notice
}

// Notice returns the termination notice, if the session was terminated.
func (a *Aggregator) Notice() (models.TerminationNotice, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.notice == nil {
		return models.TerminationNotice{}, false
	}
	return *a.notice, true
}

// Finalize completes a termination once the forced submission was attempted.
// Returns false unless the session was terminating.
func (a *Aggregator) Finalize() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.machine.Event(context.Background(), eventFinalize) == nil
}

// MarkSubmitted is the normal end of a session. Returns false if the session
// was not running, including when a termination already won the race.
func (a *Aggregator) MarkSubmitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fired.Load() {
		return false
	}
	return a.machine.Event(context.Background(), eventSubmit) == nil
}

func (a *Aggregator) Counters() models.SessionCounters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters.Clone()
}

func (a *Aggregator) State() models.SessionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state()
}

func (a *Aggregator) state() models.SessionState {
	return models.SessionState(a.machine.Current())
}

// Recent returns the most recent events, oldest first.
func (a *Aggregator) Recent() []models.ViolationEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ViolationEvent(nil), a.recent...)
}
