package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "proctor/pkg/domain-errors"
)

type ViolationType string

const (
	ViolationFaceNotDetected    ViolationType = "FACE_NOT_DETECTED"
	ViolationMultipleFaces      ViolationType = "MULTIPLE_FACES"
	ViolationVoiceDetected      ViolationType = "VOICE_DETECTED"
	ViolationTabSwitch          ViolationType = "TAB_SWITCH"
	ViolationCameraOff          ViolationType = "CAMERA_OFF"
	ViolationMicOff             ViolationType = "MIC_OFF"
	ViolationFullscreenExited   ViolationType = "FULLSCREEN_EXITED"
	ViolationScreenShareStopped ViolationType = "SCREEN_SHARE_STOPPED"
	// ViolationSuspiciousActivity covers media access denial and other hard failures.
	ViolationSuspiciousActivity ViolationType = "SUSPICIOUS_ACTIVITY"
)

// AllViolationTypes lists every violation type in a stable order.
func AllViolationTypes() []ViolationType {
	return []ViolationType{
		ViolationFaceNotDetected,
		ViolationMultipleFaces,
		ViolationVoiceDetected,
		ViolationTabSwitch,
		ViolationCameraOff,
		ViolationMicOff,
		ViolationFullscreenExited,
		ViolationScreenShareStopped,
		ViolationSuspiciousActivity,
	}
}

func (t ViolationType) IsValid() bool {
	switch t {
	case ViolationFaceNotDetected, ViolationMultipleFaces, ViolationVoiceDetected,
		ViolationTabSwitch, ViolationCameraOff, ViolationMicOff,
		ViolationFullscreenExited, ViolationScreenShareStopped, ViolationSuspiciousActivity:
		return true
	}
	return false
}

// Severity is fixed per type.
func (t ViolationType) Severity() Severity {
	switch t {
	case ViolationMultipleFaces, ViolationFullscreenExited,
		ViolationScreenShareStopped, ViolationSuspiciousActivity:
		return SeverityHigh
	case ViolationFaceNotDetected, ViolationVoiceDetected,
		ViolationTabSwitch, ViolationCameraOff:
		return SeverityMedium
	case ViolationMicOff:
		return SeverityLow
	}
	return SeverityLow
}

func (t ViolationType) String() string {
	return string(t)
}

// ParseViolationType accepts the canonical upper-case name or its lower-case
// snake form ("multiple_faces").
func ParseViolationType(s string) (ViolationType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "violation type cannot be empty")
	}
	t := ViolationType(strings.ToUpper(s))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown violation type %q", s))
	}
	return t, nil
}

// Severity is ordered: SeverityLow < SeverityMedium < SeverityHigh.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	}
	return "unknown"
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown severity %q", s))
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ViolationEvent is immutable once created.
type ViolationEvent struct {
	ID          string        `json:"id"`
	Type        ViolationType `json:"type"`
	Severity    Severity      `json:"severity"`
	Timestamp   time.Time     `json:"timestamp"`
	Description string        `json:"description"`
}

// NewViolationEvent stamps the type's fixed severity and a fresh ID.
func NewViolationEvent(t ViolationType, description string, at time.Time) ViolationEvent {
	return ViolationEvent{
		ID:          uuid.NewString(),
		Type:        t,
		Severity:    t.Severity(),
		Timestamp:   at,
		Description: description,
	}
}

// SessionState is the termination policy state.
type SessionState string

const (
	StateRunning     SessionState = "running"
	StateTerminating SessionState = "terminating"
	StateTerminated  SessionState = "terminated"
	StateSubmitted   SessionState = "submitted"
)

// IsTerminal reports whether no further counter mutation can happen.
func (s SessionState) IsTerminal() bool {
	return s == StateTerminated || s == StateSubmitted
}
