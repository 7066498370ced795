package models

import "maps"

// SessionCounters is owned by the aggregator. Everyone else reads clones.
type SessionCounters struct {
	TabSwitchCount            int                   `json:"tabSwitchCount"`
	FaceDetectionFailureCount int                   `json:"faceDetectionFailureCount"`
	VoiceDetectionCount       int                   `json:"voiceDetectionCount"`
	TotalViolations           int                   `json:"totalViolations"`
	ViolationsByType          map[ViolationType]int `json:"violationsByType"`
}

func NewSessionCounters() SessionCounters {
	return SessionCounters{ViolationsByType: make(map[ViolationType]int)}
}

// Clone deep-copies the per-type map.
func (c SessionCounters) Clone() SessionCounters {
	out := c
	out.ViolationsByType = make(map[ViolationType]int, len(c.ViolationsByType))
	maps.Copy(out.ViolationsByType, c.ViolationsByType)
	return out
}

// Consistent reports whether TotalViolations equals the per-type sum.
func (c SessionCounters) Consistent() bool {
	sum := 0
	for _, n := range c.ViolationsByType {
		sum += n
	}
	return sum == c.TotalViolations
}

// MonitorViolations counts the camera, audio and screen track. Tab switches
// escalate on their own strike counter and are left out.
func (c SessionCounters) MonitorViolations() int {
	return c.TotalViolations - c.TabSwitchCount
}

// Summary is the violation payload handed to the submission endpoint.
// TotalViolations excludes tab switches, which are reported separately.
type Summary struct {
	TabSwitches           int `json:"tabSwitches"`
	TotalViolations       int `json:"totalViolations"`
	FaceDetectionFailures int `json:"faceDetectionFailures"`
	VoiceDetections       int `json:"voiceDetections"`
}

func (c SessionCounters) Summary() Summary {
	return Summary{
		TabSwitches:           c.TabSwitchCount,
		TotalViolations:       c.MonitorViolations(),
		FaceDetectionFailures: c.FaceDetectionFailureCount,
		VoiceDetections:       c.VoiceDetectionCount,
	}
}

type TerminationReason string

const (
	TerminationTabSwitchLimit TerminationReason = "tab_switch_limit"
	TerminationViolationLimit TerminationReason = "violation_limit"
)

// Message is the text shown to the candidate before the forced submission.
func (r TerminationReason) Message() string {
	switch r {
	case TerminationTabSwitchLimit:
		return "Assessment terminated due to multiple tab switches."
	case TerminationViolationLimit:
		return "Assessment terminated due to multiple security violations."
	}
	return "Assessment terminated."
}

// TerminationNotice is delivered to the UI hook when the policy forces submission.
type TerminationNotice struct {
	Reason   TerminationReason `json:"reason"`
	Message  string            `json:"message"`
	Trigger  ViolationEvent    `json:"trigger"`
	Counters SessionCounters   `json:"counters"`
}

// TabSwitchWarningMessage is shown on the first tab switch.
const TabSwitchWarningMessage = "WARNING: Tab switching detected. One more violation will terminate your assessment."

// Warning is a non-terminal escalation shown to the candidate.
type Warning struct {
	Type    ViolationType `json:"type"`
	Message string        `json:"message"`
	Strike  int           `json:"strike"`
}
