package models

import "time"

// SessionInfo identifies who is being proctored and on which device.
type SessionInfo struct {
	SessionID     string `json:"sessionId"`
	CandidateID   string `json:"candidateId,omitempty"`
	TestSessionID string `json:"testSessionId,omitempty"`
	Device        string `json:"device,omitempty"`
	Fingerprint   string `json:"deviceFingerprint,omitempty"`
}

// Submission is handed to the submitter exactly once per delivered session.
// Terminated distinguishes a policy-forced submission from a normal one.
type Submission struct {
	SessionInfo
	Summary     Summary           `json:"proctoringData"`
	Counters    SessionCounters   `json:"counters"`
	Terminated  bool              `json:"terminated"`
	Reason      TerminationReason `json:"reason,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
}
