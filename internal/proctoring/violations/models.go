package violations

import (
	"time"

	"proctor/internal/proctoring/models"
)

// Record is one persisted violation, shaped after the proctoring_violations table.
type Record struct {
	ID            string               `json:"id"`
	SessionID     string               `json:"sessionId"`
	CandidateID   string               `json:"candidateId,omitempty"`
	TestSessionID string               `json:"testSessionId,omitempty"`
	Type          models.ViolationType `json:"violationType"`
	Severity      models.Severity      `json:"severity"`
	Description   string               `json:"description"`
	ViolationTime time.Time            `json:"violationTime"`
	RecordedAt    time.Time            `json:"recordedAt"`
}

func NewRecord(info models.SessionInfo, ev models.ViolationEvent, recordedAt time.Time) Record {
	return Record{
		ID:            ev.ID,
		SessionID:     info.SessionID,
		CandidateID:   info.CandidateID,
		TestSessionID: info.TestSessionID,
		Type:          ev.Type,
		Severity:      ev.Severity,
		Description:   ev.Description,
		ViolationTime: ev.Timestamp,
		RecordedAt:    recordedAt,
	}
}
