package session

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks Submitter,Sink

import (
	"context"

	"proctor/internal/proctoring/models"
)

// Submitter delivers the final violation summary to the assessment backend.
type Submitter interface {
	Submit(ctx context.Context, sub models.Submission) error
}

// Sink receives every emitted violation for telemetry. Implementations should
// not block; the controller does not retry.
type Sink interface {
	Emit(ctx context.Context, info models.SessionInfo, ev models.ViolationEvent) error
}
