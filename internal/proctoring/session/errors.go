package session

import (
	"fmt"

	"proctor/internal/proctoring/models"
	dErrors "proctor/pkg/domain-errors"
)

var (
	ErrAlreadyStarted = dErrors.New(dErrors.CodeInvalidState, "proctoring session already started")
	ErrNotStarted     = dErrors.New(dErrors.CodeInvalidState, "proctoring session not started")
	ErrStopped        = dErrors.New(dErrors.CodeInvalidState, "proctoring session stopped")
)

// SetupError names the required capability that blocked the session start.
type SetupError struct {
	Requirement models.Capability
	Err         error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("required %s unavailable: %v", e.Requirement, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func setupFailure(capability models.Capability, err error) error {
	return dErrors.Wrap(&SetupError{Requirement: capability, Err: err},
		dErrors.CodeCapabilityUnavailable,
		fmt.Sprintf("required %s is unavailable", capability))
}
