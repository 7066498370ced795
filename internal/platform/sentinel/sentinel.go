package sentinel

import "errors"

// Sentinel dependency errors. Media capabilities and stores return these
// (optionally wrapped) so the session layer can translate them into domain
// errors exactly once.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnavailable      = errors.New("unavailable")
	ErrPermissionDenied = errors.New("permission denied")
	ErrClosed           = errors.New("closed")
)
