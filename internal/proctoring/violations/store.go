package violations

import "context"

// Writer persists violation records.
type Writer interface {
	Append(ctx context.Context, rec Record) error
}

// Store is a Writer that can also read a session's history back.
type Store interface {
	Writer
	ListBySession(ctx context.Context, sessionID string) ([]Record, error)
}
