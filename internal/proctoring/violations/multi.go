package violations

import (
	"context"
	"errors"
)

// Multi fans a record out to several writers. A failing writer does not stop
// delivery to the rest; errors are joined.
type Multi struct {
	writers []Writer
}

func NewMulti(writers ...Writer) *Multi {
	m := &Multi{}
	for _, w := range writers {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

func (m *Multi) Append(ctx context.Context, rec Record) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Len() int {
	return len(m.writers)
}
