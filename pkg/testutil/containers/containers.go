//go:build integration

// Package containers holds the Postgres and Redpanda fixtures behind the
// integration build tag. A container is started by the first test that asks
// for it and then shared by every suite in the test binary, so no fixture may
// tie the container's lifetime to a single test.
package containers

import (
	"sync"
	"testing"
)

// shared starts its container on first use. A failed start is not cached, so
// the next test retries and reports its own failure.
type shared[T any] struct {
	mu    sync.Mutex
	value *T
}

func (s *shared[T]) get(t *testing.T, start func(*testing.T) *T) *T {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == nil {
		s.value = start(t)
	}
	return s.value
}

type Manager struct {
	postgres shared[PostgresContainer]
	kafka    shared[KafkaContainer]
}

var manager = sync.OnceValue(func() *Manager { return &Manager{} })

// GetManager returns the process-wide manager.
func GetManager() *Manager {
	return manager()
}

// GetPostgres returns the migrated Postgres fixture. Callers truncate the
// tables they touch.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return m.postgres.get(t, NewPostgresContainer)
}

// GetKafka returns the Redpanda fixture. Callers create their own topics.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return m.kafka.get(t, NewKafkaContainer)
}
