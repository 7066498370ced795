package violations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proctor/internal/platform/kafka/consumer"
	"proctor/internal/proctoring/models"
)

func encoded(t *testing.T, rec Record) *consumer.Message {
	t.Helper()
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	return &consumer.Message{Key: []byte(rec.SessionID), Value: b, Offset: 3}
}

func TestIngesterArchivesRecord(t *testing.T) {
	store := NewInMemoryStore()
	in := NewIngester(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := NewRecord(models.SessionInfo{SessionID: "s-1", CandidateID: "c-1"},
		models.NewViolationEvent(models.ViolationMultipleFaces, "Multiple faces detected", now), now)

	require.NoError(t, in.Handle(context.Background(), encoded(t, rec)))

	got, err := store.ListBySession(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)
}

func TestIngesterAcknowledgesPoisonMessages(t *testing.T) {
	store := NewInMemoryStore()
	in := NewIngester(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NoError(t, in.Handle(context.Background(), &consumer.Message{Value: []byte("{not json")}))
	assert.NoError(t, in.Handle(context.Background(), encoded(t, Record{ID: "x", SessionID: "s", Type: "NOPE"})))

	got, _ := store.ListBySession(context.Background(), "s")
	assert.Empty(t, got)
}

func TestIngesterReturnsWriterErrors(t *testing.T) {
	in := NewIngester(failingWriter{err: errors.New("db down")}, nil)
	now := time.Now()
	rec := NewRecord(models.SessionInfo{SessionID: "s-2"},
		models.NewViolationEvent(models.ViolationTabSwitch, "Tab switch detected", now), now)

	err := in.Handle(context.Background(), encoded(t, rec))
	assert.ErrorContains(t, err, "db down")
}
