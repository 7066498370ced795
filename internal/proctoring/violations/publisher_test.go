package violations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"proctor/internal/proctoring/metrics"
	"proctor/internal/proctoring/models"
)

// PublisherSuite covers the hot-path contract: sync mode surfaces writer
// errors, async mode never blocks the caller and drains on Close.
type PublisherSuite struct {
	suite.Suite
	store   *InMemoryStore
	metrics *metrics.Metrics
	info    models.SessionInfo
	now     time.Time
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.info = models.SessionInfo{SessionID: "session-1", CandidateID: "cand-7", TestSessionID: "ts-3"}
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *PublisherSuite) event(t models.ViolationType) models.ViolationEvent {
	return models.NewViolationEvent(t, "desc", s.now)
}

// =============================================================================
// Sync mode
// =============================================================================

func (s *PublisherSuite) TestSyncEmitPersistsRecord() {
	p := NewPublisher(s.store, WithPublisherClock(func() time.Time { return s.now.Add(time.Second) }))
	defer p.Close()

	ev := s.event(models.ViolationMultipleFaces)
	s.Require().NoError(p.Emit(context.Background(), s.info, ev))

	recs, err := s.store.ListBySession(context.Background(), "session-1")
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(ev.ID, recs[0].ID)
	s.Equal("cand-7", recs[0].CandidateID)
	s.Equal("ts-3", recs[0].TestSessionID)
	s.Equal(models.SeverityHigh, recs[0].Severity)
	s.Equal(s.now, recs[0].ViolationTime)
	s.Equal(s.now.Add(time.Second), recs[0].RecordedAt)
}

func (s *PublisherSuite) TestSyncEmitReturnsWriterError() {
	p := NewPublisher(failingWriter{err: errors.New("disk full")})
	err := p.Emit(context.Background(), s.info, s.event(models.ViolationTabSwitch))
	s.ErrorContains(err, "disk full")
}

// =============================================================================
// Async mode
// =============================================================================

func (s *PublisherSuite) TestAsyncCloseDrainsQueue() {
	p := NewPublisher(s.store, WithAsyncBuffer(16))
	for i := 0; i < 5; i++ {
		s.Require().NoError(p.Emit(context.Background(), s.info, s.event(models.ViolationVoiceDetected)))
	}
	p.Close()

	recs, err := s.store.ListBySession(context.Background(), "session-1")
	s.Require().NoError(err)
	s.Len(recs, 5)
}

func (s *PublisherSuite) TestAsyncBufferFullDropsWithoutBlocking() {
	w := newGateWriter()
	p := NewPublisher(w, WithAsyncBuffer(1), WithPublisherMetrics(s.metrics))

	s.Require().NoError(p.Emit(context.Background(), s.info, s.event(models.ViolationTabSwitch)))
	<-w.started

	// One record is held by the writer and one fills the buffer; the third is dropped.
	s.Require().NoError(p.Emit(context.Background(), s.info, s.event(models.ViolationTabSwitch)))
	s.Require().NoError(p.Emit(context.Background(), s.info, s.event(models.ViolationTabSwitch)))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.SinkEventsDropped))

	close(w.release)
	p.Close()
	s.Equal(2, w.count())
}

func (s *PublisherSuite) TestAsyncWriterFailureIsCounted() {
	p := NewPublisher(failingWriter{err: errors.New("down")}, WithAsyncBuffer(4), WithPublisherMetrics(s.metrics))
	s.Require().NoError(p.Emit(context.Background(), s.info, s.event(models.ViolationCameraOff)))
	p.Close()
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.SinkFailures.WithLabelValues("publisher")))
}

func (s *PublisherSuite) TestEmitAfterCloseIsIgnored() {
	p := NewPublisher(s.store, WithAsyncBuffer(4))
	p.Close()
	p.Close()
	s.NoError(p.Emit(context.Background(), s.info, s.event(models.ViolationCameraOff)))

	recs, _ := s.store.ListBySession(context.Background(), "session-1")
	s.Empty(recs)
}

// =============================================================================
// Fan-out
// =============================================================================

func (s *PublisherSuite) TestMultiJoinsErrorsAndKeepsDelivering() {
	second := NewInMemoryStore()
	m := NewMulti(failingWriter{err: errors.New("kafka down")}, nil, second)
	s.Equal(2, m.Len())

	rec := NewRecord(s.info, s.event(models.ViolationMicOff), s.now)
	err := m.Append(context.Background(), rec)
	s.ErrorContains(err, "kafka down")

	recs, _ := second.ListBySession(context.Background(), "session-1")
	s.Len(recs, 1)
}

func (s *PublisherSuite) TestMemoryStoreListIsACopy() {
	rec := NewRecord(s.info, s.event(models.ViolationMicOff), s.now)
	s.Require().NoError(s.store.Append(context.Background(), rec))

	recs, _ := s.store.ListBySession(context.Background(), "session-1")
	recs[0].Description = "mutated"

	again, _ := s.store.ListBySession(context.Background(), "session-1")
	s.Equal("desc", again[0].Description)

	s.store.Clear()
	again, _ = s.store.ListBySession(context.Background(), "session-1")
	s.Empty(again)
}

type failingWriter struct{ err error }

func (f failingWriter) Append(context.Context, Record) error { return f.err }

// gateWriter blocks every Append until release is closed.
type gateWriter struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	n       int
}

func newGateWriter() *gateWriter {
	return &gateWriter{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gateWriter) Append(context.Context, Record) error {
	g.once.Do(func() { close(g.started) })
	<-g.release
	g.mu.Lock()
	g.n++
	g.mu.Unlock()
	return nil
}

func (g *gateWriter) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
