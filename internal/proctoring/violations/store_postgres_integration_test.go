//go:build integration

package violations_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"proctor/internal/proctoring/models"
	"proctor/internal/proctoring/violations"
	"proctor/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *violations.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = violations.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateViolations(context.Background()))
}

func (s *PostgresStoreSuite) TestAppendAndListInViolationOrder() {
	ctx := context.Background()
	info := models.SessionInfo{SessionID: "s-1", CandidateID: "cand-1", TestSessionID: "ts-1"}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	late := violations.NewRecord(info, models.NewViolationEvent(models.ViolationVoiceDetected, "Voice activity detected (level: 80)", base.Add(time.Minute)), base)
	early := violations.NewRecord(info, models.NewViolationEvent(models.ViolationTabSwitch, "Tab switching detected", base), base)
	s.Require().NoError(s.store.Append(ctx, late))
	s.Require().NoError(s.store.Append(ctx, early))

	recs, err := s.store.ListBySession(ctx, "s-1")
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(early.ID, recs[0].ID)
	s.Equal(models.ViolationVoiceDetected, recs[1].Type)
	s.Equal(models.SeverityMedium, recs[1].Severity)
	s.Equal("cand-1", recs[1].CandidateID)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotentOnID() {
	ctx := context.Background()
	now := time.Now().UTC()
	rec := violations.NewRecord(models.SessionInfo{SessionID: "s-2"}, models.NewViolationEvent(models.ViolationCameraOff, "Camera turned off", now), now)
	s.Require().NoError(s.store.Append(ctx, rec))
	s.Require().NoError(s.store.Append(ctx, rec))

	recs, err := s.store.ListBySession(ctx, "s-2")
	s.Require().NoError(err)
	s.Len(recs, 1)
	s.Empty(recs[0].CandidateID)
}
