// Package report delivers the end-of-session submission.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"proctor/internal/proctoring/models"
	dErrors "proctor/pkg/domain-errors"
)

const (
	SignatureHeader = "X-Proctoring-Signature"
	defaultTimeout  = 10 * time.Second
	defaultTokenTTL = 15 * time.Minute
)

// HTTPDoer is the part of *http.Client the submitter needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSubmitter POSTs the submission as JSON and, when a key is configured,
// attaches a signed summary token.
type HTTPSubmitter struct {
	url        string
	client     HTTPDoer
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	logger     *slog.Logger
}

type Option func(*HTTPSubmitter)

func WithHTTPClient(c HTTPDoer) Option {
	return func(s *HTTPSubmitter) {
		if c != nil {
			s.client = c
		}
	}
}

func WithSigningKey(key []byte) Option {
	return func(s *HTTPSubmitter) {
		s.signingKey = key
	}
}

func WithIssuer(issuer string) Option {
	return func(s *HTTPSubmitter) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSubmitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewHTTPSubmitter(url string, opts ...Option) (*HTTPSubmitter, error) {
	if url == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "submit url is required")
	}
	s := &HTTPSubmitter{
		url:      url,
		client:   &http.Client{Timeout: defaultTimeout},
		issuer:   DefaultIssuer,
		tokenTTL: defaultTokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPSubmitter) Submit(ctx context.Context, sub models.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if len(s.signingKey) > 0 {
		token, err := Sign(sub, s.signingKey, s.issuer, s.tokenTTL)
		if err != nil {
			return err
		}
		req.Header.Set(SignatureHeader, token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "submission timed out")
		}
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("submission rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Info("proctoring_submission_accepted",
		"session_id", sub.SessionID,
		"status", resp.StatusCode,
		"terminated", sub.Terminated,
	)
	return nil
}

// LogSubmitter records the submission in the log instead of sending it. The
// agent uses it when no submit URL is configured.
type LogSubmitter struct {
	logger *slog.Logger
}

func NewLogSubmitter(logger *slog.Logger) *LogSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSubmitter{logger: logger}
}

func (s *LogSubmitter) Submit(_ context.Context, sub models.Submission) error {
	s.logger.Info("proctoring_submission_logged",
		"session_id", sub.SessionID,
		"candidate_id", sub.CandidateID,
		"terminated", sub.Terminated,
		"reason", sub.Reason,
		"tab_switches", sub.Summary.TabSwitches,
		"total_violations", sub.Summary.TotalViolations,
		"face_detection_failures", sub.Summary.FaceDetectionFailures,
		"voice_detections", sub.Summary.VoiceDetections,
	)
	return nil
}
