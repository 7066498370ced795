package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"proctor/internal/proctoring/models"
)

const DefaultIssuer = "proctor-agent"

// SummaryClaims binds the violation summary to the session so the receiving
// service can detect a tampered payload.
type SummaryClaims struct {
	SessionID     string                   `json:"sid"`
	TestSessionID string                   `json:"tsid,omitempty"`
	Summary       models.Summary           `json:"proctoringData"`
	Terminated    bool                     `json:"terminated"`
	Reason        models.TerminationReason `json:"reason,omitempty"`
	jwt.RegisteredClaims
}

func newSummaryClaims(sub models.Submission, issuer string, ttl time.Duration) SummaryClaims {
	at := sub.SubmittedAt
	if at.IsZero() {
		at = time.Now()
	}
	return SummaryClaims{
		SessionID:     sub.SessionID,
		TestSessionID: sub.TestSessionID,
		Summary:       sub.Summary,
		Terminated:    sub.Terminated,
		Reason:        sub.Reason,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub.CandidateID,
			IssuedAt:  jwt.NewNumericDate(at),
			ExpiresAt: jwt.NewNumericDate(at.Add(ttl)),
		},
	}
}

// Sign returns an HS256 token over the submission summary.
func Sign(sub models.Submission, key []byte, issuer string, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", errors.New("signing key is required")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newSummaryClaims(sub, issuer, ttl))
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign summary: %w", err)
	}
	return signed, nil
}

// Verify parses a token produced by Sign.
func Verify(token string, key []byte, issuer string) (*SummaryClaims, error) {
	claims := &SummaryClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("verify summary: %w", err)
	}
	return claims, nil
}
