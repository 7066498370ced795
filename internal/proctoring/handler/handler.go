// Package handler exposes the running session over a small local HTTP API:
// status for the exam UI, a browser-event intake for the page bridge, and
// the candidate's submit action.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Session,ViolationLister

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"proctor/internal/platform/middleware"
	"proctor/internal/proctoring/models"
	"proctor/internal/proctoring/violations"
	dErrors "proctor/pkg/domain-errors"
	"proctor/pkg/platform/httputil"
)

type Session interface {
	Info() models.SessionInfo
	Requirements() models.Requirements
	State() models.SessionState
	Counters() models.SessionCounters
	Recent() []models.ViolationEvent
	HandleBrowserEvent(ev models.BrowserEvent)
	Submit(ctx context.Context) error
}

type ViolationLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]violations.Record, error)
}

type Handler struct {
	session Session
	store   ViolationLister
	logger  *slog.Logger
	now     func() time.Time
}

// New builds the handler. store may be nil, in which case the violation log
// endpoint answers 404.
func New(session Session, store ViolationLister, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{session: session, store: store, logger: logger, now: time.Now}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/session", h.HandleStatus)
	r.Get("/session/violations", h.HandleViolations)
	r.Post("/session/events", h.HandleBrowserEvent)
	r.Post("/session/submit", h.HandleSubmit)
}

type StatusResponse struct {
	Session      models.SessionInfo      `json:"session"`
	Requirements models.Requirements     `json:"requirements"`
	State        models.SessionState     `json:"state"`
	Summary      models.Summary          `json:"proctoringData"`
	Counters     models.SessionCounters  `json:"counters"`
	Recent       []models.ViolationEvent `json:"recentViolations"`
}

// HandleStatus implements GET /session.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	counters := h.session.Counters()
	recent := h.session.Recent()
	if recent == nil {
		recent = []models.ViolationEvent{}
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Session:      h.session.Info(),
		Requirements: h.session.Requirements(),
		State:        h.session.State(),
		Summary:      counters.Summary(),
		Counters:     counters,
		Recent:       recent,
	})
}

type ViolationsResponse struct {
	SessionID  string              `json:"sessionId"`
	Violations []violations.Record `json:"violations"`
}

// HandleViolations implements GET /session/violations.
func (h *Handler) HandleViolations(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "violation log is not enabled"))
		return
	}
	sessionID := h.session.Info().SessionID
	recs, err := h.store.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "proctoring_violation_list_failed",
			"error", err,
			"session_id", sessionID,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	if recs == nil {
		recs = []violations.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, ViolationsResponse{SessionID: sessionID, Violations: recs})
}

type BrowserEventRequest struct {
	Kind   models.BrowserEventKind `json:"kind"`
	Active *bool                   `json:"active"`
}

func (req *BrowserEventRequest) Validate() error {
	if !req.Kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "kind must be one of visibility, fullscreen, screen_share, camera, microphone")
	}
	if req.Active == nil {
		return dErrors.New(dErrors.CodeValidation, "active is required")
	}
	return nil
}

// HandleBrowserEvent implements POST /session/events.
func (h *Handler) HandleBrowserEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[BrowserEventRequest](w, r)
	if !ok {
		return
	}
	if h.session.State().IsTerminal() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidState, "session is no longer running"))
		return
	}
	h.session.HandleBrowserEvent(models.BrowserEvent{Kind: req.Kind, Active: *req.Active, At: h.now()})
	w.WriteHeader(http.StatusAccepted)
}

type SubmitResponse struct {
	State   models.SessionState `json:"state"`
	Summary models.Summary      `json:"proctoringData"`
}

// HandleSubmit implements POST /session/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Submit(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "proctoring_submit_request_failed",
			"error", err,
			"session_id", h.session.Info().SessionID,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
		State:   h.session.State(),
		Summary: h.session.Counters().Summary(),
	})
}
