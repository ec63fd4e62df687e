// internal/api/handlers.go

// Package api exposes the call simulator over HTTP. Handlers stay thin:
// decode, delegate to the session manager, encode. Error mapping to
// status codes lives in the shared error taxonomy.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
	"coldcall-backend/internal/session"
)

// SessionService is the slice of the session manager the handlers use.
type SessionService interface {
	StartSession(ctx context.Context, prospectMode string) (*session.StartResult, error)
	ProcessInput(ctx context.Context, sessionID, userText string) (*session.TurnOutput, error)
	ProspectTurn(ctx context.Context, sessionID string) (*session.TurnOutput, error)
	EndCall(ctx context.Context, sessionID string) (*engine.Outcome, error)
	GetOutcome(ctx context.Context, sessionID string) (*engine.Outcome, error)
	GetTrace(ctx context.Context, sessionID string) ([]engine.TraceEntry, error)
}

type RunRequest struct {
	ProspectMode string `json:"prospect_mode,omitempty"`
}

type InputRequest struct {
	UserText string `json:"user_text"`
}

type OutcomeResponse struct {
	Status  string          `json:"status"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
}

type TraceResponse struct {
	SessionID string              `json:"sessionId"`
	Trace     []engine.TraceEntry `json:"trace"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Handler struct {
	sessions SessionService
	logger   logger.Logger
}

func NewHandler(sessions SessionService, log logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		logger: log.WithFields(map[string]interface{}{
			"component": "http-api",
		}),
	}
}

// Run starts a new simulation session.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, commonerrors.NewValidationFailedError("invalid JSON body"))
			return
		}
	}

	res, err := h.sessions.StartSession(r.Context(), req.ProspectMode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, res)
}

// Input processes one prospect utterance.
func (h *Handler) Input(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, commonerrors.NewValidationFailedError("invalid JSON body"))
		return
	}
	if req.UserText == "" {
		h.writeError(w, commonerrors.NewValidationFailedError("user_text is required"))
		return
	}

	out, err := h.sessions.ProcessInput(r.Context(), sessionID, req.UserText)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

// Prospect generates a simulated prospect turn and processes it.
func (h *Handler) Prospect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	out, err := h.sessions.ProspectTurn(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

// End force-ends a running session.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	outcome, err := h.sessions.EndCall(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, OutcomeResponse{Status: session.StatusCompleted, Outcome: outcome})
}

// Outcome returns the final report. Running sessions get status
// "running" with no outcome, matching the polling contract.
func (h *Handler) Outcome(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	outcome, err := h.sessions.GetOutcome(r.Context(), sessionID)
	if err != nil {
		if stdErr, ok := commonerrors.AsStandardError(err); ok &&
			stdErr.Code == commonerrors.ErrCodeOutcomeNotReady {
			h.writeJSON(w, http.StatusOK, OutcomeResponse{Status: session.StatusRunning})
			return
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, OutcomeResponse{Status: session.StatusCompleted, Outcome: outcome})
}

// Trace returns the per-turn decision trace.
func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	trace, err := h.sessions.GetTrace(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, TraceResponse{SessionID: sessionID, Trace: trace})
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encode failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	stdErr, ok := commonerrors.AsStandardError(err)
	if !ok {
		h.logger.Error("unclassified error", map[string]interface{}{
			"error": err.Error(),
		})
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "internal error",
		})
		return
	}

	h.writeJSON(w, commonerrors.HTTPStatus(stdErr.Code), errorResponse{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}
