package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/api/shared"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/tutor"
)

// SessionLister is the session history surface the handler needs.
type SessionLister interface {
	ListSessions(ctx context.Context, userID uuid.UUID) ([]domain.Session, error)
	RestoreSession(ctx context.Context, userID uuid.UUID, sessionID string) (*tutor.Workspace, error)
}

// SessionHandler serves the caller's saved sessions.
type SessionHandler struct {
	sessions SessionLister
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions SessionLister, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With("component", "session_handler"),
	}
}

// List handles GET /api/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	sessions, err := h.sessions.ListSessions(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	out := SessionListResponse{Sessions: make([]SessionSummary, 0, len(sessions))}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, newSessionSummary(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Restore handles POST /api/sessions/{id}/restore.
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ws, err := h.sessions.RestoreSession(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	respondWithAction(w, r, true, ws)
}
