package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/api/shared"
	"github.com/phrazzld/scry-tutor/internal/tutor"
)

// WorkspaceProvider returns the live workspace for a user.
type WorkspaceProvider interface {
	Get(userID uuid.UUID) *tutor.Workspace
}

// WorkspaceHandler exposes the caller's workspace state machine.
type WorkspaceHandler struct {
	workspaces WorkspaceProvider
	logger     *slog.Logger
}

// NewWorkspaceHandler creates a WorkspaceHandler.
func NewWorkspaceHandler(workspaces WorkspaceProvider, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		logger:     logger.With("component", "workspace_handler"),
	}
}

func (h *WorkspaceHandler) workspace(w http.ResponseWriter, r *http.Request) (*tutor.Workspace, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return nil, false
	}
	return h.workspaces.Get(userID), true
}

// Get handles GET /api/workspace.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newWorkspaceView(ws.State()))
}

// SubmitDocument handles POST /api/workspace/document. The call blocks while
// the document is analyzed.
func (h *WorkspaceHandler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req SubmitDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	applied, err := ws.SubmitDocument(r.Context(), req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	respondWithAction(w, r, applied, ws)
}

// SelectQuestion handles POST /api/workspace/questions/{id}/select.
func (h *WorkspaceHandler) SelectQuestion(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	applied := ws.SelectQuestion(r.Context(), chi.URLParam(r, "id"))
	respondWithAction(w, r, applied, ws)
}

// SubmitAnswer handles POST /api/workspace/answer.
func (h *WorkspaceHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	applied, err := ws.SubmitAnswer(r.Context(), req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	respondWithAction(w, r, applied, ws)
}

// NewSession handles POST /api/workspace/new.
func (h *WorkspaceHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.NewSession(r.Context())
	respondWithAction(w, r, true, ws)
}

func respondWithAction(w http.ResponseWriter, r *http.Request, applied bool, ws *tutor.Workspace) {
	shared.RespondWithJSON(w, r, http.StatusOK, ActionResponse{
		Applied:   applied,
		Workspace: newWorkspaceView(ws.State()),
	})
}
