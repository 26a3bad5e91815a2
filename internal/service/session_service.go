package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/store"
	"github.com/phrazzld/scry-tutor/internal/tutor"
)

// SessionService lists a user's saved sessions and loads one back into the
// user's live workspace.
type SessionService struct {
	sessions   store.SessionStore
	workspaces *tutor.Registry
	logger     *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions store.SessionStore, workspaces *tutor.Registry, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions:   sessions,
		workspaces: workspaces,
		logger:     logger.With("component", "session_service"),
	}
}

// ListSessions returns the user's sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// RestoreSession loads one of the user's sessions into their workspace and
// returns the workspace. Returns store.ErrSessionNotFound for sessions the
// user does not own.
func (s *SessionService) RestoreSession(ctx context.Context, userID uuid.UUID, sessionID string) (*tutor.Workspace, error) {
	session, err := s.sessions.GetByUser(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	ws := s.workspaces.Get(userID)
	if err := ws.Restore(ctx, *session); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	s.logger.InfoContext(ctx, "session restored",
		"user_id", userID,
		"session_id", sessionID)
	return ws, nil
}
