package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// Autosaver persists every committed dashboard state to the session store.
type Autosaver struct {
	sessions store.SessionStore
	logger   *slog.Logger
	now      func() time.Time
}

var _ events.EventHandler = (*Autosaver)(nil)

// AutosaverOption configures an Autosaver.
type AutosaverOption func(*Autosaver)

// WithAutosaveClock overrides the clock used for fallback titles.
func WithAutosaveClock(now func() time.Time) AutosaverOption {
	return func(a *Autosaver) {
		a.now = now
	}
}

// NewAutosaver creates an autosaver writing to sessions.
func NewAutosaver(sessions store.SessionStore, l *slog.Logger, opts ...AutosaverOption) *Autosaver {
	if l == nil {
		l = slog.Default()
	}
	a := &Autosaver{
		sessions: sessions,
		logger:   l.With(slog.String("component", "autosaver")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleEvent implements events.EventHandler. Events in the upload stage or
// without a session id or owner are ignored.
func (a *Autosaver) HandleEvent(ctx context.Context, event *events.StateChangedEvent) error {
	if event.Snapshot.Stage == domain.StageUpload || event.SessionID == "" || event.UserID == uuid.Nil {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, a.logger)

	title := SessionTitle(event.Snapshot, a.now())
	if err := a.sessions.Save(ctx, event.UserID, event.SessionID, event.Snapshot, title); err != nil {
		log.ErrorContext(ctx, "autosave failed",
			slog.String("session_id", event.SessionID),
			slog.String("transition", string(event.Transition)),
			slog.String("error", err.Error()))
		return fmt.Errorf("autosave session %s: %w", event.SessionID, err)
	}

	log.DebugContext(ctx, "session autosaved",
		slog.String("session_id", event.SessionID),
		slog.String("transition", string(event.Transition)))
	return nil
}

// SessionTitle derives a title from the first core theme, falling back to
// the local time of day.
func SessionTitle(snap domain.Snapshot, now time.Time) string {
	if snap.Intelligence != nil && len(snap.Intelligence.CoreThemes) > 0 && snap.Intelligence.CoreThemes[0] != "" {
		return "Analysis: " + snap.Intelligence.CoreThemes[0]
	}
	return "Document " + now.Format("15:04:05")
}
