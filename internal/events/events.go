package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
)

// Transition names a committed workspace change.
type Transition string

// Workspace transitions.
const (
	TransitionDocumentAnalyzed Transition = "document_analyzed"
	TransitionQuestionSelected Transition = "question_selected"
	TransitionAnswerEvaluated  Transition = "answer_evaluated"
	TransitionSessionReset     Transition = "session_reset"
	TransitionSessionRestored  Transition = "session_restored"
)

// StateChangedEvent is emitted after a workspace transition commits.
type StateChangedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Transition is the change that produced the new state
	Transition Transition `json:"transition"`

	// UserID owns the workspace
	UserID uuid.UUID `json:"user_id"`

	// SessionID is the active session, empty when none is attached
	SessionID string `json:"session_id"`

	// Snapshot is a deep copy of the state after the transition
	Snapshot domain.Snapshot `json:"-"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewStateChangedEvent creates a StateChangedEvent for the given transition.
func NewStateChangedEvent(
	transition Transition,
	userID uuid.UUID,
	sessionID string,
	snapshot domain.Snapshot,
) *StateChangedEvent {
	return &StateChangedEvent{
		ID:         uuid.New(),
		Transition: transition,
		UserID:     userID,
		SessionID:  sessionID,
		Snapshot:   snapshot,
		CreatedAt:  time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *StateChangedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *StateChangedEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *StateChangedEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *StateChangedEvent) error {
	return f(ctx, event)
}
