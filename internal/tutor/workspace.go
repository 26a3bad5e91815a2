package tutor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/generation"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
)

var (
	// ErrBusy is returned when a submission arrives while a remote call for
	// the same workspace is outstanding.
	ErrBusy = errors.New("workspace is busy with another request")

	// ErrSessionChanged is returned when the session was reset or restored
	// while a remote call was in flight. The late result is discarded.
	ErrSessionChanged = errors.New("session changed while the request was in flight")

	// ErrSessionOwner is returned when restoring a session owned by another user.
	ErrSessionOwner = errors.New("session belongs to another user")
)

// State is a consistent read of a workspace.
type State struct {
	Snapshot  domain.Snapshot
	SessionID string
	Busy      bool
}

// Reviewing reports whether the selected question already has an evaluation.
func (s State) Reviewing() bool {
	if s.Snapshot.CurrentQuestionID == "" {
		return false
	}
	_, ok := s.Snapshot.Evaluations[s.Snapshot.CurrentQuestionID]
	return ok
}

// Workspace is the live state machine for one user.
type Workspace struct {
	userID  uuid.UUID
	tutor   generation.Tutor
	emitter events.EventEmitter
	logger  *slog.Logger
	newID   func() string

	mu        sync.Mutex
	state     domain.Snapshot
	sessionID string
	busy      bool
	epoch     uint64
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*Workspace)

// WithSessionIDGenerator overrides how fresh session ids are minted.
func WithSessionIDGenerator(newID func() string) WorkspaceOption {
	return func(w *Workspace) {
		w.newID = newID
	}
}

// NewWorkspace creates a workspace in the upload stage. emitter may be nil.
func NewWorkspace(
	userID uuid.UUID,
	tutor generation.Tutor,
	emitter events.EventEmitter,
	l *slog.Logger,
	opts ...WorkspaceOption,
) *Workspace {
	if l == nil {
		l = slog.Default()
	}
	w := &Workspace{
		userID:  userID,
		tutor:   tutor,
		emitter: emitter,
		logger:  l.With(slog.String("component", "workspace"), slog.String("user_id", userID.String())),
		newID:   uuid.NewString,
		state:   initialSnapshot(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func initialSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Stage:         domain.StageUpload,
		Questions:     []domain.Question{},
		LearnerMemory: domain.NewLearnerMemory(),
		Evaluations:   map[string]domain.EvaluationResult{},
	}
}

// UserID returns the owner of the workspace.
func (w *Workspace) UserID() uuid.UUID {
	return w.userID
}

// State returns a deep copy of the current state.
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Snapshot:  w.state.Clone(),
		SessionID: w.sessionID,
		Busy:      w.busy,
	}
}

// SubmitDocument analyzes text and moves the workspace to the dashboard with
// the first question selected and a fresh session id. It is a no-op outside
// the upload stage. On failure the state is left untouched.
func (w *Workspace) SubmitDocument(ctx context.Context, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, generation.ErrEmptyDocument
	}
	log := logger.FromContextOrDefault(ctx, w.logger)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return false, ErrBusy
	}
	if w.state.Stage != domain.StageUpload {
		w.mu.Unlock()
		return false, nil
	}
	w.busy = true
	epoch := w.epoch
	w.mu.Unlock()

	analysis, err := w.tutor.Analyze(ctx, text)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		log.WarnContext(ctx, "document analysis failed", slog.String("error", err.Error()))
		return false, err
	}
	if w.epoch != epoch {
		log.InfoContext(ctx, "discarding analysis for a replaced session")
		return false, ErrSessionChanged
	}
	if len(analysis.Questions) == 0 {
		return false, generation.ErrInvalidResponse
	}

	intel := analysis.Intelligence.Clone()
	w.state = domain.Snapshot{
		Stage:             domain.StageDashboard,
		DocumentText:      text,
		Intelligence:      &intel,
		Questions:         analysis.Questions,
		CurrentQuestionID: analysis.Questions[0].ID,
		LearnerMemory:     w.state.LearnerMemory,
		Evaluations:       map[string]domain.EvaluationResult{},
	}
	w.sessionID = w.newID()
	w.epoch++

	log.InfoContext(ctx, "document analyzed",
		slog.String("session_id", w.sessionID),
		slog.Int("question_count", len(analysis.Questions)))
	w.emitLocked(ctx, events.TransitionDocumentAnalyzed)
	return true, nil
}

// SelectQuestion makes id the current question. Unknown ids are ignored.
func (w *Workspace) SelectQuestion(ctx context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Stage != domain.StageDashboard {
		return false
	}
	if _, ok := w.state.FindQuestion(id); !ok {
		return false
	}
	w.state.CurrentQuestionID = id
	w.emitLocked(ctx, events.TransitionQuestionSelected)
	return true
}

// SubmitAnswer evaluates answer against the current question and records the
// result. It is a no-op when no known question is selected or the question
// has already been evaluated. On failure the state is left untouched.
func (w *Workspace) SubmitAnswer(ctx context.Context, answer string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, w.logger)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return false, ErrBusy
	}
	question, ok := w.state.FindQuestion(w.state.CurrentQuestionID)
	if !ok || w.state.Stage != domain.StageDashboard {
		w.mu.Unlock()
		return false, nil
	}
	if _, done := w.state.Evaluations[question.ID]; done {
		w.mu.Unlock()
		return false, nil
	}
	if strings.TrimSpace(answer) == "" {
		w.mu.Unlock()
		return false, generation.ErrEmptyAnswer
	}
	req := generation.EvaluationRequest{
		Question: question,
		Answer:   answer,
		Memory:   w.state.LearnerMemory.Clone(),
	}
	w.busy = true
	epoch := w.epoch
	w.mu.Unlock()

	result, err := w.tutor.Evaluate(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		log.WarnContext(ctx, "answer evaluation failed",
			slog.String("question_id", question.ID),
			slog.String("error", err.Error()))
		return false, err
	}
	if w.epoch != epoch {
		log.InfoContext(ctx, "discarding evaluation for a replaced session",
			slog.String("question_id", question.ID))
		return false, ErrSessionChanged
	}

	w.state.LearnerMemory = domain.MergeMemory(w.state.LearnerMemory, result.UpdatedMemory)
	w.state.Evaluations[question.ID] = result.Clone()

	log.InfoContext(ctx, "answer evaluated",
		slog.String("session_id", w.sessionID),
		slog.String("question_id", question.ID),
		slog.String("score_band", string(result.ScoreBand)))
	w.emitLocked(ctx, events.TransitionAnswerEvaluated)
	return true, nil
}

// NewSession returns the workspace to the upload stage with fresh memory and
// detaches the current session id. Results of calls still in flight are
// discarded.
func (w *Workspace) NewSession(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = initialSnapshot()
	w.sessionID = ""
	w.epoch++
	w.emitLocked(ctx, events.TransitionSessionReset)
}

// Restore loads a stored session wholesale and enters the dashboard.
func (w *Workspace) Restore(ctx context.Context, session domain.Session) error {
	if session.UserID != w.userID {
		return ErrSessionOwner
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = domain.SnapshotFromSession(session)
	w.sessionID = session.ID
	w.epoch++

	logger.FromContextOrDefault(ctx, w.logger).InfoContext(ctx, "session restored",
		slog.String("session_id", session.ID))
	w.emitLocked(ctx, events.TransitionSessionRestored)
	return nil
}

// emitLocked publishes the committed state. It runs under w.mu so handlers
// observe transitions in commit order. Handler failures are logged only; the
// in-memory state is never rolled back.
func (w *Workspace) emitLocked(ctx context.Context, transition events.Transition) {
	if w.emitter == nil {
		return
	}
	event := events.NewStateChangedEvent(transition, w.userID, w.sessionID, w.state.Clone())
	if err := w.emitter.EmitEvent(context.WithoutCancel(ctx), event); err != nil {
		logger.FromContextOrDefault(ctx, w.logger).WarnContext(ctx, "state change handler failed",
			slog.String("transition", string(transition)),
			slog.String("error", err.Error()))
	}
}
