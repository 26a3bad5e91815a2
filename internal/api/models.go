package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/tutor"
)

// SignupRequest defines the payload for the signup endpoint.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expires_at"` // RFC 3339
}

// UserResponse describes the authenticated user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitDocumentRequest carries the document to analyze.
type SubmitDocumentRequest struct {
	Text string `json:"text"`
}

// SubmitAnswerRequest carries an answer to the selected question.
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

// QuestionView is a question as learners see it. Rubrics stay server-side.
type QuestionView struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Targets      []string `json:"targets"`
	Evaluated    bool     `json:"evaluated"`
}

// WorkspaceView renders a workspace state.
type WorkspaceView struct {
	Stage             domain.Stage                       `json:"stage"`
	SessionID         string                             `json:"session_id,omitempty"`
	Busy              bool                               `json:"busy"`
	Reviewing         bool                               `json:"reviewing"`
	DocumentText      string                             `json:"document_text,omitempty"`
	Intelligence      *domain.Intelligence               `json:"intelligence"`
	Questions         []QuestionView                     `json:"questions"`
	CurrentQuestionID string                             `json:"current_question_id,omitempty"`
	LearnerMemory     domain.LearnerMemory               `json:"learner_memory"`
	Evaluations       map[string]domain.EvaluationResult `json:"evaluations"`
}

// ActionResponse is returned by every workspace mutation. Applied is false
// when the action was not valid in the current state and nothing changed.
type ActionResponse struct {
	Applied   bool          `json:"applied"`
	Workspace WorkspaceView `json:"workspace"`
}

// SessionSummary is one entry of the session history.
type SessionSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	CoreThemes     []string  `json:"core_themes"`
	QuestionCount  int       `json:"question_count"`
	EvaluatedCount int       `json:"evaluated_count"`
}

// SessionListResponse lists a user's sessions, newest first.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

func newWorkspaceView(state tutor.State) WorkspaceView {
	snap := state.Snapshot
	questions := make([]QuestionView, 0, len(snap.Questions))
	for _, q := range snap.Questions {
		_, evaluated := snap.Evaluations[q.ID]
		questions = append(questions, QuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Targets:      q.Targets,
			Evaluated:    evaluated,
		})
	}
	return WorkspaceView{
		Stage:             snap.Stage,
		SessionID:         state.SessionID,
		Busy:              state.Busy,
		Reviewing:         state.Reviewing(),
		DocumentText:      snap.DocumentText,
		Intelligence:      snap.Intelligence,
		Questions:         questions,
		CurrentQuestionID: snap.CurrentQuestionID,
		LearnerMemory:     snap.LearnerMemory,
		Evaluations:       snap.Evaluations,
	}
}

func newSessionSummary(s domain.Session) SessionSummary {
	themes := []string{}
	if s.Intelligence != nil && s.Intelligence.CoreThemes != nil {
		themes = s.Intelligence.CoreThemes
	}
	return SessionSummary{
		ID:             s.ID,
		Title:          s.Title,
		CreatedAt:      s.CreatedAt(),
		CoreThemes:     themes,
		QuestionCount:  len(s.Questions),
		EvaluatedCount: len(s.Evaluations),
	}
}
