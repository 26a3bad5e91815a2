package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors
var (
	ErrEmptySessionID      = errors.New("session ID cannot be empty")
	ErrEmptySessionUserID  = errors.New("session user ID cannot be empty")
	ErrEmptyDocumentText   = errors.New("document text cannot be empty")
	ErrMissingIntelligence = errors.New("session intelligence cannot be nil")
)

// Stage is the coarse position of a workspace in the assessment flow.
type Stage string

// Workspace stages. Whether the selected question is being reviewed is
// derived from Evaluations, not stored.
const (
	StageUpload    Stage = "upload"
	StageDashboard Stage = "dashboard"
)

// Intelligence is the structured analysis extracted from a source document.
type Intelligence struct {
	CoreThemes          []string       `json:"core_themes"`
	ImplicitAssumptions []string       `json:"implicit_assumptions"`
	CrossSectionLinks   []string       `json:"cross_section_links"`
	DifficultyMap       map[string]int `json:"difficulty_map"` // topic -> 1..10
}

// Rubric is the hidden per-question scoring guide.
type Rubric struct {
	KeyPoints            []string `json:"key_points"`
	DepthMarkers         []string `json:"depth_markers"`
	CommonMisconceptions []string `json:"common_misconceptions"`
}

// Question is an assessment question generated by analysis. Questions are
// immutable once generated.
type Question struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Targets      []string `json:"targets"`
	Rubric       Rubric   `json:"rubric"`
}

// Analysis is everything the remote analysis call produces for a document.
type Analysis struct {
	Intelligence Intelligence
	Questions    []Question
}

// Session is one persisted unit of document, questions, evaluations, and
// learner memory owned by a single user.
type Session struct {
	ID                string                      `json:"id"`
	UserID            uuid.UUID                   `json:"userId"`
	Timestamp         int64                       `json:"timestamp"` // unix milliseconds of first save
	Title             string                      `json:"title"`
	DocumentText      string                      `json:"documentText"`
	Intelligence      *Intelligence               `json:"intelligence"`
	Questions         []Question                  `json:"questions"`
	CurrentQuestionID string                      `json:"currentQuestionId"`
	LearnerMemory     LearnerMemory               `json:"learnerMemory"`
	Evaluations       map[string]EvaluationResult `json:"evaluations"`
}

// Validate checks the fields a stored session must always carry.
func (s *Session) Validate() error {
	if s.ID == "" {
		return ErrEmptySessionID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}
	if s.DocumentText == "" {
		return ErrEmptyDocumentText
	}
	if s.Intelligence == nil {
		return ErrMissingIntelligence
	}
	return nil
}

// CreatedAt returns the session timestamp as a time.
func (s *Session) CreatedAt() time.Time {
	return time.UnixMilli(s.Timestamp).UTC()
}

// Snapshot is a point-in-time copy of a workspace's live state. It is what
// gets persisted as a Session and rendered by the API.
type Snapshot struct {
	Stage             Stage
	DocumentText      string
	Intelligence      *Intelligence
	Questions         []Question
	CurrentQuestionID string
	LearnerMemory     LearnerMemory
	Evaluations       map[string]EvaluationResult
}

// Persistable reports whether the snapshot is complete enough to be saved:
// it must carry document text and intelligence.
func (s Snapshot) Persistable() bool {
	return s.DocumentText != "" && s.Intelligence != nil
}

// FindQuestion returns the question with the given id.
func (s Snapshot) FindQuestion(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Stage:             s.Stage,
		DocumentText:      s.DocumentText,
		Questions:         cloneQuestions(s.Questions),
		CurrentQuestionID: s.CurrentQuestionID,
		LearnerMemory:     s.LearnerMemory.Clone(),
		Evaluations:       make(map[string]EvaluationResult, len(s.Evaluations)),
	}
	if s.Intelligence != nil {
		intel := s.Intelligence.Clone()
		out.Intelligence = &intel
	}
	for id, result := range s.Evaluations {
		out.Evaluations[id] = result.Clone()
	}
	return out
}

// SnapshotFromSession turns a stored session back into live state.
func SnapshotFromSession(s Session) Snapshot {
	snap := Snapshot{
		Stage:             StageDashboard,
		DocumentText:      s.DocumentText,
		Intelligence:      s.Intelligence,
		Questions:         s.Questions,
		CurrentQuestionID: s.CurrentQuestionID,
		LearnerMemory:     s.LearnerMemory,
		Evaluations:       s.Evaluations,
	}
	return snap.Clone()
}

// Clone returns a deep copy of the intelligence.
func (i Intelligence) Clone() Intelligence {
	out := Intelligence{
		CoreThemes:          cloneStrings(i.CoreThemes),
		ImplicitAssumptions: cloneStrings(i.ImplicitAssumptions),
		CrossSectionLinks:   cloneStrings(i.CrossSectionLinks),
		DifficultyMap:       make(map[string]int, len(i.DifficultyMap)),
	}
	for topic, score := range i.DifficultyMap {
		out.DifficultyMap[topic] = score
	}
	return out
}

func cloneQuestions(in []Question) []Question {
	out := make([]Question, 0, len(in))
	for _, q := range in {
		out = append(out, Question{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Targets:      cloneStrings(q.Targets),
			Rubric: Rubric{
				KeyPoints:            cloneStrings(q.Rubric.KeyPoints),
				DepthMarkers:         cloneStrings(q.Rubric.DepthMarkers),
				CommonMisconceptions: cloneStrings(q.Rubric.CommonMisconceptions),
			},
		})
	}
	return out
}
