package tutor_test

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/generation"
	"github.com/stretchr/testify/mock"
)

type mockTutor struct {
	mock.Mock
}

func (m *mockTutor) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	args := m.Called(ctx, text)
	analysis, _ := args.Get(0).(*domain.Analysis)
	return analysis, args.Error(1)
}

func (m *mockTutor) Evaluate(ctx context.Context, req generation.EvaluationRequest) (*domain.EvaluationResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*domain.EvaluationResult)
	return result, args.Error(1)
}

// recordingEmitter collects emitted events in order.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.StateChangedEvent
	err    error
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.StateChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEmitter) Transitions() []events.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Transition, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Transition)
	}
	return out
}

func (r *recordingEmitter) Last() *events.StateChangedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Intelligence: domain.Intelligence{
			CoreThemes:          []string{"Thermodynamics"},
			ImplicitAssumptions: []string{},
			CrossSectionLinks:   []string{},
			DifficultyMap:       map[string]int{"Entropy": 7},
		},
		Questions: []domain.Question{
			{ID: "Q1", QuestionText: "Why does entropy increase?", Rubric: domain.Rubric{KeyPoints: []string{"statistics"}}},
			{ID: "Q2", QuestionText: "What is assumed?"},
		},
	}
}

func sampleResult(strengths, gaps []string) *domain.EvaluationResult {
	return &domain.EvaluationResult{
		ScoreBand:              domain.BandProficient,
		ScoreNumerical:         70,
		StrengthAnalysis:       "clear",
		WeaknessAnalysis:       "shallow",
		PersonalizedSuggestion: "go deeper",
		UpdatedMemory:          domain.MemoryDelta{Strengths: strengths, Gaps: gaps},
	}
}
