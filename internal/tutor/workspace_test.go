package tutor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/generation"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/tutor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T, tu generation.Tutor) (*tutor.Workspace, *recordingEmitter) {
	t.Helper()
	l, _ := logger.GetTestLogger(t)
	emitter := &recordingEmitter{}
	ws := tutor.NewWorkspace(uuid.New(), tu, emitter, l,
		tutor.WithSessionIDGenerator(func() string { return "session-1" }))
	return ws, emitter
}

// analyzedWorkspace returns a workspace already on the dashboard.
func analyzedWorkspace(t *testing.T, tu *mockTutor) (*tutor.Workspace, *recordingEmitter) {
	t.Helper()
	tu.On("Analyze", mock.Anything, "doc").Return(sampleAnalysis(), nil).Once()
	ws, emitter := newTestWorkspace(t, tu)
	applied, err := ws.SubmitDocument(context.Background(), "doc")
	require.NoError(t, err)
	require.True(t, applied)
	return ws, emitter
}

func TestNewWorkspace_StartsInUpload(t *testing.T) {
	t.Parallel()

	ws, _ := newTestWorkspace(t, &mockTutor{})
	state := ws.State()

	assert.Equal(t, domain.StageUpload, state.Snapshot.Stage)
	assert.Empty(t, state.SessionID)
	assert.False(t, state.Busy)
	assert.False(t, state.Reviewing())
	assert.Equal(t, domain.NewLearnerMemory(), state.Snapshot.LearnerMemory)
}

func TestSubmitDocument(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, emitter := analyzedWorkspace(t, tu)
	state := ws.State()

	assert.Equal(t, domain.StageDashboard, state.Snapshot.Stage)
	assert.Equal(t, "doc", state.Snapshot.DocumentText)
	assert.Equal(t, "Q1", state.Snapshot.CurrentQuestionID)
	assert.Equal(t, "session-1", state.SessionID)
	require.NotNil(t, state.Snapshot.Intelligence)
	assert.Equal(t, []string{"Thermodynamics"}, state.Snapshot.Intelligence.CoreThemes)
	assert.Len(t, state.Snapshot.Questions, 2)

	assert.Equal(t, []events.Transition{events.TransitionDocumentAnalyzed}, emitter.Transitions())
	assert.Equal(t, "session-1", emitter.Last().SessionID)
	assert.Equal(t, ws.UserID(), emitter.Last().UserID)
	tu.AssertExpectations(t)
}

func TestSubmitDocument_FailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	tu.On("Analyze", mock.Anything, "doc").Return(nil, generation.ErrTransientFailure).Once()
	ws, emitter := newTestWorkspace(t, tu)

	applied, err := ws.SubmitDocument(context.Background(), "doc")
	assert.False(t, applied)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)

	state := ws.State()
	assert.Equal(t, domain.StageUpload, state.Snapshot.Stage)
	assert.Empty(t, state.Snapshot.DocumentText)
	assert.Nil(t, state.Snapshot.Intelligence)
	assert.Empty(t, state.SessionID)
	assert.False(t, state.Busy)
	assert.Empty(t, emitter.Transitions())
}

func TestSubmitDocument_EmptyText(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, _ := newTestWorkspace(t, tu)

	_, err := ws.SubmitDocument(context.Background(), "   ")
	assert.ErrorIs(t, err, generation.ErrEmptyDocument)
	tu.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestSubmitDocument_IgnoredOnDashboard(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, _ := analyzedWorkspace(t, tu)

	applied, err := ws.SubmitDocument(context.Background(), "another doc")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "doc", ws.State().Snapshot.DocumentText)
	tu.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestSelectQuestion(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, emitter := analyzedWorkspace(t, tu)

	assert.True(t, ws.SelectQuestion(context.Background(), "Q2"))
	assert.Equal(t, "Q2", ws.State().Snapshot.CurrentQuestionID)

	assert.False(t, ws.SelectQuestion(context.Background(), "Q9"))
	assert.Equal(t, "Q2", ws.State().Snapshot.CurrentQuestionID)

	assert.Equal(t, []events.Transition{
		events.TransitionDocumentAnalyzed,
		events.TransitionQuestionSelected,
	}, emitter.Transitions())
}

func TestSelectQuestion_IgnoredInUpload(t *testing.T) {
	t.Parallel()

	ws, emitter := newTestWorkspace(t, &mockTutor{})
	assert.False(t, ws.SelectQuestion(context.Background(), "Q1"))
	assert.Empty(t, emitter.Transitions())
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, emitter := analyzedWorkspace(t, tu)

	tu.On("Evaluate", mock.Anything, mock.MatchedBy(func(req generation.EvaluationRequest) bool {
		return req.Question.ID == "Q1" && req.Answer == "because statistics" &&
			assert.ObjectsAreEqual([]string{"statistics"}, req.Question.Rubric.KeyPoints)
	})).Return(sampleResult([]string{"clarity"}, []string{"rigor"}), nil).Once()

	applied, err := ws.SubmitAnswer(context.Background(), "because statistics")
	require.NoError(t, err)
	assert.True(t, applied)

	state := ws.State()
	assert.True(t, state.Reviewing())
	assert.Equal(t, domain.BandProficient, state.Snapshot.Evaluations["Q1"].ScoreBand)
	assert.Equal(t, []string{"clarity"}, state.Snapshot.LearnerMemory.Strengths)
	assert.Equal(t, []string{"rigor"}, state.Snapshot.LearnerMemory.Gaps)
	assert.Equal(t, events.TransitionAnswerEvaluated, emitter.Last().Transition)
	tu.AssertExpectations(t)
}

func TestSubmitAnswer_MergesMemoryAcrossQuestions(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, _ := analyzedWorkspace(t, tu)

	tu.On("Evaluate", mock.Anything, mock.MatchedBy(func(req generation.EvaluationRequest) bool {
		return req.Question.ID == "Q1"
	})).Return(sampleResult([]string{"clarity"}, []string{"rigor"}), nil).Once()
	tu.On("Evaluate", mock.Anything, mock.MatchedBy(func(req generation.EvaluationRequest) bool {
		return req.Question.ID == "Q2" &&
			assert.ObjectsAreEqual([]string{"clarity"}, req.Memory.Strengths)
	})).Return(sampleResult([]string{"clarity", "synthesis"}, []string{"rigor"}), nil).Once()

	_, err := ws.SubmitAnswer(context.Background(), "first")
	require.NoError(t, err)
	require.True(t, ws.SelectQuestion(context.Background(), "Q2"))
	_, err = ws.SubmitAnswer(context.Background(), "second")
	require.NoError(t, err)

	memory := ws.State().Snapshot.LearnerMemory
	assert.Equal(t, []string{"clarity", "synthesis"}, memory.Strengths)
	assert.Equal(t, []string{"rigor"}, memory.Gaps)
	assert.Equal(t, domain.FeedbackDetailed, memory.FeedbackPreference)
	tu.AssertExpectations(t)
}

func TestSubmitAnswer_AddsOneEvaluationAndKeepsEarlierOnes(t *testing.T) {
	t.Parallel()

	analysis := sampleAnalysis()
	analysis.Questions = nil
	for _, id := range []string{"Q1", "Q2", "Q3", "Q4", "Q5"} {
		analysis.Questions = append(analysis.Questions, domain.Question{ID: id, QuestionText: "Question " + id})
	}

	tu := &mockTutor{}
	tu.On("Analyze", mock.Anything, "doc").Return(analysis, nil).Once()
	ws, _ := newTestWorkspace(t, tu)
	_, err := ws.SubmitDocument(context.Background(), "doc")
	require.NoError(t, err)

	scores := map[string]float64{"Q1": 35, "Q2": 62, "Q3": 91}
	for id, score := range scores {
		result := sampleResult(nil, nil)
		result.ScoreNumerical = score
		result.ScoreBand = domain.BandForScore(score)
		tu.On("Evaluate", mock.Anything, mock.MatchedBy(func(req generation.EvaluationRequest) bool {
			return req.Question.ID == id
		})).Return(result, nil).Once()
	}

	for _, id := range []string{"Q1", "Q2"} {
		require.True(t, ws.SelectQuestion(context.Background(), id))
		applied, err := ws.SubmitAnswer(context.Background(), "answer to "+id)
		require.NoError(t, err)
		require.True(t, applied)
	}
	before := ws.State().Snapshot.Evaluations
	require.Len(t, before, 2)

	require.True(t, ws.SelectQuestion(context.Background(), "Q3"))
	applied, err := ws.SubmitAnswer(context.Background(), "answer to Q3")
	require.NoError(t, err)
	require.True(t, applied)

	after := ws.State().Snapshot.Evaluations
	assert.Len(t, after, 3)
	assert.Equal(t, before["Q1"], after["Q1"])
	assert.Equal(t, before["Q2"], after["Q2"])
	assert.Equal(t, 91.0, after["Q3"].ScoreNumerical)
	assert.Equal(t, domain.BandVisionary, after["Q3"].ScoreBand)
	tu.AssertExpectations(t)
}

func TestSubmitAnswer_NoOps(t *testing.T) {
	t.Parallel()

	t.Run("upload stage", func(t *testing.T) {
		t.Parallel()
		tu := &mockTutor{}
		ws, _ := newTestWorkspace(t, tu)

		applied, err := ws.SubmitAnswer(context.Background(), "answer")
		require.NoError(t, err)
		assert.False(t, applied)
		tu.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
	})

	t.Run("already evaluated", func(t *testing.T) {
		t.Parallel()
		tu := &mockTutor{}
		ws, _ := analyzedWorkspace(t, tu)
		tu.On("Evaluate", mock.Anything, mock.Anything).Return(sampleResult(nil, nil), nil).Once()

		_, err := ws.SubmitAnswer(context.Background(), "first")
		require.NoError(t, err)
		first := ws.State().Snapshot.Evaluations["Q1"]

		applied, err := ws.SubmitAnswer(context.Background(), "second")
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, first, ws.State().Snapshot.Evaluations["Q1"])
		tu.AssertNumberOfCalls(t, "Evaluate", 1)
	})
}

func TestSubmitAnswer_EmptyAnswer(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, _ := analyzedWorkspace(t, tu)

	_, err := ws.SubmitAnswer(context.Background(), "")
	assert.ErrorIs(t, err, generation.ErrEmptyAnswer)
	tu.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
}

func TestSubmitAnswer_FailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, emitter := analyzedWorkspace(t, tu)
	before := ws.State()
	tu.On("Evaluate", mock.Anything, mock.Anything).Return(nil, generation.ErrContentBlocked).Once()

	applied, err := ws.SubmitAnswer(context.Background(), "answer")
	assert.False(t, applied)
	assert.ErrorIs(t, err, generation.ErrContentBlocked)
	assert.Equal(t, before, ws.State())
	assert.Len(t, emitter.Transitions(), 1)
}

func TestSubmitAnswer_EmitFailureKeepsState(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, emitter := analyzedWorkspace(t, tu)
	emitter.err = errors.New("store down")
	tu.On("Evaluate", mock.Anything, mock.Anything).Return(sampleResult([]string{"x"}, nil), nil).Once()

	applied, err := ws.SubmitAnswer(context.Background(), "answer")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Contains(t, ws.State().Snapshot.Evaluations, "Q1")
}

func TestBusyGate(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	tu := &mockTutor{}
	tu.On("Analyze", mock.Anything, "doc").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleAnalysis(), nil).Once()
	ws, _ := newTestWorkspace(t, tu)

	done := make(chan error, 1)
	go func() {
		_, err := ws.SubmitDocument(context.Background(), "doc")
		done <- err
	}()
	<-started

	assert.True(t, ws.State().Busy)
	_, err := ws.SubmitDocument(context.Background(), "doc")
	assert.ErrorIs(t, err, tutor.ErrBusy)
	_, err = ws.SubmitAnswer(context.Background(), "answer")
	assert.ErrorIs(t, err, tutor.ErrBusy)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not complete")
	}
	assert.False(t, ws.State().Busy)
	assert.Equal(t, domain.StageDashboard, ws.State().Snapshot.Stage)
}

func TestNewSession_DiscardsInFlightResult(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	tu := &mockTutor{}
	ws, emitter := analyzedWorkspace(t, tu)
	tu.On("Evaluate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleResult([]string{"late"}, nil), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := ws.SubmitAnswer(context.Background(), "answer")
		done <- err
	}()
	<-started

	ws.NewSession(context.Background())
	close(release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, tutor.ErrSessionChanged)
	case <-time.After(5 * time.Second):
		t.Fatal("evaluation did not complete")
	}

	state := ws.State()
	assert.Equal(t, domain.StageUpload, state.Snapshot.Stage)
	assert.Empty(t, state.SessionID)
	assert.Empty(t, state.Snapshot.Evaluations)
	assert.Empty(t, state.Snapshot.LearnerMemory.Strengths)
	assert.Equal(t, events.TransitionSessionReset, emitter.Last().Transition)
}

func TestRestore(t *testing.T) {
	t.Parallel()

	ws, emitter := newTestWorkspace(t, &mockTutor{})
	intel := sampleAnalysis().Intelligence
	session := domain.Session{
		ID:                "stored-1",
		UserID:            ws.UserID(),
		Title:             "Analysis: Thermodynamics",
		DocumentText:      "doc",
		Intelligence:      &intel,
		Questions:         sampleAnalysis().Questions,
		CurrentQuestionID: "Q2",
		LearnerMemory:     domain.NewLearnerMemory(),
		Evaluations:       map[string]domain.EvaluationResult{"Q2": *sampleResult(nil, nil)},
	}

	require.NoError(t, ws.Restore(context.Background(), session))

	state := ws.State()
	assert.Equal(t, domain.StageDashboard, state.Snapshot.Stage)
	assert.Equal(t, "stored-1", state.SessionID)
	assert.Equal(t, "Q2", state.Snapshot.CurrentQuestionID)
	assert.True(t, state.Reviewing())
	assert.Equal(t, events.TransitionSessionRestored, emitter.Last().Transition)

	session.UserID = uuid.New()
	assert.ErrorIs(t, ws.Restore(context.Background(), session), tutor.ErrSessionOwner)
}

func TestState_IsDeepCopy(t *testing.T) {
	t.Parallel()

	tu := &mockTutor{}
	ws, _ := analyzedWorkspace(t, tu)

	state := ws.State()
	state.Snapshot.Questions[0].QuestionText = "mutated"
	state.Snapshot.Intelligence.CoreThemes[0] = "mutated"

	fresh := ws.State()
	assert.Equal(t, "Why does entropy increase?", fresh.Snapshot.Questions[0].QuestionText)
	assert.Equal(t, "Thermodynamics", fresh.Snapshot.Intelligence.CoreThemes[0])
}
