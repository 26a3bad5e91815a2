package generation

import (
	"context"

	"github.com/phrazzld/scry-tutor/internal/domain"
)

// EvaluationRequest carries everything the evaluator sees for one answer.
// The source document is deliberately absent: only the question and its
// rubric are sent.
type EvaluationRequest struct {
	Question domain.Question
	Answer   string
	Memory   domain.LearnerMemory
}

// Tutor is the port to the remote model.
type Tutor interface {
	// Analyze extracts intelligence and generates assessment questions for
	// the document. It returns at least one question on success.
	Analyze(ctx context.Context, documentText string) (*domain.Analysis, error)

	// Evaluate scores an answer against the question's rubric and the
	// learner's current memory.
	Evaluate(ctx context.Context, req EvaluationRequest) (*domain.EvaluationResult, error)
}
