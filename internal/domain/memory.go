package domain

// FeedbackPreference controls how verbose evaluator feedback should be.
type FeedbackPreference string

// Feedback preferences understood by the evaluator.
const (
	FeedbackConcise  FeedbackPreference = "concise"
	FeedbackDetailed FeedbackPreference = "detailed"
)

// HistoryEntry records a score for a question.
type HistoryEntry struct {
	QuestionID string  `json:"questionId"`
	Score      float64 `json:"score"`
}

// LearnerMemory is the accumulating profile of a learner within a session.
//
// Strengths and Gaps have set semantics: they never contain duplicates and
// keep first-occurrence order. Items are only ever appended.
type LearnerMemory struct {
	Strengths          []string           `json:"strengths"`
	Gaps               []string           `json:"gaps"`
	FeedbackPreference FeedbackPreference `json:"feedback_preference"`
	History            []HistoryEntry     `json:"history"`
}

// MemoryDelta is the partial memory an evaluation reports back. Nil slices
// are treated as empty.
type MemoryDelta struct {
	Strengths []string `json:"strengths,omitempty"`
	Gaps      []string `json:"gaps,omitempty"`
}

// NewLearnerMemory returns the memory every fresh session starts with.
func NewLearnerMemory() LearnerMemory {
	return LearnerMemory{
		Strengths:          []string{},
		Gaps:               []string{},
		FeedbackPreference: FeedbackDetailed,
		History:            []HistoryEntry{},
	}
}

// MergeMemory folds an evaluation delta into the current memory.
//
// Strengths and gaps are concatenated and deduplicated by exact string
// equality, keeping the first occurrence. Every other field is carried over.
// Nothing is ever removed. The result shares no slices with m or d.
func MergeMemory(m LearnerMemory, d MemoryDelta) LearnerMemory {
	merged := m.Clone()
	merged.Strengths = dedupe(m.Strengths, d.Strengths)
	merged.Gaps = dedupe(m.Gaps, d.Gaps)
	return merged
}

// Clone returns a deep copy of the memory.
func (m LearnerMemory) Clone() LearnerMemory {
	return LearnerMemory{
		Strengths:          cloneStrings(m.Strengths),
		Gaps:               cloneStrings(m.Gaps),
		FeedbackPreference: m.FeedbackPreference,
		History:            append([]HistoryEntry{}, m.History...),
	}
}

// dedupe concatenates the given lists and drops repeated values, keeping
// first-occurrence order.
func dedupe(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, item := range list {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}
