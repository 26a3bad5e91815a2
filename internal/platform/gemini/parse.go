package gemini

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/generation"
)

// DifficultyMap folds difficulty items into a topic map. Items with an empty
// topic or a zero score are skipped. A repeated topic keeps the last score.
func DifficultyMap(items []DifficultyItem) map[string]int {
	out := make(map[string]int, len(items))
	for _, item := range items {
		if item.Topic == "" || item.Score == 0 {
			continue
		}
		out[item.Topic] = int(math.Round(item.Score))
	}
	return out
}

// parseAnalysis converts a raw analysis response into domain types.
func parseAnalysis(text string) (*domain.Analysis, error) {
	var raw analysisResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse analysis JSON: %v", generation.ErrInvalidResponse, err)
	}

	intel := domain.Intelligence{
		CoreThemes:          []string{},
		ImplicitAssumptions: []string{},
		CrossSectionLinks:   []string{},
		DifficultyMap:       map[string]int{},
	}
	if raw.Intelligence != nil {
		intel.CoreThemes = orEmpty(raw.Intelligence.CoreThemes)
		intel.ImplicitAssumptions = orEmpty(raw.Intelligence.ImplicitAssumptions)
		intel.CrossSectionLinks = orEmpty(raw.Intelligence.CrossSectionLinks)
		intel.DifficultyMap = DifficultyMap(raw.Intelligence.DifficultyItems)
	}

	questions := make([]domain.Question, 0, len(raw.Questions))
	used := make(map[string]struct{}, len(raw.Questions))
	for _, rq := range raw.Questions {
		if strings.TrimSpace(rq.QuestionText) == "" {
			continue
		}
		q := domain.Question{
			ID:           uniqueQuestionID(strings.TrimSpace(rq.ID), len(questions)+1, used),
			QuestionText: rq.QuestionText,
			Targets:      orEmpty(rq.Targets),
			Rubric: domain.Rubric{
				KeyPoints:            []string{},
				DepthMarkers:         []string{},
				CommonMisconceptions: []string{},
			},
		}
		if rq.Rubric != nil {
			q.Rubric.KeyPoints = orEmpty(rq.Rubric.KeyPoints)
			q.Rubric.DepthMarkers = orEmpty(rq.Rubric.DepthMarkers)
			q.Rubric.CommonMisconceptions = orEmpty(rq.Rubric.CommonMisconceptions)
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in analysis", generation.ErrInvalidResponse)
	}

	return &domain.Analysis{Intelligence: intel, Questions: questions}, nil
}

// uniqueQuestionID returns id, or Q<position> when id is empty, suffixed
// until it does not collide with an id already handed out.
func uniqueQuestionID(id string, position int, used map[string]struct{}) string {
	if id == "" {
		id = fmt.Sprintf("Q%d", position)
	}
	candidate := id
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	used[candidate] = struct{}{}
	return candidate
}

// parseEvaluation converts a raw evaluation response into a result with a
// score in range and a known band.
func parseEvaluation(text string) (*domain.EvaluationResult, error) {
	var raw evaluationResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse evaluation JSON: %v", generation.ErrInvalidResponse, err)
	}

	score := domain.ClampScore(raw.ScoreNumerical)
	band := domain.ScoreBand(raw.ScoreBand)
	if !band.Valid() {
		band = domain.BandForScore(score)
	}

	result := &domain.EvaluationResult{
		ScoreBand:              band,
		ScoreNumerical:         score,
		StrengthAnalysis:       raw.StrengthAnalysis,
		WeaknessAnalysis:       raw.WeaknessAnalysis,
		PersonalizedSuggestion: raw.PersonalizedSuggestion,
		UpdatedMemory:          domain.MemoryDelta{Strengths: []string{}, Gaps: []string{}},
	}
	if raw.UpdatedMemory != nil {
		result.UpdatedMemory.Strengths = orEmpty(raw.UpdatedMemory.Strengths)
		result.UpdatedMemory.Gaps = orEmpty(raw.UpdatedMemory.Gaps)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	return result, nil
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
