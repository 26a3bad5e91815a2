package gemini

import "github.com/phrazzld/scry-tutor/internal/domain"

// documentPromptData is the data passed to the document prompt template.
type documentPromptData struct {
	DocumentText string
}

// analysisResponse is the raw JSON shape of an analysis response. Every
// field may be absent.
type analysisResponse struct {
	Intelligence *intelligenceResponse `json:"intelligence"`
	Questions    []questionResponse    `json:"questions"`
}

type intelligenceResponse struct {
	CoreThemes          []string         `json:"core_themes"`
	ImplicitAssumptions []string         `json:"implicit_assumptions"`
	CrossSectionLinks   []string         `json:"cross_section_links"`
	DifficultyItems     []DifficultyItem `json:"difficulty_items"`
}

// DifficultyItem is one topic score as the model reports it. Score is a
// float because the schema declares a number.
type DifficultyItem struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

type questionResponse struct {
	ID           string          `json:"id"`
	QuestionText string          `json:"question_text"`
	Targets      []string        `json:"targets"`
	Rubric       *rubricResponse `json:"rubric"`
}

type rubricResponse struct {
	KeyPoints            []string `json:"key_points"`
	DepthMarkers         []string `json:"depth_markers"`
	CommonMisconceptions []string `json:"common_misconceptions"`
}

// evaluationPayload is the request turn sent for an evaluation. The source
// document is not part of it.
type evaluationPayload struct {
	Question      string               `json:"question"`
	Rubric        domain.Rubric        `json:"rubric"`
	LearnerMemory domain.LearnerMemory `json:"learner_memory"`
	StudentAnswer string               `json:"student_answer"`
}

type evaluationResponse struct {
	ScoreBand              string               `json:"score_band"`
	ScoreNumerical         float64              `json:"score_numerical"`
	StrengthAnalysis       string               `json:"strength_analysis"`
	WeaknessAnalysis       string               `json:"weakness_analysis"`
	PersonalizedSuggestion string               `json:"personalized_suggestion"`
	UpdatedMemory          *memoryDeltaResponse `json:"updated_memory"`
}

type memoryDeltaResponse struct {
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}
