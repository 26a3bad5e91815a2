package domain

import "fmt"

// ScoreBand is the qualitative level an evaluation assigns to an answer.
type ScoreBand string

// Score bands from lowest to highest.
const (
	BandNovice     ScoreBand = "Novice"
	BandCompetent  ScoreBand = "Competent"
	BandProficient ScoreBand = "Proficient"
	BandMaster     ScoreBand = "Master"
	BandVisionary  ScoreBand = "Visionary"
)

// ScoreBands lists every valid band in ascending order.
var ScoreBands = []ScoreBand{BandNovice, BandCompetent, BandProficient, BandMaster, BandVisionary}

// Valid reports whether b is one of the known bands.
func (b ScoreBand) Valid() bool {
	for _, known := range ScoreBands {
		if b == known {
			return true
		}
	}
	return false
}

// BandForScore maps a 0..100 score onto a band.
func BandForScore(score float64) ScoreBand {
	switch {
	case score < 40:
		return BandNovice
	case score < 60:
		return BandCompetent
	case score < 75:
		return BandProficient
	case score < 90:
		return BandMaster
	default:
		return BandVisionary
	}
}

// ClampScore limits a score to the 0..100 range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// EvaluationResult is the scored assessment of one answer. Once recorded for
// a question it is never overwritten.
type EvaluationResult struct {
	ScoreBand              ScoreBand   `json:"score_band"`
	ScoreNumerical         float64     `json:"score_numerical"`
	StrengthAnalysis       string      `json:"strength_analysis"`
	WeaknessAnalysis       string      `json:"weakness_analysis"`
	PersonalizedSuggestion string      `json:"personalized_suggestion"`
	UpdatedMemory          MemoryDelta `json:"updated_memory"`
}

// Validate checks the band and score range.
func (e *EvaluationResult) Validate() error {
	if !e.ScoreBand.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidScoreBand, e.ScoreBand)
	}
	if e.ScoreNumerical < 0 || e.ScoreNumerical > 100 {
		return NewValidationError("score_numerical", "must be between 0 and 100", ErrValidation)
	}
	return nil
}

// Clone returns a deep copy of the result.
func (e EvaluationResult) Clone() EvaluationResult {
	out := e
	out.UpdatedMemory = MemoryDelta{
		Strengths: cloneStrings(e.UpdatedMemory.Strengths),
		Gaps:      cloneStrings(e.UpdatedMemory.Gaps),
	}
	return out
}
