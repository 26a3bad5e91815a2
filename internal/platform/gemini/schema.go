package gemini

import (
	"github.com/phrazzld/scry-tutor/internal/domain"
	"google.golang.org/genai"
)

func stringArray() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

// analysisSchema asks for difficulty as an array of items; object schemas
// with arbitrary keys are not expressible.
func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"intelligence": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"core_themes":          stringArray(),
					"implicit_assumptions": stringArray(),
					"cross_section_links":  stringArray(),
					"difficulty_items": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"topic": {Type: genai.TypeString},
								"score": {Type: genai.TypeNumber},
							},
						},
					},
				},
			},
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":            {Type: genai.TypeString},
						"question_text": {Type: genai.TypeString},
						"targets":       stringArray(),
						"rubric": {
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"key_points":            stringArray(),
								"depth_markers":         stringArray(),
								"common_misconceptions": stringArray(),
							},
						},
					},
				},
			},
		},
	}
}

func evaluationSchema() *genai.Schema {
	bands := make([]string, 0, len(domain.ScoreBands))
	for _, b := range domain.ScoreBands {
		bands = append(bands, string(b))
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score_band":              {Type: genai.TypeString, Enum: bands},
			"score_numerical":         {Type: genai.TypeNumber},
			"strength_analysis":       {Type: genai.TypeString},
			"weakness_analysis":       {Type: genai.TypeString},
			"personalized_suggestion": {Type: genai.TypeString},
			"updated_memory": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"strengths": stringArray(),
					"gaps":      stringArray(),
				},
			},
		},
	}
}
