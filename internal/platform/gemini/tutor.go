package gemini

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/scry-tutor/internal/config"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/generation"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"google.golang.org/genai"
)

//go:embed prompts/*
var promptFS embed.FS

// ContentGenerator is the slice of the genai client the tutor uses.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

var _ ContentGenerator = (*genai.Models)(nil)

// GeminiTutor implements generation.Tutor with the Gemini API.
type GeminiTutor struct {
	logger           *slog.Logger
	config           config.LLMConfig
	generator        ContentGenerator
	analysisPrompt   string
	evaluationPrompt string
	documentTemplate *template.Template
	sleep            func(ctx context.Context, d time.Duration) error
}

var _ generation.Tutor = (*GeminiTutor)(nil)

// NewGeminiTutor creates a tutor backed by a real Gemini client.
func NewGeminiTutor(ctx context.Context, l *slog.Logger, cfg config.LLMConfig) (*GeminiTutor, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return NewTutorWithGenerator(l, cfg, client.Models)
}

// NewTutorWithGenerator creates a tutor over any ContentGenerator.
func NewTutorWithGenerator(l *slog.Logger, cfg config.LLMConfig, gen ContentGenerator) (*GeminiTutor, error) {
	if l == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if gen == nil {
		return nil, fmt.Errorf("%w: content generator cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	analysis, err := promptFS.ReadFile("prompts/analysis.txt")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read analysis prompt: %v", generation.ErrInvalidConfig, err)
	}
	evaluation, err := promptFS.ReadFile("prompts/evaluation.txt")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read evaluation prompt: %v", generation.ErrInvalidConfig, err)
	}
	documentTemplate, err := template.ParseFS(promptFS, "prompts/document.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse document template: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiTutor{
		logger:           l.With(slog.String("component", "gemini_tutor")),
		config:           cfg,
		generator:        gen,
		analysisPrompt:   string(analysis),
		evaluationPrompt: string(evaluation),
		documentTemplate: documentTemplate,
		sleep:            sleepContext,
	}, nil
}

// Analyze implements generation.Tutor.
func (t *GeminiTutor) Analyze(ctx context.Context, documentText string) (*domain.Analysis, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, generation.ErrEmptyDocument
	}
	log := logger.FromContextOrDefault(ctx, t.logger)

	var buf bytes.Buffer
	if err := t.documentTemplate.Execute(&buf, documentPromptData{DocumentText: documentText}); err != nil {
		return nil, fmt.Errorf("failed to execute document template: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(t.analysisPrompt, genai.RoleUser),
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}
	cfg := t.requestConfig(analysisSchema(), t.config.AnalysisThinkingBudget)

	log.InfoContext(ctx, "analyzing document", slog.Int("document_length", len(documentText)))
	text, err := t.callWithRetry(ctx, "analysis", contents, cfg)
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		log.WarnContext(ctx, "analysis response rejected", slog.String("error", err.Error()))
		return nil, err
	}

	log.InfoContext(ctx, "document analyzed",
		slog.Int("question_count", len(analysis.Questions)),
		slog.Int("theme_count", len(analysis.Intelligence.CoreThemes)))
	return analysis, nil
}

// Evaluate implements generation.Tutor.
func (t *GeminiTutor) Evaluate(ctx context.Context, req generation.EvaluationRequest) (*domain.EvaluationResult, error) {
	if strings.TrimSpace(req.Answer) == "" {
		return nil, generation.ErrEmptyAnswer
	}
	log := logger.FromContextOrDefault(ctx, t.logger)

	payload, err := json.Marshal(evaluationPayload{
		Question:      req.Question.QuestionText,
		Rubric:        req.Question.Rubric,
		LearnerMemory: req.Memory,
		StudentAnswer: req.Answer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation payload: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(t.evaluationPrompt, genai.RoleUser),
		genai.NewContentFromText(string(payload), genai.RoleUser),
	}
	cfg := t.requestConfig(evaluationSchema(), t.config.EvaluationThinkingBudget)

	log.InfoContext(ctx, "evaluating answer",
		slog.String("question_id", req.Question.ID),
		slog.Int("answer_length", len(req.Answer)))
	text, err := t.callWithRetry(ctx, "evaluation", contents, cfg)
	if err != nil {
		return nil, err
	}

	result, err := parseEvaluation(text)
	if err != nil {
		log.WarnContext(ctx, "evaluation response rejected", slog.String("error", err.Error()))
		return nil, err
	}

	log.InfoContext(ctx, "answer evaluated",
		slog.String("question_id", req.Question.ID),
		slog.String("score_band", string(result.ScoreBand)))
	return result, nil
}

func (t *GeminiTutor) requestConfig(schema *genai.Schema, thinkingBudget int) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if thinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(thinkingBudget))}
	}
	return cfg
}
