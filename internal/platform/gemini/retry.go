package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/phrazzld/scry-tutor/internal/generation"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/redact"
	"google.golang.org/genai"
)

// callWithRetry sends one request, retrying transient failures with
// exponential backoff and jitter: delay = base * 2^attempt * (0.5 + rand(0, 0.5)),
// capped at MaxDelaySeconds. It returns the response text.
func (t *GeminiTutor) callWithRetry(
	ctx context.Context,
	operation string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, t.logger).With(slog.String("operation", operation))
	maxRetries := t.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		log.DebugContext(ctx, "making Gemini API call",
			slog.Int("attempt", attemptNum),
			slog.Int("max_attempts", maxRetries+1))

		text, err := t.callOnce(ctx, contents, cfg)
		if err == nil {
			return text, nil
		}

		log.ErrorContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attemptNum),
			slog.String("error", redact.Error(err)))

		if generation.IsPermanent(err) || errors.Is(err, context.Canceled) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
		if attempt >= maxRetries {
			if maxRetries > 0 {
				log.WarnContext(ctx, "maximum retry attempts reached", slog.Int("max_retries", maxRetries))
			}
			return "", err
		}

		delay := t.backoff(attempt)
		log.InfoContext(ctx, "retrying after delay",
			slog.Int("attempt", attemptNum),
			slog.Float64("delay_seconds", delay.Seconds()))

		if err := t.sleep(ctx, delay); err != nil {
			log.WarnContext(ctx, "API call cancelled during retry delay", slog.String("ctx_err", err.Error()))
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
}

// callOnce performs a single request bounded by the request timeout and
// classifies the outcome.
func (t *GeminiTutor) callOnce(
	ctx context.Context,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (string, error) {
	if t.config.RequestTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(t.config.RequestTimeoutSeconds)*time.Second)
		defer cancel()
	}

	resp, err := t.generator.GenerateContent(ctx, t.config.ModelName, contents, cfg)
	if err != nil {
		return "", classifyError(err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	switch resp.Candidates[0].FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, resp.Candidates[0].FinishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return text, nil
}

// classifyError maps a client error onto the generation error set. Rate
// limits, server errors, timeouts and transport failures are transient.
// Other API statuses are permanent.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: API status %d: %v", generation.ErrTransientFailure, apiErr.Code, err)
		}
		return fmt.Errorf("%w: API status %d: %v", generation.ErrGenerationFailed, apiErr.Code, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}

func (t *GeminiTutor) backoff(attempt int) time.Duration {
	seconds := t.config.BaseDelaySeconds * math.Pow(2, float64(attempt))
	seconds *= 0.5 + rand.Float64()*0.5
	if t.config.MaxDelaySeconds > 0 && seconds > t.config.MaxDelaySeconds {
		seconds = t.config.MaxDelaySeconds
	}
	return time.Duration(seconds * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
