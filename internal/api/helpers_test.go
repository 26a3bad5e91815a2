package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-tutor/internal/api"
	"github.com/phrazzld/scry-tutor/internal/api/middleware"
	"github.com/phrazzld/scry-tutor/internal/config"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/generation"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/platform/memstore"
	"github.com/phrazzld/scry-tutor/internal/service"
	"github.com/phrazzld/scry-tutor/internal/service/auth"
	"github.com/phrazzld/scry-tutor/internal/store"
	"github.com/phrazzld/scry-tutor/internal/tutor"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

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

type testEnv struct {
	router   http.Handler
	tutor    *mockTutor
	sessions *store.KVSessionStore
	jwt      auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	l, _ := logger.GetTestLogger(t)

	kv := memstore.New()
	users := store.NewKVUserStore(kv, "users", bcrypt.MinCost, l)
	sessions := store.NewKVSessionStore(kv, "sessions", l)

	emitter := events.NewInMemoryEventEmitter(l)
	emitter.RegisterHandler(tutor.NewAutosaver(sessions, l))

	mt := &mockTutor{}
	registry := tutor.NewRegistry(mt, emitter, time.Hour, l)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
		BcryptCost:           bcrypt.MinCost,
	})
	require.NoError(t, err)

	authHandler := api.NewAuthHandler(service.NewUserService(users, auth.NewBcryptVerifier(), l), jwtService, registry, l)
	workspaceHandler := api.NewWorkspaceHandler(registry, l)
	sessionHandler := api.NewSessionHandler(service.NewSessionService(sessions, registry, l), l)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(l))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Get("/workspace", workspaceHandler.Get)
			r.Post("/workspace/document", workspaceHandler.SubmitDocument)
			r.Post("/workspace/questions/{id}/select", workspaceHandler.SelectQuestion)
			r.Post("/workspace/answer", workspaceHandler.SubmitAnswer)
			r.Post("/workspace/new", workspaceHandler.NewSession)
			r.Get("/sessions", sessionHandler.List)
			r.Post("/sessions/{id}/restore", sessionHandler.Restore)
		})
	})

	return &testEnv{router: r, tutor: mt, sessions: sessions, jwt: jwtService}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// signup registers a user and returns its token.
func (e *testEnv) signup(t *testing.T, username string) api.AuthResponse {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/signup", "", api.SignupRequest{
		Username: username,
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
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
			{
				ID:           "Q1",
				QuestionText: "Why does entropy increase?",
				Targets:      []string{"Entropy"},
				Rubric:       domain.Rubric{KeyPoints: []string{"hidden rubric point"}},
			},
			{ID: "Q2", QuestionText: "What is assumed?"},
		},
	}
}

func sampleResult() *domain.EvaluationResult {
	return &domain.EvaluationResult{
		ScoreBand:              domain.BandMaster,
		ScoreNumerical:         82,
		StrengthAnalysis:       "Clear statistical framing.",
		WeaknessAnalysis:       "Skipped boundary conditions.",
		PersonalizedSuggestion: "Revisit closed systems.",
		UpdatedMemory: domain.MemoryDelta{
			Strengths: []string{"statistical reasoning"},
			Gaps:      []string{"boundary conditions"},
		},
	}
}
