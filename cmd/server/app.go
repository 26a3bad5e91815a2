package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-tutor/internal/config"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/generation"
	"github.com/phrazzld/scry-tutor/internal/platform/gemini"
	"github.com/phrazzld/scry-tutor/internal/service"
	"github.com/phrazzld/scry-tutor/internal/service/auth"
	"github.com/phrazzld/scry-tutor/internal/store"
	"github.com/phrazzld/scry-tutor/internal/tutor"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// closer releases the store backend; nil for the memory backend.
	closer io.Closer

	userStore    store.UserStore
	sessionStore store.SessionStore

	jwtService     auth.JWTService
	userService    service.UserService
	sessionService *service.SessionService

	eventEmitter *events.InMemoryEventEmitter
	workspaces   *tutor.Registry
}

// newApplication opens the store backend and the Gemini client and wires
// everything else on top of them.
func newApplication(ctx context.Context, cfg *config.Config, l *slog.Logger) (*application, error) {
	kv, closer, err := openKVStore(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	llm, err := gemini.NewGeminiTutor(ctx, l, cfg.LLM)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("failed to initialize Gemini tutor: %w", err)
	}
	l.Info("Gemini tutor initialized", slog.String("model", cfg.LLM.ModelName))

	app, err := buildApplication(cfg, l, kv, llm)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	app.closer = closer
	return app, nil
}

// buildApplication wires stores, services and the workspace registry over an
// already opened backend and tutor.
func buildApplication(
	cfg *config.Config,
	l *slog.Logger,
	kv store.KeyValueStore,
	llm generation.Tutor,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: l,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	l.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = store.NewKVUserStore(kv, cfg.Store.UsersKey, cfg.Auth.BcryptCost, l)
	app.sessionStore = store.NewKVSessionStore(kv, cfg.Store.SessionsKey, l)

	// Every committed workspace transition is persisted through the autosaver.
	app.eventEmitter = events.NewInMemoryEventEmitter(l)
	app.eventEmitter.RegisterHandler(tutor.NewAutosaver(app.sessionStore, l))

	idle := time.Duration(cfg.Workspace.IdleTimeoutMinutes) * time.Minute
	app.workspaces = tutor.NewRegistry(llm, app.eventEmitter, idle, l)

	app.userService = service.NewUserService(app.userStore, auth.NewBcryptVerifier(), l)
	app.sessionService = service.NewSessionService(app.sessionStore, app.workspaces, l)

	l.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.closer != nil {
		if err := app.closer.Close(); err != nil {
			app.logger.Error("error closing store backend", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
