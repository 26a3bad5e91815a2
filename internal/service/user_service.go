package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/service/auth"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// UserService provides account operations.
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// CreateUser registers a new user with the given username and password.
	// Returns store.ErrUsernameExists when the name is taken in any letter case.
	CreateUser(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate returns the user when the password matches.
	// Returns ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(userStore store.UserStore, verifier auth.PasswordVerifier, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		userStore: userStore,
		verifier:  verifier,
		logger:    logger.With("component", "user_service"),
	}
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.ErrorContext(ctx, "failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// CreateUser registers a new user
func (s *UserServiceImpl) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, password)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected signup",
			"error", err,
			"username", username)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			s.logger.DebugContext(ctx, "attempted to create user with existing username",
				"username", user.Username)
		} else {
			s.logger.ErrorContext(ctx, "failed to save user",
				"error", err,
				"username", user.Username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID,
		"username", user.Username)
	return user, nil
}

// Authenticate checks a username and password pair
func (s *UserServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.DebugContext(ctx, "login for unknown username", "username", username)
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "failed to look up user for login",
			"error", err,
			"username", username)
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.DebugContext(ctx, "login with wrong password", "user_id", user.ID)
		} else {
			s.logger.ErrorContext(ctx, "stored password hash is unusable",
				"error", err,
				"user_id", user.ID)
		}
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
