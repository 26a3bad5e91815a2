package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"golang.org/x/crypto/bcrypt"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user, hashing its plaintext password.
	// Returns ErrUsernameExists if the username is taken in any letter case.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username, ignoring case.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// userRecord is the stored shape of a user. The password hash is kept out
// of domain.User's JSON form.
type userRecord struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:             r.ID,
		Username:       r.Username,
		HashedPassword: r.PasswordHash,
		CreatedAt:      r.CreatedAt,
	}
}

// KVUserStore keeps all users in one JSON object keyed by user id.
type KVUserStore struct {
	kv         KeyValueStore
	key        string
	bcryptCost int
	logger     *slog.Logger
	mu         sync.Mutex
}

// NewKVUserStore creates a user store over kv. bcryptCost is the work factor
// used when hashing passwords on Create.
func NewKVUserStore(kv KeyValueStore, key string, bcryptCost int, l *slog.Logger) *KVUserStore {
	if l == nil {
		l = slog.Default()
	}
	return &KVUserStore{
		kv:         kv,
		key:        key,
		bcryptCost: bcryptCost,
		logger:     l.With(slog.String("component", "user_store")),
	}
}

var _ UserStore = (*KVUserStore)(nil)

// Create implements UserStore.
func (s *KVUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range users {
		if domain.SameUsername(existing.Username, user.Username) {
			return ErrUsernameExists
		}
	}

	hash := user.HashedPassword
	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return NewStoreError("user", "create", "failed to hash password", err)
		}
		hash = string(hashed)
	}

	users[user.ID.String()] = userRecord{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: hash,
		CreatedAt:    user.CreatedAt,
	}
	if err := s.write(ctx, users); err != nil {
		return err
	}

	user.HashedPassword = hash
	user.Password = ""

	logger.FromContextOrDefault(ctx, s.logger).Info("user created",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements UserStore.
func (s *KVUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	record, ok := users[id.String()]
	if !ok {
		return nil, ErrUserNotFound
	}
	return record.toDomain(), nil
}

// GetByUsername implements UserStore.
func (s *KVUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, record := range users {
		if domain.SameUsername(record.Username, username) {
			return record.toDomain(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *KVUserStore) load(ctx context.Context) (map[string]userRecord, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, NewStoreError("user", "load", "failed to read collection", err)
	}
	users := map[string]userRecord{}
	if !found || raw == "" {
		return users, nil
	}
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("user collection unreadable, treating as empty",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return map[string]userRecord{}, nil
	}
	if users == nil {
		users = map[string]userRecord{}
	}
	return users, nil
}

func (s *KVUserStore) write(ctx context.Context, users map[string]userRecord) error {
	data, err := json.Marshal(users)
	if err != nil {
		return NewStoreError("user", "create", "failed to encode collection", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return NewStoreError("user", "create", "failed to write collection", err)
	}
	return nil
}
