package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
)

// DefaultSessionTitle is used when a new session is saved without a title.
const DefaultSessionTitle = "Untitled Session"

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	// Save upserts the session identified by sessionID from a workspace
	// snapshot. Snapshots without document text or intelligence are ignored.
	// Replacing an existing session keeps its timestamp, and keeps its title
	// unless a non-empty title is given.
	Save(ctx context.Context, userID uuid.UUID, sessionID string, snap domain.Snapshot, title string) error

	// ListByUser returns the user's sessions, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error)

	// GetByUser returns one of the user's sessions.
	// Returns ErrSessionNotFound if it does not exist or is owned by someone else.
	GetByUser(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Session, error)
}

// KVSessionStore keeps every session of every user in one JSON array under a
// single key. An absent or unreadable array is treated as empty.
type KVSessionStore struct {
	kv     KeyValueStore
	key    string
	logger *slog.Logger
	now    func() time.Time

	// serializes read-modify-write of the shared key within this process
	mu sync.Mutex
}

// SessionStoreOption configures a KVSessionStore.
type SessionStoreOption func(*KVSessionStore)

// WithSessionClock overrides the clock used to stamp new sessions.
func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *KVSessionStore) {
		s.now = now
	}
}

// NewKVSessionStore creates a session store over kv using the given key.
func NewKVSessionStore(kv KeyValueStore, key string, l *slog.Logger, opts ...SessionStoreOption) *KVSessionStore {
	if l == nil {
		l = slog.Default()
	}
	s := &KVSessionStore{
		kv:     kv,
		key:    key,
		logger: l.With(slog.String("component", "session_store")),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ SessionStore = (*KVSessionStore)(nil)

// Save implements SessionStore.
func (s *KVSessionStore) Save(
	ctx context.Context,
	userID uuid.UUID,
	sessionID string,
	snap domain.Snapshot,
	title string,
) error {
	if !snap.Persistable() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return err
	}

	record := domain.Session{
		ID:                sessionID,
		UserID:            userID,
		DocumentText:      snap.DocumentText,
		Intelligence:      snap.Intelligence,
		Questions:         snap.Questions,
		CurrentQuestionID: snap.CurrentQuestionID,
		LearnerMemory:     snap.LearnerMemory,
		Evaluations:       snap.Evaluations,
	}

	idx := indexOfSession(sessions, sessionID)
	if idx >= 0 {
		record.Timestamp = sessions[idx].Timestamp
		record.Title = sessions[idx].Title
		if title != "" {
			record.Title = title
		}
		sessions[idx] = record
	} else {
		record.Timestamp = s.now().UnixMilli()
		record.Title = title
		if record.Title == "" {
			record.Title = DefaultSessionTitle
		}
		sessions = append(sessions, record)
	}

	if err := s.write(ctx, sessions); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("session saved",
		slog.String("session_id", sessionID),
		slog.String("user_id", userID.String()),
		slog.Bool("replaced", idx >= 0))
	return nil
}

// ListByUser implements SessionStore.
func (s *KVSessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]domain.Session, 0, len(sessions))
	for _, sess := range sessions {
		if sess.UserID == userID {
			owned = append(owned, sess)
		}
	}

	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Timestamp > owned[j].Timestamp
	})
	return owned, nil
}

// GetByUser implements SessionStore.
func (s *KVSessionStore) GetByUser(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Session, error) {
	sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfSession(sessions, sessionID)
	if idx < 0 || sessions[idx].UserID != userID {
		return nil, ErrSessionNotFound
	}
	sess := sessions[idx]
	if err := sess.Validate(); err != nil {
		s.logger.WarnContext(ctx, "stored session is incomplete",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *KVSessionStore) load(ctx context.Context) ([]domain.Session, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, NewStoreError("session", "load", "failed to read collection", err)
	}
	if !found || raw == "" {
		return []domain.Session{}, nil
	}

	var sessions []domain.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("session collection unreadable, treating as empty",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return []domain.Session{}, nil
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return sessions, nil
}

func (s *KVSessionStore) write(ctx context.Context, sessions []domain.Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return NewStoreError("session", "save", "failed to encode collection", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return NewStoreError("session", "save", "failed to write collection", fmt.Errorf("key %s: %w", s.key, err))
	}
	return nil
}

func indexOfSession(sessions []domain.Session, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}
