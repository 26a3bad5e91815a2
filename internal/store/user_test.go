package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testUsersKey = "scry_tutor:users"

func newTestUserStore(t *testing.T, kv KeyValueStore) *KVUserStore {
	t.Helper()
	l, _ := logger.GetTestLogger(t)
	return NewKVUserStore(kv, testUsersKey, bcrypt.MinCost, l)
}

func mustNewUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, "password123")
	require.NoError(t, err)
	return u
}

func TestKVUserStore_CreateHashesPassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := newMapKV()
	s := newTestUserStore(t, kv)
	user := mustNewUser(t, "Ada")

	require.NoError(t, s.Create(ctx, user))

	assert.Empty(t, user.Password)
	require.NotEmpty(t, user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))
	assert.NotContains(t, kv.data[testUsersKey], "password123")

	got, err := s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Username)
	assert.Equal(t, user.HashedPassword, got.HashedPassword)
}

func TestKVUserStore_UsernamesAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestUserStore(t, newMapKV())

	require.NoError(t, s.Create(ctx, mustNewUser(t, "Ada")))

	err := s.Create(ctx, mustNewUser(t, "ADA"))
	assert.ErrorIs(t, err, ErrUsernameExists)

	got, err := s.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Username)
}

func TestKVUserStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestUserStore(t, newMapKV())

	_, err := s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestKVUserStore_CreateRejectsInvalidUser(t *testing.T) {
	t.Parallel()

	s := newTestUserStore(t, newMapKV())
	user := &domain.User{ID: uuid.New(), Username: "", Password: "password123"}

	err := s.Create(context.Background(), user)
	assert.ErrorIs(t, err, ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyUsername)
}

func TestKVUserStore_CorruptCollectionIsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := newMapKV()
	kv.data[testUsersKey] = "[]garbage"
	s := newTestUserStore(t, kv)

	_, err := s.GetByUsername(ctx, "ada")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, s.Create(ctx, mustNewUser(t, "ada")))
}
