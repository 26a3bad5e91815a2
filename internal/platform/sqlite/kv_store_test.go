package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/sqlite"
	"github.com/phrazzld/scry-tutor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *sqlite.KVStore {
	t.Helper()
	kv, err := sqlite.Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKVStore_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := openTestStore(t, filepath.Join(t.TempDir(), "tutor.db"))

	_, found, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2"))

	value, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)
	assert.NoError(t, kv.Ping(ctx))
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tutor.db")

	first, err := sqlite.Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "scry_tutor:sessions", "[]"))
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	value, found, err := second.Get(ctx, "scry_tutor:sessions")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", value)
}

func TestKVStore_BacksSessionStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := openTestStore(t, filepath.Join(t.TempDir(), "tutor.db"))
	sessions := store.NewKVSessionStore(kv, "scry_tutor:sessions", nil)
	userID := uuid.New()

	snap := domain.Snapshot{
		Stage:         domain.StageDashboard,
		DocumentText:  "doc",
		Intelligence:  &domain.Intelligence{CoreThemes: []string{"Theme"}},
		Questions:     []domain.Question{{ID: "Q1"}},
		LearnerMemory: domain.NewLearnerMemory(),
	}
	require.NoError(t, sessions.Save(ctx, userID, "s1", snap, "Analysis: Theme"))

	got, err := sessions.GetByUser(ctx, userID, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Analysis: Theme", got.Title)
	assert.Equal(t, []string{"Theme"}, got.Intelligence.CoreThemes)
}
