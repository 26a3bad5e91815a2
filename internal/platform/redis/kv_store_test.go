package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Get(ctx context.Context, key string) *goredis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*goredis.StringCmd)
}

func (m *mockClient) Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*goredis.StatusCmd)
}

func (m *mockClient) Ping(ctx context.Context) *goredis.StatusCmd {
	args := m.Called(ctx)
	return args.Get(0).(*goredis.StatusCmd)
}

func (m *mockClient) Close() error {
	return m.Called().Error(0)
}

func TestKVStore_GetMissingKey(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("Get", mock.Anything, "k").Return(goredis.NewStringResult("", goredis.Nil))

	value, found, err := NewKVStore(client, nil).Get(context.Background(), "k")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
	client.AssertExpectations(t)
}

func TestKVStore_GetValue(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("Get", mock.Anything, "k").Return(goredis.NewStringResult(`[]`, nil))

	value, found, err := NewKVStore(client, nil).Get(context.Background(), "k")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, value)
}

func TestKVStore_GetError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	client := &mockClient{}
	client.On("Get", mock.Anything, "k").Return(goredis.NewStringResult("", boom))

	_, _, err := NewKVStore(client, nil).Get(context.Background(), "k")

	assert.ErrorIs(t, err, boom)
}

func TestKVStore_SetNeverExpires(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("Set", mock.Anything, "k", "v", time.Duration(0)).Return(goredis.NewStatusResult("OK", nil))

	require.NoError(t, NewKVStore(client, nil).Set(context.Background(), "k", "v"))
	client.AssertExpectations(t)
}

func TestKVStore_SetError(t *testing.T) {
	t.Parallel()

	boom := errors.New("READONLY")
	client := &mockClient{}
	client.On("Set", mock.Anything, "k", "v", time.Duration(0)).Return(goredis.NewStatusResult("", boom))

	assert.ErrorIs(t, NewKVStore(client, nil).Set(context.Background(), "k", "v"), boom)
}

func TestOpenRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "not-a-url://", nil)
	assert.Error(t, err)
}

func TestKVStore_RealServer(t *testing.T) {
	url := os.Getenv("SCRY_TUTOR_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SCRY_TUTOR_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	kv, err := Open(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	key := "scry_tutor:test:" + uuid.NewString()
	require.NoError(t, kv.Set(ctx, key, "v"))
	value, found, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
}
