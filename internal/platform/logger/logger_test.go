package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestSetupWritesJSONAtLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := setup(&buf, "warn")
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", "component", "test")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Same(t, l, slog.Default())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := setup(&buf, "loud")
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	def := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	custom := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, def, FromContextOrDefault(nil, def))
	assert.Same(t, def, FromContextOrDefault(context.Background(), def))
	assert.Same(t, custom, FromContextOrDefault(WithLogger(context.Background(), custom), def))
}

func TestWithLoggerPanicsOnNil(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		WithLogger(context.Background(), nil)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}

func TestGetTestLogger(t *testing.T) {
	t.Parallel()

	l, buf := GetTestLogger(t)
	l.Debug("hello", "k", "v")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "v", entries[0]["k"])
	AssertLogContains(t, buf, "hello")
}
