package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/curricula-api/internal/config"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter_Levels(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level      string
		debugShown bool
		infoShown  bool
		warnShown  bool
	}{
		{"debug", true, true, true},
		{"INFO", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tt.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Same(t, l, slog.Default())

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")

			assert.Equal(t, tt.debugShown, buf.HasEntry("debug message", nil))
			assert.Equal(t, tt.infoShown, buf.HasEntry("info message", nil))
			assert.Equal(t, tt.warnShown, buf.HasEntry("warn message", nil))
		})
	}
}

func TestSetupWithWriter_InvalidLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "verbose"}, buf)
	require.NoError(t, err)

	assert.True(t, buf.HasEntry("invalid log level configured, using default level", map[string]any{
		"configured_level": "verbose",
		"default_level":    "info",
	}))

	l.Info("still logging")
	assert.True(t, buf.HasEntry("still logging", nil))
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	l, buf := logger.NewTestLogger(t)
	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))

	logger.FromContext(ctx).Info("from context")
	assert.True(t, buf.HasEntry("from context", map[string]any{"trace_id": "abc"}))

	fallback := slog.New(slog.DiscardHandler)
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, logger.FromContext(context.Background()))
}
