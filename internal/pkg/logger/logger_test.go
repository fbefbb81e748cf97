package logger

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogger() {
	current.Store(zap.NewNop())
	initOnce = sync.Once{}
	level = zap.NewAtomicLevel()
}

// observe swaps in an in-memory core built the way Init builds loggers.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	current.Store(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
	t.Cleanup(resetLogger)
	return logs
}

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"json info", "info", "json", zapcore.InfoLevel, false},
		{"console debug", "debug", "console", zapcore.DebugLevel, false},
		{"json warn", "warn", "json", zapcore.WarnLevel, false},
		{"json error", "error", "json", zapcore.ErrorLevel, false},
		{"invalid level", "invalid", "json", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLogger()
			err := Init(tt.level, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, Level())
		})
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	resetLogger()
	t.Cleanup(resetLogger)

	require.NoError(t, Init("warn", "json"))
	require.NoError(t, Init("debug", "console"))
	assert.Equal(t, zapcore.WarnLevel, Level())
}

func TestL_NoopWithoutInit(t *testing.T) {
	resetLogger()

	require.NotNil(t, L())
	Info("before init")
	Named("editor").Warn("before init")
	assert.NoError(t, Sync())
}

func TestHelpers_ReportTheirCaller(t *testing.T) {
	logs := observe(t)

	Info("saved", zap.Int64("config_id", 42))
	Named("notification").Warn("dropped")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(42), entries[0].ContextMap()["config_id"])
	assert.Equal(t, "notification", entries[1].LoggerName)

	for _, e := range entries {
		assert.Equal(t, "logger_test.go", filepath.Base(e.Caller.File), e.Message)
	}
}
