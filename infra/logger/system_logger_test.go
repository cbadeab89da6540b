package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemLogger(t *testing.T) {
	sl := NewSystemLogger(SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      LevelWarn,
		Service:       "tinkoffpay",
		Version:       "1.0.0",
		Environment:   "test",
	})

	require.NotNil(t, sl)
	assert.Equal(t, LevelWarn, sl.minLevel)
	assert.Equal(t, "tinkoffpay", sl.service)
}

func TestShouldLog(t *testing.T) {
	sl := NewSystemLogger(SystemLoggerConfig{MinLevel: LevelWarn})

	assert.False(t, sl.shouldLog(LevelDebug))
	assert.False(t, sl.shouldLog(LevelInfo))
	assert.True(t, sl.shouldLog(LevelWarn))
	assert.True(t, sl.shouldLog(LevelError))
	assert.True(t, sl.shouldLog(LevelFatal))
}

func TestExtractComponent(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"/home/dev/tinkoffpay/tinkoff/api.go", "tinkoff/api.go"},
		{"/home/dev/tinkoffpay/infra/middle/logging.go", "infra/middle"},
		{"/somewhere/else/pkg/file.go", "pkg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractComponent(tt.file))
	}
}

func TestLogDoesNotPanic(t *testing.T) {
	sl := NewSystemLogger(SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      LevelDebug,
		Service:       "tinkoffpay",
	})

	assert.NotPanics(t, func() {
		sl.Debug("debug message")
		sl.Info("info message", LogContext{Operation: "Init", RequestID: "abcdef1234"})
		sl.Warn("warn message")
		sl.Error("error message", errors.New("boom"))
	})
}

func TestGlobalLogger(t *testing.T) {
	InitGlobalLogger()
	first := GetGlobalLogger()
	second := GetGlobalLogger()

	require.NotNil(t, first)
	assert.Same(t, first, second)

	assert.NotPanics(t, func() {
		Info("global info")
		Warn("global warn")
		Error("global error", errors.New("boom"))
		Debug("global debug")
	})
}
