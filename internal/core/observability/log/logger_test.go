package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core), level), logs
}

func TestLoggerFiltersByLevel(t *testing.T) {
	l, logs := observed(LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", String("boat", "main"))
	l.Error("shown too", Error(errors.New("boom")))

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "shown", entry.Message)
	assert.Equal(t, "main", entry.ContextMap()["boat"])
	assert.Equal(t, "boom", logs.All()[1].ContextMap()["error"])
}

func TestSetLevelReachesDerivedLoggers(t *testing.T) {
	l, logs := observed(LevelError)
	child := l.With(Int("tick", 3))

	child.Info("dropped")
	l.SetLevel(LevelDebug)
	child.Debug("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(3), logs.All()[0].ContextMap()["tick"])
	assert.Equal(t, LevelDebug, child.GetLevel())
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		got, err := ParseLevel(lvl.String())
		require.NoError(t, err)
		assert.Equal(t, lvl, got)
	}
	got, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, got)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithConfigRejectsUnknownEncoding(t *testing.T) {
	_, err := NewWithConfig(Config{Level: "info", Encoding: "xml"})
	assert.Error(t, err)

	l, err := NewWithConfig(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, l.GetLevel())
}
