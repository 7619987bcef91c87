package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"component": "prediction"}).
		WithError(errors.New("boom")).
		Error("inference failed", map[string]interface{}{"predictionId": "abc"})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "inference failed", entries[0].Message)
	assert.Equal(t, "prediction", ctx["component"])
	assert.Equal(t, "abc", ctx["predictionId"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapWrapper_ErrorValuedField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"endpoint": "/predict"}).
		Warn("rejected", map[string]interface{}{"cause": errors.New("bad body")})
	log.Debug("dropped below level", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bad body", entries[0].ContextMap()["cause"])
	assert.Equal(t, "/predict", entries[0].ContextMap()["endpoint"])
}

func TestNewFromConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	l := NewFromConfig(Options{Level: "info", Format: "json", Output: path, MaxSizeMB: 1})
	l.Info("model loaded", zap.String("path", "models/m.json"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"model loaded"`)
	assert.Contains(t, string(data), `"path":"models/m.json"`)
}

func TestNewFromConfig_StandardStreams(t *testing.T) {
	for _, out := range []string{"", "stdout", "stderr"} {
		l := NewFromConfig(Options{Level: "warn", Format: "console", Output: out})
		require.NotNil(t, l)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	}
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Info("ignored", map[string]interface{}{"k": "v"})
		log.WithError(errors.New("x")).Error("ignored", nil)
	})
}
