// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "compute-home-matches"})

	log.Info("matches computed", map[string]interface{}{
		"referralId": "ref-1",
		"error":      errors.New("cache miss"),
	})
	log.WithError(errors.New("boom")).Error("job failed", nil)

	entries := logs.All()
	assert.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "compute-home-matches", first["taskType"])
	assert.Equal(t, "ref-1", first["referralId"])
	assert.Equal(t, "cache miss", first["error"])

	second := entries[1].ContextMap()
	assert.Equal(t, "boom", second["error"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestBuild(t *testing.T) {
	l, err := Build(Options{Level: "debug", Format: "json", Service: "placement-workers", Env: "test"})
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	assert.NotNil(t, NewTestLogger(t))
}
