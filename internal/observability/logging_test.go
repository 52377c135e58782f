package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestComponent_NilLoggerIsNop(t *testing.T) {
	l := Component(nil, "movement")
	require.NotNil(t, l)
	l.Warn("dropped")
}

func TestComponent_NamesLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := Component(zap.New(core), "battle")
	l.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "battle", logs.All()[0].LoggerName)
}

func TestNoopTracer_StartsSpans(t *testing.T) {
	_, span := NoopTracer().Start(t.Context(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
}
