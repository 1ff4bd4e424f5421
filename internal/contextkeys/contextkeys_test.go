package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklek/rentbot-sub000/internal/core/port"
)

type countingLogger struct {
	noopLogger
	infos int
}

func (c *countingLogger) Info(string, port.Fields)               { c.infos++ }
func (c *countingLogger) WithFields(port.Fields) port.LoggerPort { return c }

func TestLoggerFromContext_FallsBackToNoop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.WithFields(port.Fields{"a": 1}).Error("boom", nil, nil)
	})
}

func TestLoggerFromContext_ReturnsStoredLogger(t *testing.T) {
	stored := &countingLogger{}
	ctx := ContextWithLogger(context.Background(), stored)

	LoggerFromContext(ctx).Info("hello", nil)

	assert.Equal(t, 1, stored.infos)
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx := ContextWithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
}
