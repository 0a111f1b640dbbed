package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, level, err := New("warn", "json")
	require.NoError(t, err)
	defer logger.Sync()

	assert.Equal(t, zapcore.WarnLevel, level.Level())
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	level.SetLevel(zapcore.DebugLevel)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Console(t *testing.T) {
	logger, level, err := New("debug", "console")
	require.NoError(t, err)
	defer logger.Sync()
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New("loud", "json")
	assert.Error(t, err)

	_, _, err = New("info", "xml")
	assert.Error(t, err)
}
