package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRespectsLevel(t *testing.T) {
	logger, err := New("warn", "console", false)
	require.NoError(t, err)
	defer logger.Sync()

	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewVerboseForcesDebug(t *testing.T) {
	logger, err := New("error", "json", true)
	require.NoError(t, err)
	defer logger.Sync()

	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "console", false)
	require.Error(t, err)
}
