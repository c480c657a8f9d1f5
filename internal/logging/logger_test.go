package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()
	logger, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.True(t, logger.Core().Enabled(0), "info level must be enabled in production")
	require.False(t, logger.Core().Enabled(-1), "debug level must be disabled in production")
}

func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()
	logger, err := New(true)
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(-1), "debug level must be enabled in development")
}

func TestInitLoggerIsIdempotent(t *testing.T) {
	InitLogger()
	first := L
	InitLogger()
	require.Same(t, first, L)
	require.NotNil(t, L)
}
