package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-kir/web-stress/internal/config"
)

// resetGlobalLogger is critical for test isolation: the logger is a global
// singleton guarded by a sync.Once.
func resetGlobalLogger() {
	once = sync.Once{}
	globalLogger.Store(nil)
}

func TestGetLoggerBeforeInit(t *testing.T) {
	resetGlobalLogger()

	logger := GetLogger()
	require.NotNil(t, logger, "GetLogger must provide a usable fallback before initialization")
	logger.Info("fallback logger works")
}

func TestInitializeLoggerIsIdempotent(t *testing.T) {
	resetGlobalLogger()

	InitializeLogger(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "test"})
	first := GetLogger()
	require.NotNil(t, first)

	// A second initialization must not replace the instance.
	InitializeLogger(config.LoggerConfig{Level: "error", Format: "json", ServiceName: "other"})
	assert.Same(t, first, GetLogger())
}

func TestInitializeLoggerHandlesBadLevel(t *testing.T) {
	resetGlobalLogger()

	// An unparseable level falls back to info instead of failing startup.
	InitializeLogger(config.LoggerConfig{Level: "shouting", Format: "json", ServiceName: "test"})
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(-1), "debug should be disabled at the info fallback level")
}

func TestColorizedLevelEncoderFallsBackWithoutColors(t *testing.T) {
	// Unknown color names must not inject escape codes.
	enc := newColorizedLevelEncoder(config.ColorConfig{Info: "chartreuse"})
	require.NotNil(t, enc)
}
