package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]int{
		"trace":   LevelTrace,
		"DEBUG":   LevelDebug,
		"verbose": LevelVerbose,
		"":        LevelInfo,
		"warning": LevelWarning,
		"warn":    LevelWarning,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestInitAndSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	require.NoError(t, Init(LevelDebug, EnvironmentDevelopment))
	assert.Equal(t, LevelDebug, GetLevel())

	SetLevel(LevelError)
	assert.Equal(t, LevelError, GetLevel())
	assert.False(t, enabled(LevelWarning))
	assert.True(t, enabled(LevelError))

	assert.Error(t, Init(42, EnvironmentProduction))
}

func TestNodeLoggerLevels(t *testing.T) {
	l := NewNodeLogger("db", LevelWarning).(*nodeLogger)
	assert.Equal(t, LevelWarning, l.Level())
	assert.False(t, l.ok(LevelInfo))
	assert.True(t, l.ok(LevelError))

	nop := NewNopLogger().(*nodeLogger)
	assert.False(t, nop.ok(LevelError))

	// 不应 panic
	nop.Error("dropped %d", 1)
	l.Info("below threshold")
}
