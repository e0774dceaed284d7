package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetEnvAsString(t *testing.T) {
	t.Setenv("TEST_STRING", "hello")

	require.Equal(t, "hello", getEnvAsString("TEST_STRING", "fallback"))
	require.Equal(t, "fallback", getEnvAsString("TEST_STRING_MISSING", "fallback"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")

	require.Equal(t, 42, getEnvAsInt("TEST_INT", 7))
	require.Equal(t, 7, getEnvAsInt("TEST_INT_BAD", 7))
	require.Equal(t, 7, getEnvAsInt("TEST_INT_MISSING", 7))
}

func TestGetEnvAsTimeDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90m")
	t.Setenv("TEST_DUR_BARE", "30")
	t.Setenv("TEST_DUR_BAD", "soon")

	require.Equal(t, 90*time.Minute, getEnvAsTimeDuration("TEST_DUR", time.Hour))
	// Bare numbers are read as seconds
	require.Equal(t, 30*time.Second, getEnvAsTimeDuration("TEST_DUR_BARE", time.Hour))
	require.Equal(t, time.Hour, getEnvAsTimeDuration("TEST_DUR_BAD", time.Hour))
	require.Equal(t, time.Hour, getEnvAsTimeDuration("TEST_DUR_MISSING", time.Hour))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BOOL_BAD", "yep")

	require.True(t, getEnvAsBool("TEST_BOOL", false))
	require.False(t, getEnvAsBool("TEST_BOOL_BAD", false))
	require.True(t, getEnvAsBool("TEST_BOOL_MISSING", true))
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("TEST_SLICE", "a, b ,c,")

	require.Equal(t, []string{"a", "b", "c"}, getEnvAsSlice("TEST_SLICE", nil))
	require.Equal(t, []string{"x"}, getEnvAsSlice("TEST_SLICE_MISSING", []string{"x"}))
}
