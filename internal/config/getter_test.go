package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvStr(t *testing.T) {
	t.Setenv("JOBMON_TEST_STR", "value")

	assert.Equal(t, "value", GetEnvStr("JOBMON_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnvStr("JOBMON_TEST_STR_MISSING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{name: "valid integer", value: "42", expected: 42},
		{name: "negative integer", value: "-7", expected: -7},
		{name: "not an integer", value: "forty-two", expected: 10},
		{name: "empty value", value: "", expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOBMON_TEST_INT", tt.value)

			assert.Equal(t, tt.expected, GetEnvInt("JOBMON_TEST_INT", 10))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback bool
		expected bool
	}{
		{name: "true", value: "true", fallback: false, expected: true},
		{name: "numeric true", value: "1", fallback: false, expected: true},
		{name: "yes uppercase", value: "YES", fallback: false, expected: true},
		{name: "false", value: "false", fallback: true, expected: false},
		{name: "numeric false", value: "0", fallback: true, expected: false},
		{name: "garbage keeps default", value: "maybe", fallback: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOBMON_TEST_BOOL", tt.value)

			assert.Equal(t, tt.expected, GetEnvBool("JOBMON_TEST_BOOL", tt.fallback))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("JOBMON_TEST_DURATION", "45s")

	assert.Equal(t, 45*time.Second, GetEnvDuration("JOBMON_TEST_DURATION", time.Minute))

	t.Setenv("JOBMON_TEST_DURATION", "not-a-duration")

	assert.Equal(t, time.Minute, GetEnvDuration("JOBMON_TEST_DURATION", time.Minute))
}

func TestGetEnvLogLevel(t *testing.T) {
	tests := []struct {
		value    string
		expected slog.Level
	}{
		{value: "debug", expected: slog.LevelDebug},
		{value: "INFO", expected: slog.LevelInfo},
		{value: "warning", expected: slog.LevelWarn},
		{value: "error", expected: slog.LevelError},
		{value: "verbose", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("JOBMON_TEST_LOG_LEVEL", tt.value)

			assert.Equal(t, tt.expected, GetEnvLogLevel("JOBMON_TEST_LOG_LEVEL", slog.LevelInfo))
		})
	}
}

func TestParseCommaSeparatedList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseCommaSeparatedList("a, b ,c"))
	assert.Equal(t, []string{"only"}, ParseCommaSeparatedList("only,,"))
	assert.Empty(t, ParseCommaSeparatedList(""))
}
