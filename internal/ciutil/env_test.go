package ciutil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		t.Setenv(name, "")
	}
}

func TestIsCI(t *testing.T) {
	clearCIEnv(t)
	assert.False(t, IsCI())

	t.Setenv(EnvGitHubActions, "true")
	assert.True(t, IsCI())
}

func TestGetEnvWithFallbacks(t *testing.T) {
	t.Setenv("SCRY_PRIMARY", "")
	t.Setenv("SCRY_SECONDARY", "")

	assert.Equal(t, "default", GetEnvWithFallbacks([]string{"SCRY_PRIMARY", "SCRY_SECONDARY"}, "default", nil))

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	t.Setenv("SCRY_SECONDARY", "postgres://u:secret@db:5432/x")
	got := GetEnvWithFallbacks([]string{"SCRY_PRIMARY", "SCRY_SECONDARY"}, "", logger)
	assert.Equal(t, "postgres://u:secret@db:5432/x", got)
	assert.Contains(t, logs.String(), "SCRY_SECONDARY")
	assert.NotContains(t, logs.String(), "secret@")

	logs.Reset()
	t.Setenv("SCRY_PRIMARY", "primary")
	assert.Equal(t, "primary", GetEnvWithFallbacks([]string{"SCRY_PRIMARY", "SCRY_SECONDARY"}, "", logger))
	assert.Empty(t, logs.String())
}

func TestTestDatabaseURL(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "")
	t.Setenv(EnvScryTestDBURL, "")
	t.Setenv(EnvScryDatabaseURL, "")
	assert.Empty(t, TestDatabaseURL(nil))

	t.Setenv(EnvScryDatabaseURL, "postgres://c")
	assert.Equal(t, "postgres://c", TestDatabaseURL(nil))

	t.Setenv(EnvScryTestDBURL, "postgres://b")
	assert.Equal(t, "postgres://b", TestDatabaseURL(nil))

	t.Setenv(EnvDatabaseURL, "postgres://a")
	assert.Equal(t, "postgres://a", TestDatabaseURL(nil))
}
