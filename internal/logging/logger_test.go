package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestInitLogger_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(Options{Dir: dir, Level: "info"}))

	LogLLMRequest("local", "llama3.2", 42)
	LogStage("run-1", "collect", "next")
	Close()

	data, err := os.ReadFile(filepath.Join(dir, DefaultLogFile))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "debug step record must be filtered at info level")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "LLM Request", rec["msg"])
	assert.Equal(t, "local", rec["backend"])
	assert.EqualValues(t, 42, rec["messageLength"])
}

func TestClose_ResetsToDiscard(t *testing.T) {
	require.NoError(t, InitLogger(Options{Dir: t.TempDir()}))
	Close()
	assert.NotPanics(t, func() { LogError("after close", "k", "v") })
}

func TestLive_FollowsReinitialisedLogger(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	log := Live().With("component", "settings")

	require.NoError(t, InitLogger(Options{Dir: first}))
	log.Info("before")
	require.NoError(t, InitLogger(Options{Dir: second}))
	log.Info("after")
	Close()

	data, err := os.ReadFile(filepath.Join(second, DefaultLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	assert.Equal(t, "after", rec["msg"])
	assert.Equal(t, "settings", rec["component"])

	data, err = os.ReadFile(filepath.Join(first, DefaultLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"before"`)
	assert.NotContains(t, string(data), `"msg":"after"`)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/.pytutor/logs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pytutor/logs"), got)

	got, err = expandPath("/var/log/pytutor")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/pytutor", got)
}
